package delivery

import (
	"errors"
	"fmt"

	"partialdelivery/internal/pkg/errs"
	"partialdelivery/internal/pkg/guard"
)

// PackageKind classifies the package being delivered. The kind drives the
// cost surcharge applied by the estimator.
type PackageKind string

const (
	// PackageStandard is an ordinary package with no surcharge.
	PackageStandard PackageKind = "standard"
	// PackageFragile requires careful handling and carries a surcharge.
	PackageFragile PackageKind = "fragile"
	// PackageUrgent requires priority treatment and carries a surcharge.
	PackageUrgent PackageKind = "urgent"
)

// Validate checks that the kind is one of the known package kinds.
func (k PackageKind) Validate() error {
	switch k {
	case PackageStandard, PackageFragile, PackageUrgent:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("package kind is invalid",
			fmt.Errorf("%q is not a valid package kind", string(k)))
	}
}

// ErrPackageInfoIsNotConstructed is returned when using an improperly
// initialized PackageInfo.
var ErrPackageInfoIsNotConstructed = errors.New(
	"PackageInfo must be created via NewPackageInfo constructor")

// PackageInfo describes the physical package moved along the chain.
// It is an immutable value object validated at construction:
//   - weight must be positive
//   - dimensions must be non-empty free text (e.g. "40x30x20cm")
//   - kind must be a known PackageKind
type PackageInfo struct {
	weightKg   float64
	dimensions string
	kind       PackageKind
	guard      guard.ConstructorGuard
}

// NewPackageInfo creates a validated PackageInfo.
func NewPackageInfo(weightKg float64, dimensions string, kind PackageKind) (PackageInfo, error) {
	p := PackageInfo{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setWeight(weightKg),
		p.setDimensions(dimensions),
		p.setKind(kind),
	); err != nil {
		return PackageInfo{}, err
	}

	return p, nil
}

// Validate ensures the PackageInfo was created via NewPackageInfo.
func (p PackageInfo) Validate() error {
	return p.guard.Validate(ErrPackageInfoIsNotConstructed)
}

// WeightKg returns the package weight in kilograms.
func (p PackageInfo) WeightKg() float64 {
	return p.weightKg
}

// Dimensions returns the free-text dimensions of the package.
func (p PackageInfo) Dimensions() string {
	return p.dimensions
}

// Kind returns the package classification.
func (p PackageInfo) Kind() PackageKind {
	return p.kind
}

func (p *PackageInfo) setWeight(weightKg float64) error {
	if weightKg <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("weight is invalid",
			fmt.Errorf("%f is not greater than 0", weightKg))
	}
	p.weightKg = weightKg
	return nil
}

func (p *PackageInfo) setDimensions(dimensions string) error {
	if dimensions == "" {
		return errs.NewValueIsRequiredError("dimensions")
	}
	p.dimensions = dimensions
	return nil
}

func (p *PackageInfo) setKind(kind PackageKind) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	p.kind = kind
	return nil
}
