// Package jobsvc looks up upstream delivery jobs in the job service over
// HTTP. Partial deliveries are carved from jobs owned by that service, so
// the coordinator never stores them itself.
package jobsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"partialdelivery/internal/core/domain/model/delivery"
	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/core/ports"
	"partialdelivery/internal/pkg/errs"
)

const defaultTimeout = 3 * time.Second

// HTTPJobStore implements ports.OriginalJobStore against the job service's
// JSON API.
type HTTPJobStore struct {
	baseURL string
	client  *http.Client
}

// NewHTTPJobStore creates a store for the job service at baseURL.
// A non-positive timeout falls back to the default.
func NewHTTPJobStore(baseURL string, timeout time.Duration) *HTTPJobStore {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPJobStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type jobResponse struct {
	ID      string           `json:"id"`
	Pickup  geoPointResponse `json:"pickup"`
	Dropoff geoPointResponse `json:"dropoff"`
	Package packageResponse  `json:"package"`
}

type geoPointResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
}

type packageResponse struct {
	WeightKg   float64 `json:"weight_kg"`
	Dimensions string  `json:"dimensions"`
	Kind       string  `json:"kind"`
}

// GetOriginalJob retrieves the upstream job by its identifier. A 404 from
// the job service maps to errs.ObjectNotFoundError so callers can tell a
// missing job from an unreachable service.
func (s *HTTPJobStore) GetOriginalJob(ctx context.Context, id kernel.UUID) (ports.OriginalJob, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/jobs/"+id.String(), nil)
	if err != nil {
		return ports.OriginalJob{}, err
	}

	response, err := s.client.Do(request)
	if err != nil {
		return ports.OriginalJob{}, err
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode == http.StatusNotFound {
		return ports.OriginalJob{}, errs.NewObjectNotFoundError("originalJobID", id)
	}
	if response.StatusCode != http.StatusOK {
		return ports.OriginalJob{}, fmt.Errorf("job service returned status %d", response.StatusCode)
	}

	var body jobResponse
	if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
		return ports.OriginalJob{}, fmt.Errorf("job service response is malformed: %w", err)
	}

	return toOriginalJob(body)
}

func toOriginalJob(body jobResponse) (ports.OriginalJob, error) {
	jobID, err := kernel.UUIDFromString(body.ID)
	if err != nil {
		return ports.OriginalJob{}, fmt.Errorf("job service returned invalid job id: %w", err)
	}

	pickup, err := kernel.NewGeoPoint(body.Pickup.Latitude, body.Pickup.Longitude, body.Pickup.Label)
	if err != nil {
		return ports.OriginalJob{}, fmt.Errorf("job service returned invalid pickup: %w", err)
	}

	dropoff, err := kernel.NewGeoPoint(body.Dropoff.Latitude, body.Dropoff.Longitude, body.Dropoff.Label)
	if err != nil {
		return ports.OriginalJob{}, fmt.Errorf("job service returned invalid dropoff: %w", err)
	}

	packageInfo, err := delivery.NewPackageInfo(
		body.Package.WeightKg,
		body.Package.Dimensions,
		delivery.PackageKind(body.Package.Kind),
	)
	if err != nil {
		return ports.OriginalJob{}, fmt.Errorf("job service returned invalid package: %w", err)
	}

	return ports.OriginalJob{
		ID:          jobID,
		Pickup:      pickup,
		Dropoff:     dropoff,
		PackageInfo: packageInfo,
	}, nil
}
