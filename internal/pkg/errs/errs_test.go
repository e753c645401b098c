package errs_test

import (
	"errors"
	"testing"

	"partialdelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("deliveryId", "9f2c")

		assert.Equal(t, "deliveryId", err.ParamName)
		assert.Equal(t, "9f2c", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: 9f2c", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("row scan failed")
		err := errs.NewObjectNotFoundErrorWithCause("handoverId", "9f2c", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: handoverId, ID is: 9f2c (cause: row scan failed)",
			err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("non-string IDs are formatted through %s", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("sequenceIndex", 3)
		assert.Equal(t, "object not found: %!s(int=3)", err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("verificationCode")

		assert.Equal(t, "verificationCode", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: verificationCode", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("must be six digits")
		err := errs.NewValueIsInvalidErrorWithCause("verificationCode", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is invalid: verificationCode (cause: must be six digits)", err.Error())
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("latitude", 91.5, -90, 90)

		assert.Equal(t, "latitude", err.ParamName)
		assert.Equal(t, 91.5, err.Value)
		assert.Equal(t, -90, err.Min)
		assert.Equal(t, 90, err.Max)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: 91.5 is latitude, min value is -90, max value is 90", err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("coordinate check failed")
		err := errs.NewValueIsOutOfRangeErrorWithCause("longitude", 200, -180, 180, cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"value is invalid: 200 is longitude, min value is -180, max value is 180 (cause: coordinate check failed)",
			err.Error())
	})

	t.Run("newlines in values are flattened", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("label", "pickup\npoint", 0, 10)

		assert.Contains(t, err.Error(), "pickup point")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("courierId")

		assert.Equal(t, "courierId", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is required: courierId", err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("claim missing from token")
		err := errs.NewValueIsRequiredErrorWithCause("courierId", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is required: courierId (cause: claim missing from token)", err.Error())
	})
}

func TestVersionIsInvalidError(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("stale aggregate version")
		err := errs.NewVersionIsInvalidError("version", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "version is invalid: version (cause: stale aggregate version)", err.Error())
		assert.Equal(t, errs.ErrVersionIsInvalid, err.Unwrap())
	})

	t.Run("without cause", func(t *testing.T) {
		err := errs.NewVersionIsInvalidErrorWithCause("version")

		require.NoError(t, err.Cause)
		assert.Equal(t, "version is invalid: version", err.Error())
	})
}

func TestSentinelMessages(t *testing.T) {
	assert.Equal(t, "object not found", errs.ErrObjectNotFound.Error())
	assert.Equal(t, "value is invalid", errs.ErrValueIsInvalid.Error())
	assert.Equal(t, "value is out of range", errs.ErrValueIsOutOfRange.Error())
	assert.Equal(t, "value is required", errs.ErrValueIsRequired.Error())
	assert.Equal(t, "version is invalid", errs.ErrVersionIsInvalid.Error())
}

func TestErrorsMatchSentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"object not found", errs.NewObjectNotFoundError("deliveryId", "9f2c"), errs.ErrObjectNotFound},
		{"value is invalid", errs.NewValueIsInvalidError("verificationCode"), errs.ErrValueIsInvalid},
		{"value is out of range", errs.NewValueIsOutOfRangeError("latitude", 91.5, -90, 90), errs.ErrValueIsOutOfRange},
		{"value is required", errs.NewValueIsRequiredError("courierId"), errs.ErrValueIsRequired},
		{"version is invalid", errs.NewVersionIsInvalidError("version", errors.New("stale")), errs.ErrVersionIsInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.err, tc.sentinel)
		})
	}
}
