package kernel_test

import (
	"testing"

	"partialdelivery/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	t.Run("should create a valid UUID", func(t *testing.T) {
		id := kernel.NewUUID()

		assert.NoError(t, id.Validate())
		assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", id.String())
	})

	t.Run("should not repeat across calls", func(t *testing.T) {
		first := kernel.NewUUID()
		second := kernel.NewUUID()

		assert.False(t, first.IsEqual(second))
		assert.NotEqual(t, first.String(), second.String())
	})
}

func TestUUIDFromString(t *testing.T) {
	canonical := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

	t.Run("should parse canonical form", func(t *testing.T) {
		id, err := kernel.UUIDFromString(canonical)

		require.NoError(t, err)
		assert.Equal(t, canonical, id.String())
		assert.NoError(t, id.Validate())
	})

	t.Run("should parse alternate forms", func(t *testing.T) {
		variants := []string{
			"{6ba7b810-9dad-11d1-80b4-00c04fd430c8}",
			"urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8",
			"6ba7b8109dad11d180b400c04fd430c8",
		}

		for _, v := range variants {
			id, err := kernel.UUIDFromString(v)
			require.NoError(t, err, "variant: %s", v)
			assert.Equal(t, canonical, id.String())
		}
	})

	t.Run("should reject malformed input", func(t *testing.T) {
		malformed := []string{
			"",
			"not-a-uuid",
			"6ba7b810-9dad-11d1-80b4",
			"6ba7b810-9dad-11d1-80b4-00c04fd430c8-extra",
			"zzz7b810-9dad-11d1-80b4-00c04fd430c8",
		}

		for _, input := range malformed {
			_, err := kernel.UUIDFromString(input)
			require.Error(t, err, "input: %s", input)
			assert.Contains(t, err.Error(), "invalid UUID format")
		}
	})
}

func TestUUIDFromBytes(t *testing.T) {
	raw := []byte{
		0x6b, 0xa7, 0xb8, 0x10, 0x9d, 0xad, 0x11, 0xd1,
		0x80, 0xb4, 0x00, 0xc0, 0x4f, 0xd4, 0x30, 0xc8,
	}

	t.Run("should create UUID from 16 bytes", func(t *testing.T) {
		id, err := kernel.UUIDFromBytes(raw)

		require.NoError(t, err)
		assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", id.String())
	})

	t.Run("should reject short slices", func(t *testing.T) {
		_, err := kernel.UUIDFromBytes([]byte{0x6b, 0xa7, 0xb8})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid UUID format")
	})

	t.Run("should reject all-zero bytes", func(t *testing.T) {
		_, err := kernel.UUIDFromBytes(make([]byte, 16))

		assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})
}

func TestUUID_String(t *testing.T) {
	t.Run("should render the canonical form", func(t *testing.T) {
		id := kernel.NewUUID()

		assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id.String())
	})

	t.Run("should be stable", func(t *testing.T) {
		id, err := kernel.UUIDFromString("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

		require.NoError(t, err)
		assert.Equal(t, id.String(), id.String())
	})
}

func TestUUID_Bytes(t *testing.T) {
	t.Run("should expose the underlying uuid.UUID", func(t *testing.T) {
		id := kernel.NewUUID()
		inner := id.Bytes()

		assert.IsType(t, uuid.UUID{}, inner)
		assert.Equal(t, id.String(), inner.String())
	})

	t.Run("mutating the copy leaves the original intact", func(t *testing.T) {
		id := kernel.NewUUID()
		before := id.String()

		inner := id.Bytes()
		for i := range inner {
			inner[i] = 0xFF
		}

		assert.Equal(t, before, id.String())
		assert.NoError(t, id.Validate())
	})
}

func TestUUID_IsEqual(t *testing.T) {
	t.Run("same value compares equal", func(t *testing.T) {
		a, _ := kernel.UUIDFromString("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
		b, _ := kernel.UUIDFromString("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

		assert.True(t, a.IsEqual(b))
		assert.True(t, b.IsEqual(a))
	})

	t.Run("distinct values compare unequal", func(t *testing.T) {
		a := kernel.NewUUID()
		b := kernel.NewUUID()

		assert.False(t, a.IsEqual(b))
	})

	t.Run("zero values compare equal to each other", func(t *testing.T) {
		var a, b kernel.UUID

		assert.True(t, a.IsEqual(b))
		assert.False(t, a.IsEqual(kernel.NewUUID()))
	})
}

func TestUUID_Validate(t *testing.T) {
	t.Run("constructed UUID is valid", func(t *testing.T) {
		assert.NoError(t, kernel.NewUUID().Validate())
	})

	t.Run("zero value is rejected", func(t *testing.T) {
		var id kernel.UUID

		assert.ErrorIs(t, id.Validate(), kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("parsed nil UUID is rejected", func(t *testing.T) {
		id, err := kernel.UUIDFromString("00000000-0000-0000-0000-000000000000")

		require.NoError(t, err)
		assert.ErrorIs(t, id.Validate(), kernel.ErrUUIDIsNotConstructed)
	})
}

func TestUUID_AsEntityIdentifier(t *testing.T) {
	type segmentRef struct {
		ID kernel.UUID
	}

	t.Run("initialized field validates", func(t *testing.T) {
		ref := segmentRef{ID: kernel.NewUUID()}

		assert.NoError(t, ref.ID.Validate())
	})

	t.Run("uninitialized field is caught by Validate", func(t *testing.T) {
		var ref segmentRef

		assert.Error(t, ref.ID.Validate())
	})
}
