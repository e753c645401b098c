package queries_test

import (
	"testing"

	"partialdelivery/internal/core/application/usecases/queries"
	"partialdelivery/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetPartialDeliveryQuery(t *testing.T) {
	t.Run("should create valid query", func(t *testing.T) {
		id := kernel.NewUUID()

		query, err := queries.NewGetPartialDeliveryQuery(id)

		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.True(t, query.PartialDeliveryID().IsEqual(id))
	})

	t.Run("should reject zero-value identifier", func(t *testing.T) {
		_, err := queries.NewGetPartialDeliveryQuery(kernel.UUID{})

		require.Error(t, err)
	})

	t.Run("zero value should fail validation", func(t *testing.T) {
		var query queries.GetPartialDeliveryQuery

		require.ErrorIs(t, query.Validate(), queries.ErrGetPartialDeliveryQueryIsNotConstructed)
	})
}

func TestNewGetAvailableSegmentsQuery(t *testing.T) {
	t.Run("should create valid query", func(t *testing.T) {
		query := queries.NewGetAvailableSegmentsQuery()

		require.NoError(t, query.Validate())
	})

	t.Run("zero value should fail validation", func(t *testing.T) {
		var query queries.GetAvailableSegmentsQuery

		require.ErrorIs(t, query.Validate(), queries.ErrGetAvailableSegmentsQueryIsNotConstructed)
	})
}

func TestNewGetChatHistoryQuery(t *testing.T) {
	t.Run("should create valid query", func(t *testing.T) {
		id := kernel.NewUUID()

		query, err := queries.NewGetChatHistoryQuery(id)

		require.NoError(t, err)
		assert.True(t, query.PartialDeliveryID().IsEqual(id))
	})

	t.Run("should reject zero-value identifier", func(t *testing.T) {
		_, err := queries.NewGetChatHistoryQuery(kernel.UUID{})

		require.Error(t, err)
	})
}

func TestNewGetHandoverQuery(t *testing.T) {
	t.Run("should create valid query", func(t *testing.T) {
		handoverID := kernel.NewUUID()
		requester := kernel.NewUUID()

		query, err := queries.NewGetHandoverQuery(handoverID, requester)

		require.NoError(t, err)
		assert.True(t, query.HandoverID().IsEqual(handoverID))
		assert.True(t, query.RequestedBy().IsEqual(requester))
	})

	t.Run("should reject zero-value identifiers", func(t *testing.T) {
		_, err := queries.NewGetHandoverQuery(kernel.UUID{}, kernel.NewUUID())
		require.Error(t, err)

		_, err = queries.NewGetHandoverQuery(kernel.NewUUID(), kernel.UUID{})
		require.Error(t, err)
	})
}
