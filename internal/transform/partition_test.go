package transform_test

import (
	"testing"

	"github.com/boddenberg/offer-prep-go/internal/domain"
	"github.com/boddenberg/offer-prep-go/internal/transform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionEvents(t *testing.T) {
	ids := transform.MapIDs([]string{"a", "b", "c"}, 1)
	raw := []domain.RawEvent{
		{Person: "a", Event: domain.EventOfferReceived, Value: map[string]any{"offer id": "o1"}, Time: 0},
		{Person: "b", Event: domain.EventTransaction, Value: map[string]any{"amount": 1.5}, Time: 1},
		{Person: "c", Event: domain.EventOfferViewed, Value: map[string]any{"offer id": "o1"}, Time: 2},
		{Person: "b", Event: domain.EventOfferCompleted, Value: map[string]any{"offer_id": "o1", "reward": 2.0}, Time: 3},
		{Person: "a", Event: domain.EventTransaction, Value: map[string]any{"amount": 9.0}, Time: 4},
	}

	p, err := transform.PartitionEvents(raw, ids, []int{3})
	require.NoError(t, err)

	require.Len(t, p.Offers, 2)
	assert.Equal(t, 1, p.Offers[0].Person)
	assert.Equal(t, domain.EventOfferReceived, p.Offers[0].Event)
	assert.Equal(t, 2, p.Offers[1].Person)
	assert.Equal(t, domain.EventOfferCompleted, p.Offers[1].Event)

	require.Len(t, p.Transactions, 2)
	assert.Equal(t, 1, p.Transactions[0].Time)
	assert.Equal(t, 4, p.Transactions[1].Time)
}

func TestPartitionEvents_UnknownCustomer(t *testing.T) {
	ids := transform.MapIDs([]string{"a"}, 1)
	raw := []domain.RawEvent{{Person: "ghost", Event: domain.EventTransaction, Value: map[string]any{"amount": 1.0}}}

	_, err := transform.PartitionEvents(raw, ids, nil)

	var lookup *domain.ErrLookup
	require.ErrorAs(t, err, &lookup)
	assert.Equal(t, "customer", lookup.Resource)
	assert.Equal(t, "ghost", lookup.ID)
}

func TestPartitionEvents_UnknownEventType(t *testing.T) {
	ids := transform.MapIDs([]string{"a"}, 1)
	raw := []domain.RawEvent{{Person: "a", Event: "offer expired"}}

	_, err := transform.PartitionEvents(raw, ids, nil)

	var schema *domain.ErrSchema
	assert.ErrorAs(t, err, &schema)
}
