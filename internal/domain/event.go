package domain

// ============================================================
// Transcript events
// ============================================================

// EventType is the transcript event tag.
type EventType string

const (
	EventOfferReceived  EventType = "offer received"
	EventOfferViewed    EventType = "offer viewed"
	EventOfferCompleted EventType = "offer completed"
	EventTransaction    EventType = "transaction"
)

// Valid reports whether t is one of the four known tags.
func (t EventType) Valid() bool {
	switch t {
	case EventOfferReceived, EventOfferViewed, EventOfferCompleted, EventTransaction:
		return true
	}
	return false
}

// Payload keys. Completion events in the source dataset spell the offer key
// with an underscore.
const (
	PayloadOfferID    = "offer id"
	PayloadOfferIDAlt = "offer_id"
	PayloadAmount     = "amount"
)

// RawEvent is one row of the raw transcript.
type RawEvent struct {
	Person string         `json:"person"`
	Event  EventType      `json:"event"`
	Value  map[string]any `json:"value"`
	Time   int            `json:"time"` // hours since the start of the test
}

// Event is a transcript row whose customer id has been remapped.
type Event struct {
	Person int
	Event  EventType
	Time   int
	Value  map[string]any
}

// OfferEvent is an offer-related event joined with its customer and offer.
type OfferEvent struct {
	Event    EventType
	Time     int
	Customer Customer
	Offer    Offer
}
