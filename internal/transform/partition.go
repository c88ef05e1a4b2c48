package transform

import "github.com/boddenberg/offer-prep-go/internal/domain"

// Partition is the transcript split into offer and transaction events.
type Partition struct {
	Offers       []domain.Event
	Transactions []domain.Event
}

// PartitionEvents remaps every event's customer id, drops the events of
// removed customers and splits the rest by tag. Input order is kept.
func PartitionEvents(raw []domain.RawEvent, ids *Mapper, removed []int) (*Partition, error) {
	drop := make(map[int]struct{}, len(removed))
	for _, id := range removed {
		drop[id] = struct{}{}
	}

	p := &Partition{}
	for _, r := range raw {
		if !r.Event.Valid() {
			return nil, &domain.ErrSchema{EventType: r.Event, Message: "unknown event type"}
		}
		person, ok := ids.Lookup(r.Person)
		if !ok {
			return nil, &domain.ErrLookup{Resource: "customer", ID: r.Person}
		}
		if _, skip := drop[person]; skip {
			continue
		}
		ev := domain.Event{Person: person, Event: r.Event, Time: r.Time, Value: r.Value}
		if r.Event == domain.EventTransaction {
			p.Transactions = append(p.Transactions, ev)
		} else {
			p.Offers = append(p.Offers, ev)
		}
	}
	return p, nil
}
