package transform

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/boddenberg/offer-prep-go/internal/domain"

	"golang.org/x/sync/errgroup"
)

// EnrichOfferEvents resolves each offer event's offer id from its payload
// and joins the customer and offer rows onto it.
func EnrichOfferEvents(events []domain.Event, customers []domain.Customer, offers []domain.Offer, offerIDs *Mapper) ([]domain.OfferEvent, error) {
	byCustomer := indexCustomers(customers)
	byOffer := make(map[int]domain.Offer, len(offers))
	for _, o := range offers {
		byOffer[o.ID] = o
	}

	out := make([]domain.OfferEvent, 0, len(events))
	for _, ev := range events {
		rawOffer, err := offerIDFromPayload(ev)
		if err != nil {
			return nil, err
		}
		code, ok := offerIDs.Lookup(rawOffer)
		if !ok {
			return nil, &domain.ErrLookup{Resource: "offer", ID: rawOffer}
		}
		offer, ok := byOffer[code]
		if !ok {
			return nil, &domain.ErrLookup{Resource: "offer", ID: rawOffer}
		}
		customer, ok := byCustomer[ev.Person]
		if !ok {
			return nil, &domain.ErrLookup{Resource: "customer", ID: strconv.Itoa(ev.Person)}
		}
		out = append(out, domain.OfferEvent{
			Event:    ev.Event,
			Time:     ev.Time,
			Customer: customer,
			Offer:    offer,
		})
	}
	return out, nil
}

func offerIDFromPayload(ev domain.Event) (string, error) {
	v, ok := ev.Value[domain.PayloadOfferID]
	if !ok {
		v, ok = ev.Value[domain.PayloadOfferIDAlt]
	}
	if !ok {
		return "", &domain.ErrSchema{EventType: ev.Event, Key: domain.PayloadOfferID, Message: "missing from payload"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &domain.ErrSchema{EventType: ev.Event, Key: domain.PayloadOfferID, Message: fmt.Sprintf("expected string, got %T", v)}
	}
	return s, nil
}

func indexCustomers(customers []domain.Customer) map[int]domain.Customer {
	m := make(map[int]domain.Customer, len(customers))
	for _, c := range customers {
		m[c.ID] = c
	}
	return m
}

// Attributor decides, for every offer-received event, whether the offer was
// viewed and completed inside its window [t, t+duration) and how many of the
// customer's earlier receipts were completed.
//
// A view or completion may fall inside the windows of two receipts of the same
// offer; it then counts for both.
type Attributor struct {
	workers int
}

// NewAttributor returns an attributor that shards customers over workers
// goroutines. workers <= 1 runs inline.
func NewAttributor(workers int) *Attributor {
	return &Attributor{workers: workers}
}

type offerKey struct {
	person, offer int
}

// customerShard holds every offer event of one customer.
type customerShard struct {
	received  []int // indices into the received output slice
	viewed    map[int][]int
	completed map[int][]int
}

// Attribute returns one outcome per received event, in input order.
func (a *Attributor) Attribute(ctx context.Context, rows []domain.OfferEvent) ([]domain.OfferOutcome, error) {
	var out []domain.OfferOutcome
	shards := make(map[int]*customerShard)
	var order []*customerShard

	shardFor := func(person int) *customerShard {
		s, ok := shards[person]
		if !ok {
			s = &customerShard{viewed: map[int][]int{}, completed: map[int][]int{}}
			shards[person] = s
			order = append(order, s)
		}
		return s
	}

	for _, r := range rows {
		s := shardFor(r.Customer.ID)
		switch r.Event {
		case domain.EventOfferReceived:
			s.received = append(s.received, len(out))
			out = append(out, domain.NewOfferOutcome(r))
		case domain.EventOfferViewed:
			s.viewed[r.Offer.ID] = append(s.viewed[r.Offer.ID], r.Time)
		case domain.EventOfferCompleted:
			s.completed[r.Offer.ID] = append(s.completed[r.Offer.ID], r.Time)
		default:
			return nil, &domain.ErrSchema{EventType: r.Event, Message: "not an offer event"}
		}
	}

	if a.workers <= 1 {
		for _, s := range order {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			s.attribute(out)
		}
		return out, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, s := range order {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			// Each shard only writes the output slots of its own receipts.
			s.attribute(out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// attribute fills viewed, completed and completed_count for the shard's
// receipts. completed must be known for every receipt before any count.
func (s *customerShard) attribute(out []domain.OfferOutcome) {
	for _, times := range s.viewed {
		slices.Sort(times)
	}
	for _, times := range s.completed {
		slices.Sort(times)
	}

	for _, i := range s.received {
		r := &out[i]
		if inWindow(s.viewed[r.OfferID], r.Time, r.Duration) {
			r.Viewed = 1
		}
		if inWindow(s.completed[r.OfferID], r.Time, r.Duration) {
			r.Completed = 1
		}
	}

	byTime := slices.Clone(s.received)
	slices.SortStableFunc(byTime, func(a, b int) int { return cmp.Compare(out[a].Time, out[b].Time) })

	done := 0
	for lo := 0; lo < len(byTime); {
		hi := lo
		t := out[byTime[lo]].Time
		for hi < len(byTime) && out[byTime[hi]].Time == t {
			hi++
		}
		// Receipts at the same time do not count each other.
		added := 0
		for _, i := range byTime[lo:hi] {
			out[i].CompletedCount = done
			added += out[i].Completed
		}
		done += added
		lo = hi
	}
}

// inWindow reports whether some time in sorted times lies in [t, t+d).
func inWindow(times []int, t, d int) bool {
	i, _ := slices.BinarySearch(times, t)
	return i < len(times) && d > 0 && uint(times[i]-t) < uint(d)
}
