package transform

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/boddenberg/offer-prep-go/internal/domain"
)

// EnrichTransactions extracts the purchase amount of each transaction event
// and joins the customer's attributes onto it.
func EnrichTransactions(events []domain.Event, customers []domain.Customer) ([]domain.Transaction, error) {
	byCustomer := indexCustomers(customers)

	out := make([]domain.Transaction, 0, len(events))
	for _, ev := range events {
		amount, err := amountFromPayload(ev)
		if err != nil {
			return nil, err
		}
		c, ok := byCustomer[ev.Person]
		if !ok {
			return nil, &domain.ErrLookup{Resource: "customer", ID: strconv.Itoa(ev.Person)}
		}
		out = append(out, domain.Transaction{
			Person:         ev.Person,
			Time:           ev.Time,
			Amount:         amount,
			MembershipDays: c.MembershipDays,
			Income:         c.Income,
			Gender:         c.Gender,
			Age:            c.Age,
		})
	}
	return out, nil
}

func amountFromPayload(ev domain.Event) (float64, error) {
	v, ok := ev.Value[domain.PayloadAmount]
	if !ok {
		return 0, &domain.ErrSchema{EventType: ev.Event, Key: domain.PayloadAmount, Message: "missing from payload"}
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, &domain.ErrParse{Field: domain.PayloadAmount, Value: n.String(), Err: err}
		}
		return f, nil
	default:
		return 0, &domain.ErrSchema{EventType: ev.Event, Key: domain.PayloadAmount, Message: fmt.Sprintf("expected number, got %T", v)}
	}
}
