package transform

import (
	"strconv"

	"github.com/boddenberg/offer-prep-go/internal/domain"
)

// HoursPerDay converts portfolio durations from days to hours.
const HoursPerDay = 24

// PortfolioOptions controls portfolio normalization.
type PortfolioOptions struct {
	DurationMultiplier int
}

// PortfolioResult is the output of NormalizePortfolio.
type PortfolioResult struct {
	Offers []domain.Offer
	IDs    *Mapper
}

// NormalizePortfolio cleans the raw offer table: dense ids, offer type and
// channel indicators, and durations in hours. The email indicator is computed
// with the other channels and then left out of the cleaned row.
func NormalizePortfolio(raw []domain.RawOffer, opts PortfolioOptions) (*PortfolioResult, error) {
	mult := opts.DurationMultiplier
	if mult <= 0 {
		mult = HoursPerDay
	}

	types := NewExpander(OfferTypes...)
	channels := NewExpander(Channels...)
	ids := NewMapper(1)

	res := &PortfolioResult{Offers: make([]domain.Offer, 0, len(raw)), IDs: ids}
	for _, r := range raw {
		if _, dup := ids.Lookup(r.ID); dup {
			return nil, &domain.ErrValidation{Field: "id", Message: "duplicate offer id " + strconv.Quote(r.ID)}
		}
		id := ids.Code(r.ID)
		t := types.Expand([]string{r.OfferType})
		ch := channels.Expand(r.Channels)
		res.Offers = append(res.Offers, domain.Offer{
			Duration:      r.Duration * mult,
			Difficulty:    r.Difficulty,
			Reward:        r.Reward,
			ID:            id,
			BOGO:          t["bogo"],
			Informational: t["informational"],
			Discount:      t["discount"],
			Mobile:        ch["mobile"],
			Web:           ch["web"],
			Social:        ch["social"],
		})
	}
	return res, nil
}
