package domain

// ============================================================
// Analysis outputs
// ============================================================

// OfferOutcome is one offer-received event with its attributed outcome.
type OfferOutcome struct {
	Person  int `json:"person"`
	Time    int `json:"time"`
	OfferID int `json:"offer_id"`

	MembershipDays int      `json:"membership_days"`
	Income         *float64 `json:"income"`
	Gender         int      `json:"gender"`
	Age            int      `json:"age"`

	Duration      int     `json:"duration"`
	Difficulty    float64 `json:"difficulty"`
	Reward        float64 `json:"reward"`
	BOGO          int     `json:"bogo"`
	Informational int     `json:"informational"`
	Discount      int     `json:"discount"`
	Mobile        int     `json:"mobile"`
	Web           int     `json:"web"`
	Social        int     `json:"social"`

	Viewed         int `json:"viewed"`
	Completed      int `json:"completed"`
	CompletedCount int `json:"completed_count"`
}

// NewOfferOutcome flattens a received event into an outcome row with no
// outcome attributed yet.
func NewOfferOutcome(ev OfferEvent) OfferOutcome {
	c, o := ev.Customer, ev.Offer
	return OfferOutcome{
		Person:         c.ID,
		Time:           ev.Time,
		OfferID:        o.ID,
		MembershipDays: c.MembershipDays,
		Income:         c.Income,
		Gender:         c.Gender,
		Age:            c.Age,
		Duration:       o.Duration,
		Difficulty:     o.Difficulty,
		Reward:         o.Reward,
		BOGO:           o.BOGO,
		Informational:  o.Informational,
		Discount:       o.Discount,
		Mobile:         o.Mobile,
		Web:            o.Web,
		Social:         o.Social,
	}
}

// Transaction is one purchase joined with the customer's attributes.
type Transaction struct {
	Person int     `json:"person"`
	Time   int     `json:"time"`
	Amount float64 `json:"amount"`

	MembershipDays int      `json:"membership_days"`
	Income         *float64 `json:"income"`
	Gender         int      `json:"gender"`
	Age            int      `json:"age"`
}
