package domain

// ============================================================
// Offer / Portfolio
// ============================================================

// RawOffer is one row of the raw portfolio table.
type RawOffer struct {
	Reward     float64  `json:"reward"`
	Channels   []string `json:"channels"`
	Difficulty float64  `json:"difficulty"`
	Duration   int      `json:"duration"` // days
	OfferType  string   `json:"offer_type"`
	ID         string   `json:"id"`
}

// Offer is a cleaned portfolio row. Indicator fields hold 0 or 1.
// There is no email indicator: every offer in the source is sent by email.
type Offer struct {
	Duration      int     `json:"duration"` // hours
	Difficulty    float64 `json:"difficulty"`
	Reward        float64 `json:"reward"`
	ID            int     `json:"id"`
	BOGO          int     `json:"bogo"`
	Informational int     `json:"informational"`
	Discount      int     `json:"discount"`
	Mobile        int     `json:"mobile"`
	Web           int     `json:"web"`
	Social        int     `json:"social"`
}
