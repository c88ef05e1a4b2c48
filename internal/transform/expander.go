package transform

// Category lists for the portfolio table. Order is the output column order.
var (
	OfferTypes = []string{"bogo", "informational", "discount"}
	Channels   = []string{"email", "mobile", "web", "social"}
)

// Indicators maps every known category to 0 or 1.
type Indicators map[string]int

// Has reports whether the category was present.
func (ind Indicators) Has(category string) bool { return ind[category] == 1 }

// Expander turns a collection of tags into one indicator per known category.
// Tags outside the category list are ignored.
type Expander struct {
	categories []string
}

// NewExpander returns an expander over the given ordered categories.
func NewExpander(categories ...string) *Expander {
	return &Expander{categories: append([]string(nil), categories...)}
}

// Categories returns the indicator names in column order.
func (e *Expander) Categories() []string {
	return append([]string(nil), e.categories...)
}

// Expand returns the indicators for one row's tags.
func (e *Expander) Expand(tags []string) Indicators {
	present := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		present[t] = struct{}{}
	}
	ind := make(Indicators, len(e.categories))
	for _, c := range e.categories {
		if _, ok := present[c]; ok {
			ind[c] = 1
		} else {
			ind[c] = 0
		}
	}
	return ind
}
