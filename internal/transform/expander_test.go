package transform_test

import (
	"testing"

	"github.com/boddenberg/offer-prep-go/internal/transform"

	"github.com/stretchr/testify/assert"
)

func TestExpander_Expand(t *testing.T) {
	e := transform.NewExpander(transform.Channels...)

	tests := []struct {
		name string
		tags []string
		want transform.Indicators
	}{
		{"all channels", []string{"web", "email", "mobile", "social"}, transform.Indicators{"email": 1, "mobile": 1, "web": 1, "social": 1}},
		{"subset", []string{"email", "web"}, transform.Indicators{"email": 1, "mobile": 0, "web": 1, "social": 0}},
		{"order does not matter", []string{"web", "email"}, transform.Indicators{"email": 1, "mobile": 0, "web": 1, "social": 0}},
		{"empty", nil, transform.Indicators{"email": 0, "mobile": 0, "web": 0, "social": 0}},
		{"unknown tags ignored", []string{"fax", "email", "carrier pigeon"}, transform.Indicators{"email": 1, "mobile": 0, "web": 0, "social": 0}},
		{"duplicates", []string{"mobile", "mobile"}, transform.Indicators{"email": 0, "mobile": 1, "web": 0, "social": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Expand(tt.tags))
		})
	}
}

func TestExpander_NoColumnsForUnknownTags(t *testing.T) {
	e := transform.NewExpander(transform.OfferTypes...)

	ind := e.Expand([]string{"mystery"})
	assert.Len(t, ind, len(transform.OfferTypes))
	assert.NotContains(t, ind, "mystery")
	assert.False(t, ind.Has("bogo"))
}

func TestExpander_CategoriesAreCopied(t *testing.T) {
	cats := []string{"a", "b"}
	e := transform.NewExpander(cats...)
	cats[0] = "z"

	got := e.Categories()
	got[1] = "y"
	assert.Equal(t, []string{"a", "b"}, e.Categories())
}
