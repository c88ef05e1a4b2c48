package transform_test

import (
	"testing"

	"github.com/boddenberg/offer-prep-go/internal/domain"
	"github.com/boddenberg/offer-prep-go/internal/transform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawPortfolio() []domain.RawOffer {
	return []domain.RawOffer{
		{Reward: 10, Channels: []string{"email", "mobile", "social"}, Difficulty: 10, Duration: 7, OfferType: "bogo", ID: "ae264e3637204a6fb9bb56bc8210ddfd"},
		{Reward: 0, Channels: []string{"web", "email", "mobile"}, Difficulty: 0, Duration: 4, OfferType: "informational", ID: "3f207df678b143eea3cee63160fa8bed"},
		{Reward: 3, Channels: []string{"email", "mobile", "web", "social"}, Difficulty: 7, Duration: 7, OfferType: "discount", ID: "2298d6c36e964ae4a3e7e9706d1fb8c2"},
	}
}

func TestNormalizePortfolio(t *testing.T) {
	res, err := transform.NormalizePortfolio(rawPortfolio(), transform.PortfolioOptions{})
	require.NoError(t, err)
	require.Len(t, res.Offers, 3)

	assert.Equal(t, domain.Offer{
		Duration: 168, Difficulty: 10, Reward: 10, ID: 1,
		BOGO: 1, Mobile: 1, Social: 1,
	}, res.Offers[0])
	assert.Equal(t, domain.Offer{
		Duration: 96, ID: 2,
		Informational: 1, Mobile: 1, Web: 1,
	}, res.Offers[1])
	assert.Equal(t, domain.Offer{
		Duration: 168, Difficulty: 7, Reward: 3, ID: 3,
		Discount: 1, Mobile: 1, Web: 1, Social: 1,
	}, res.Offers[2])
}

func TestNormalizePortfolio_IDs(t *testing.T) {
	res, err := transform.NormalizePortfolio(rawPortfolio(), transform.PortfolioOptions{})
	require.NoError(t, err)

	code, ok := res.IDs.Lookup("2298d6c36e964ae4a3e7e9706d1fb8c2")
	require.True(t, ok)
	assert.Equal(t, 3, code)
}

func TestNormalizePortfolio_UnknownTagsIgnored(t *testing.T) {
	raw := []domain.RawOffer{{Channels: []string{"email", "billboard"}, Duration: 1, OfferType: "loyalty", ID: "o"}}

	res, err := transform.NormalizePortfolio(raw, transform.PortfolioOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.Offer{Duration: 24, ID: 1}, res.Offers[0])
}

func TestNormalizePortfolio_DurationMultiplier(t *testing.T) {
	res, err := transform.NormalizePortfolio(rawPortfolio(), transform.PortfolioOptions{DurationMultiplier: 1})
	require.NoError(t, err)

	assert.Equal(t, 7, res.Offers[0].Duration)
}

func TestNormalizePortfolio_DuplicateID(t *testing.T) {
	raw := append(rawPortfolio(), rawPortfolio()[0])

	_, err := transform.NormalizePortfolio(raw, transform.PortfolioOptions{})
	var validation *domain.ErrValidation
	assert.ErrorAs(t, err, &validation)
}
