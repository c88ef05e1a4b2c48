package transform

import (
	"errors"
	"strconv"
	"time"

	"github.com/boddenberg/offer-prep-go/internal/domain"
)

// SentinelAge marks a profile row with missing demographic data.
const SentinelAge = 118

const signupLayout = "20060102"

const secondsPerDay = 24 * 60 * 60

// missingGender is the gender key for rows without a gender.
const missingGender = ""

// ProfileOptions controls profile normalization.
type ProfileOptions struct {
	// Reference is the instant membership tenure is measured against.
	Reference time.Time
	// SentinelAge defaults to the package SentinelAge when not positive.
	SentinelAge int
	GenderStart int
}

// ProfileResult is the output of NormalizeProfiles.
type ProfileResult struct {
	Customers []domain.Customer
	Removed   []int
	IDs       *Mapper
	Genders   *Mapper
}

// NormalizeProfiles cleans the raw profile table: dense ids, gender codes,
// membership tenure in days, and removal of sentinel-age rows. Ids and gender
// codes are assigned over the full table before any row is removed so that
// transcript events of removed customers can still be remapped.
func NormalizeProfiles(raw []domain.RawCustomer, opts ProfileOptions) (*ProfileResult, error) {
	if opts.Reference.IsZero() {
		return nil, &domain.ErrValidation{Field: "reference", Message: "reference date is required"}
	}
	ref := opts.Reference.UTC()
	sentinel := opts.SentinelAge
	if sentinel <= 0 {
		sentinel = SentinelAge
	}

	ids := NewMapper(1)
	genders := NewMapper(opts.GenderStart)
	for _, r := range raw {
		if _, dup := ids.Lookup(r.ID); dup {
			return nil, &domain.ErrValidation{Field: "id", Message: "duplicate customer id " + strconv.Quote(r.ID)}
		}
		ids.Code(r.ID)
		genders.Code(genderKey(r.Gender))
	}

	res := &ProfileResult{
		Customers: make([]domain.Customer, 0, len(raw)),
		Removed:   []int{},
		IDs:       ids,
		Genders:   genders,
	}
	for _, r := range raw {
		days, err := membershipDays(string(r.BecameMemberOn), ref)
		if err != nil {
			return nil, err
		}
		id, _ := ids.Lookup(r.ID)
		if r.Age == sentinel {
			res.Removed = append(res.Removed, id)
			continue
		}
		gender, _ := genders.Lookup(genderKey(r.Gender))
		res.Customers = append(res.Customers, domain.Customer{
			MembershipDays: days,
			Income:         r.Income,
			Gender:         gender,
			Age:            r.Age,
			ID:             id,
		})
	}
	return res, nil
}

func genderKey(g *string) string {
	if g == nil {
		return missingGender
	}
	return *g
}

// membershipDays returns the whole days between an 8-digit signup date and ref.
func membershipDays(signup string, ref time.Time) (int, error) {
	if len(signup) != len(signupLayout) {
		return 0, &domain.ErrParse{Field: "became_member_on", Value: signup, Err: errors.New("expected 8 digits YYYYMMDD")}
	}
	if _, err := strconv.Atoi(signup); err != nil {
		return 0, &domain.ErrParse{Field: "became_member_on", Value: signup, Err: err}
	}
	t, err := time.ParseInLocation(signupLayout, signup, time.UTC)
	if err != nil {
		return 0, &domain.ErrParse{Field: "became_member_on", Value: signup, Err: err}
	}
	if t.After(ref) {
		return 0, &domain.ErrParse{Field: "became_member_on", Value: signup, Err: errors.New("signup is after the reference date")}
	}
	return int((ref.Unix() - t.Unix()) / secondsPerDay), nil
}
