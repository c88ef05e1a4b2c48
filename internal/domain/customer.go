package domain

import (
	"encoding/json"
	"strings"
)

// ============================================================
// Customer / Profile
// ============================================================

// SignupDate is the raw 8-digit YYYYMMDD signup date. The source table stores
// it as a JSON number; strings are accepted as well.
type SignupDate string

// UnmarshalJSON accepts both 20170212 and "20170212".
func (d *SignupDate) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*d = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*d = SignupDate(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = SignupDate(n.String())
	return nil
}

// RawCustomer is one row of the raw profile table.
type RawCustomer struct {
	ID             string     `json:"id"`
	Gender         *string    `json:"gender"`
	Age            int        `json:"age"`
	Income         *float64   `json:"income"`
	BecameMemberOn SignupDate `json:"became_member_on"`
}

// Customer is a cleaned profile row. Field order is the output column order.
type Customer struct {
	MembershipDays int      `json:"membership_days"` // whole days between signup and the reference date
	Income         *float64 `json:"income"`
	Gender         int      `json:"gender"`
	Age            int      `json:"age"`
	ID             int      `json:"id"`
}

// IDPair is one entry of an identifier remapping table.
type IDPair struct {
	Raw  string `json:"raw"`
	Code int    `json:"code"`
}
