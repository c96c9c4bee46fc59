package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gender of a customer as recorded at registration.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender accepts any casing of the known gender values.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale, GenderOther:
		return g, nil
	default:
		return "", invalidArgument("invalid gender value %q", s)
	}
}

// Customer owns one or more accounts.
type Customer struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	BirthDate time.Time       `json:"birth_date"`
	Gender    Gender          `json:"gender"`
	Income    decimal.Decimal `json:"income"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewCustomer validates the profile and assigns a fresh ID.
func NewCustomer(name string, birthDate time.Time, gender Gender, income decimal.Decimal) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("customer name is required")
	}
	if _, err := ParseGender(string(gender)); err != nil {
		return nil, err
	}
	if income.IsNegative() {
		return nil, invalidArgument("income cannot be negative")
	}

	return &Customer{
		ID:        uuid.New(),
		Name:      name,
		BirthDate: birthDate.UTC(),
		Gender:    gender,
		Income:    income,
		CreatedAt: time.Now().UTC(),
	}, nil
}
