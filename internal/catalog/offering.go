package catalog

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Offering is a published catalog entry. Bookings copy its fields at
// booking time and never reference it afterwards, so edits and deletes
// here cannot rewrite history.
type Offering struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Duration    float64         `json:"duration"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Validate enforces the offering contract: non-empty name, price >= 0,
// duration (hours) > 0.
func Validate(name string, price decimal.Decimal, duration float64) error {
	if name == "" {
		return ValidationError{Code: "NAME_REQUIRED", Message: "name is required"}
	}
	if price.IsNegative() {
		return ValidationError{Code: "PRICE_INVALID", Message: "price must be >= 0"}
	}
	if duration <= 0 {
		return ValidationError{Code: "DURATION_INVALID", Message: "duration must be > 0"}
	}
	return nil
}
