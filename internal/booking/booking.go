package booking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ServiceDetails is the offering snapshot embedded in a booking. It is
// copied from the catalog at creation time and never resynced: later
// offering edits or deletion leave it untouched.
type ServiceDetails struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Duration    float64         `json:"duration"`
	Description string          `json:"description,omitempty"`
}

type Booking struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Address        string         `json:"address"`
	Service        string         `json:"service"`
	ServiceDetails ServiceDetails `json:"serviceDetails"`
	Date           string         `json:"date"`
	BookingDate    string         `json:"bookingDate"`
	Status         Status         `json:"status"`
	Timestamp      string         `json:"timestamp"`
	CreatedAt      time.Time      `json:"createdAt"`
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
