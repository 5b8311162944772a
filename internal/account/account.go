package account

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleCustomer = "customer"
	RoleOwner    = "owner"
)

func ParseRole(s string) (string, error) {
	switch s {
	case RoleCustomer, RoleOwner:
		return s, nil
	default:
		return "", fmt.Errorf("unknown role: %s", s)
	}
}

// Account is keyed by (email, role): the same email may exist once as a
// customer and once as an owner, as two distinct accounts.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (a *Account) VerifyPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plain)) == nil
}
