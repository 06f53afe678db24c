package users

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID             uuid.UUID
	Email          string
	Name           string
	CredentialHash string
	CreatedAt      time.Time
}

// Public is the client-facing view of an account. The credential hash
// never leaves the service through this struct.
type Public struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name,omitempty"`
}

func (a Account) Public() Public {
	return Public{
		ID:    a.ID,
		Email: a.Email,
		Name:  a.Name,
	}
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// Every lookup and every stored email goes through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
