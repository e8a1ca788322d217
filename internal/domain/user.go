package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the domain entity for a registered account.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
