package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	User struct {
		ID           uint64
		UUID         uuid.UUID
		Email        string
		PasswordHash string

		CreatedAt time.Time
	}
	Users []*User
)
