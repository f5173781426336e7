package auth

import (
	domain "file-vault-api/internal/domain/user"
)

func ToResponseUser(u domain.User) User {
	return User{
		UUID:      u.UUID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
