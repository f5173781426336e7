package user

import (
	domain "file-vault-api/internal/domain/user"
)

func fromDBModel(model *User) *domain.User {
	return &domain.User{
		UUID:         model.UUID,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,

		CreatedAt: model.CreatedAt,
	}
}
