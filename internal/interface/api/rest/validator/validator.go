package validator

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"file-vault-api/internal/domain/file"
	"file-vault-api/internal/interface/api/rest/dto/auth"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt safe
)

func ValidatePage(page string) (int, error) {
	if page == "" {
		return 1, nil
	}
	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		return 0, errors.New("invalid page")
	}
	return p, nil
}

func IsUUID(s string) (bool, uuid.UUID) {
	id, err := uuid.Parse(s)
	return err == nil, id
}

// ParseParentID maps the request's parent reference to the catalog's
// nullable parent. Absent and the "0" root sentinel both mean top-level.
func ParseParentID(s string) (*uuid.UUID, error) {
	if s == "" || s == "0" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, errors.New("parent_id must be a valid UUID or \"0\"")
	}
	return &id, nil
}

func ParseKind(s string) (file.Kind, error) {
	kind, ok := file.ParseKind(strings.TrimSpace(s))
	if !ok {
		return "", errors.New(`kind must be one of "folder", "file", "image"`)
	}
	return kind, nil
}

func ParseWidth(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	w, err := strconv.Atoi(s)
	if err != nil || w < 0 {
		return 0, errors.New("width must be a non-negative integer")
	}
	return w, nil
}

func ValidateCredentials(email, password string) map[string]string {
	errs := make(map[string]string)

	// Normalize
	email = strings.ToLower(strings.TrimSpace(email))

	// email (required + format)
	if email == "" {
		errs["email"] = "email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "invalid email format"
	}

	// password (required + length)
	if strings.TrimSpace(password) == "" {
		errs["password"] = "password is required"
	} else if l := utf8.RuneCountInString(password); l < minPasswordLen || l > maxPasswordLen {
		errs["password"] = "password length must be 8-72 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ValidateLogin(r auth.LoginRequest) map[string]string {
	return ValidateCredentials(r.Email, r.Password)
}

func ValidateRegister(r auth.RegisterRequest) map[string]string {
	return ValidateCredentials(r.Email, r.Password)
}
