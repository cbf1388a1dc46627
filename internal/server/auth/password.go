package auth

import (
	"unicode"

	"github.com/charstorm/toposphere/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of the plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword applies the account password policy: at least 8
// characters with at least one uppercase letter, one lowercase letter,
// and one digit. The returned error is field-keyed under "password".
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return common.FieldError("password", "password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	switch {
	case !hasUpper:
		return common.FieldError("password", "password must contain at least 1 uppercase letter")
	case !hasLower:
		return common.FieldError("password", "password must contain at least 1 lowercase letter")
	case !hasDigit:
		return common.FieldError("password", "password must contain at least 1 digit")
	}

	return nil
}
