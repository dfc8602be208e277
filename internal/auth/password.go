package auth

import (
	"errors"

	"helpdesk/internal/domain"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// CheckPasswordStrength rejects passwords scoring below minScore (0..4).
// userInputs such as the email and names are penalized when reused.
func CheckPasswordStrength(password string, minScore int, userInputs ...string) error {
	if len(password) < 6 {
		return domain.ValidationError{Field: "password", Msg: "must be at least 6 characters"}
	}
	if len(password) > 72 {
		return domain.ValidationError{Field: "password", Msg: "must be at most 72 bytes", Err: bcrypt.ErrPasswordTooLong}
	}
	if minScore <= 0 {
		return nil
	}
	if zxcvbn.PasswordStrength(password, userInputs).Score < minScore {
		return domain.ValidationError{Field: "password", Msg: "is not strong enough", Err: errWeakPassword}
	}
	return nil
}

var errWeakPassword = errors.New("weak password")
