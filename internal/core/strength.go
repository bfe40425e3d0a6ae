package core

import (
	"github.com/nbutton23/zxcvbn-go"
)

// MinPasswordScore is the lowest zxcvbn score accepted without a warning.
const MinPasswordScore = 3

// PasswordStrength returns the zxcvbn score (0-4) for password, taking
// context words such as the site and username into account.
func PasswordStrength(password string, context ...string) int {
	return zxcvbn.PasswordStrength(password, context).Score
}

// IsWeakPassword reports whether the password scores below MinPasswordScore.
func IsWeakPassword(password string, context ...string) bool {
	return PasswordStrength(password, context...) < MinPasswordScore
}
