package email

import (
	"regexp"
	"strings"
)

const maxEmailLength = 254

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsEmailValid(email string) bool {
	email = strings.TrimSpace(email)
	if len(email) < 3 || len(email) > maxEmailLength {
		return false
	}

	return emailPattern.MatchString(email)
}
