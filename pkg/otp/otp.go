package otp

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"math/big"

	"github.com/xlzd/gotp"
)

const (
	secretLength = 32
	codeDigits   = 6
	maxAttempts  = 64
)

// Generator produces one-time codes.
type Generator interface {
	// RandomSecret returns length random bytes as unpadded base32, so the
	// result has EncodedSecretLength(length) characters.
	RandomSecret(length int) string
	// Code returns a decimal code of six digits without a leading zero,
	// uniform over 100000..999999.
	Code() (string, error)
}

// EncodedSecretLength is the number of characters RandomSecret(n) returns.
func EncodedSecretLength(n int) int {
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodedLen(n)
}

type GOTPGenerator struct{}

func NewGOTPGenerator() *GOTPGenerator {
	return &GOTPGenerator{}
}

func (g *GOTPGenerator) RandomSecret(length int) string {
	return gotp.RandomSecret(length)
}

// Code draws an HOTP value from a fresh random secret and counter. Values
// with a leading zero are redrawn, which keeps the rest of the range uniform.
func (g *GOTPGenerator) Code() (string, error) {
	for i := 0; i < maxAttempts; i++ {
		counter, err := rand.Int(rand.Reader, big.NewInt(1<<31))
		if err != nil {
			return "", err
		}

		code := gotp.NewDefaultHOTP(gotp.RandomSecret(secretLength)).At(int(counter.Int64()))
		if len(code) == codeDigits && code[0] != '0' {
			return code, nil
		}
	}

	return "", errors.New("otp: no code generated")
}
