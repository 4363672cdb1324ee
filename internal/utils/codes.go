package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// VerificationAlphabet is the character set of voucher verification codes
	VerificationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// DefaultVerificationLength is the verification code length used for vouchers
	DefaultVerificationLength = 8

	voucherRefPrefix = "WW"
	voucherRefSpace  = 100000
)

// GenerateRandomString generates a random string of the given length drawn from alphabet
func GenerateRandomString(alphabet string, length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	if alphabet == "" {
		return "", fmt.Errorf("empty alphabet")
	}
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}

// VoucherReference returns a display reference of the form WW-<year>-<5 digits>.
// It is a label, not a key; callers that need uniqueness must check for it.
func VoucherReference(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(voucherRefSpace))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%05d", voucherRefPrefix, now.Year(), n.Int64()), nil
}

// VerificationCode returns a random uppercase alphanumeric code
func VerificationCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultVerificationLength
	}
	return GenerateRandomString(VerificationAlphabet, length)
}
