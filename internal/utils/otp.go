package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	otpMin   = 1000
	otpRange = 9000
)

// GenerateOTP returns a random four digit code between 1000 and 9999.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpRange))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
