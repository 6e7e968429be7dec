package config

import (
	"crypto/rand"
	"math/big"
)

var controlTokenCharset = []rune(
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"abcdefghijklmnopqrstuvwxyz" +
		"0123456789" +
		"!@#$%^&*()-_=+[]{}:,.?",
)

// GenerateControlToken produces a random token for the local control
// channel, 55 to 64 characters long.
func GenerateControlToken() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10))
	if err != nil {
		return "", err
	}
	length := 55 + n.Int64()

	runes := make([]rune, length)
	for i := range runes {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(controlTokenCharset))))
		if err != nil {
			return "", err
		}
		runes[i] = controlTokenCharset[idx.Int64()]
	}
	return string(runes), nil
}
