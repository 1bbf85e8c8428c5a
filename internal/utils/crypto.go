package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// passwordAlphabet leaves out characters that are easy to misread when a
// generated password is copied from the seed output (0/O, 1/l/I), and
// symbols that need quoting in a shell.
const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789-_.@%+"

// GeneratePassword returns a random password of length characters drawn
// uniformly from passwordAlphabet.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("password length must be positive")
	}

	limit := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
