package order

import (
	"crypto/rand"
	"fmt"
)

const (
	// IDPrefix starts every order id.
	IDPrefix = "ORD-"

	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength   = 9
)

// IDGenerator produces candidate order ids.
type IDGenerator interface {
	NewOrderID() (string, error)
}

// RandomIDGenerator draws ids from crypto/rand.
type RandomIDGenerator struct{}

// NewOrderID returns IDPrefix followed by nine random [A-Z0-9] characters.
func (RandomIDGenerator) NewOrderID() (string, error) {
	// Reject bytes >= 252 so every character is equally likely.
	const limit = 256 - 256%len(idAlphabet)

	out := make([]byte, 0, len(IDPrefix)+idLength)
	out = append(out, IDPrefix...)
	buf := make([]byte, 16)
	for len(out) < cap(out) {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, idAlphabet[int(b)%len(idAlphabet)])
			if len(out) == cap(out) {
				break
			}
		}
	}
	return string(out), nil
}
