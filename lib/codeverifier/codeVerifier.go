package codeverifier

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

const (
	// DefaultStateLength of 16 random bytes yields 128 bits of entropy,
	// enough to make guessing the anti-CSRF nonce infeasible.
	DefaultStateLength = 16

	// DefaultVerifierLength is in characters of the hex-encoded verifier.
	DefaultVerifierLength = 64

	// RFC 7636 section 4.1 bounds on the code verifier.
	minVerifierLength = 43
	maxVerifierLength = 128
)

// GenerateState returns a hex-encoded cryptographically random nonce
// used to bind the callback leg to the initiation leg.
func GenerateState() (string, error) {
	return randomBytesInHex(DefaultStateLength)
}

type Verifier struct {
	Value string
}

func NewVerifierFrom(value string) *Verifier {
	return &Verifier{
		Value: value,
	}
}

func NewVerifier() (*Verifier, error) {
	return NewVerifierWithLength(DefaultVerifierLength)
}

func NewVerifierWithLength(length int) (*Verifier, error) {
	if length < minVerifierLength || length > maxVerifierLength {
		return nil, fmt.Errorf("verifier length %d outside allowed range %d-%d", length, minVerifierLength, maxVerifierLength)
	}

	value, err := randomBytesInHex((length + 1) / 2)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		Value: value[:length],
	}, nil
}

func (v *Verifier) GetValue() string {
	return v.Value
}

// CreateChallenge derives the S256 code challenge: the URL-safe base64
// encoding, without padding, of the verifier's SHA-256 digest.
func (v *Verifier) CreateChallenge() (string, string, error) {
	sha2 := sha256.New()

	_, err := io.WriteString(sha2, v.Value)
	if err != nil {
		return "", "", fmt.Errorf("could not write challenge: %v", err)
	}

	codeChallenge := base64.RawURLEncoding.EncodeToString(sha2.Sum(nil))

	return "S256", codeChallenge, nil
}

func randomBytesInHex(count int) (string, error) {
	buf := make([]byte, count)

	_, err := io.ReadFull(rand.Reader, buf)
	if err != nil {
		return "", fmt.Errorf("could not generate random %d bytes: %v", count, err)
	}

	return hex.EncodeToString(buf), nil
}
