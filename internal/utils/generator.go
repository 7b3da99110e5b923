package utils

import (
	"crypto/rand"
)

const (
	DefaultShortCodeLength = 6
	alphabet               = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Largest multiple of len(alphabet) that fits in a byte; bytes at or above it are
	// rejected so every symbol stays equally likely.
	rejectionLimit = 256 - 256%len(alphabet)
)

// CodeGenerator produces candidate short codes. Uniqueness is the caller's problem.
type CodeGenerator interface {
	Generate() string
}

type RandomGenerator struct {
	length int
}

func NewRandomGenerator(length int) *RandomGenerator {
	if length <= 0 {
		length = DefaultShortCodeLength
	}
	return &RandomGenerator{length: length}
}

// Generate returns a code drawn uniformly from the 62-symbol alphabet.
func (g *RandomGenerator) Generate() string {
	code := make([]byte, 0, g.length)
	buf := make([]byte, g.length*2)

	for len(code) < g.length {
		// crypto/rand.Read never returns an error since Go 1.24.
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= rejectionLimit {
				continue
			}
			code = append(code, alphabet[int(b)%len(alphabet)])
			if len(code) == g.length {
				break
			}
		}
	}

	return string(code)
}

func GenerateShortCode() string {
	return NewRandomGenerator(DefaultShortCodeLength).Generate()
}

// IsShortCode reports whether s has the shape of a generated code.
func IsShortCode(s string) bool {
	if len(s) != DefaultShortCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
