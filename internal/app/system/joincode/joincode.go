// Package joincode generates the short codes users type to find a team.
//
// Codes are not globally unique. Two teams may share a code; lookups resolve
// to the earliest-created team. Callers that want fewer collisions draw a few
// candidates and keep the first one not in use.
package joincode

import (
	"crypto/rand"
	"math/big"
)

// Length of a join code.
const Length = 4

// Alphabet is base-36, uppercase.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generator draws codes. The zero value is not usable; use New or Func.
type Generator interface {
	Next() (string, error)
}

// Func adapts a function into a Generator.
type Func func() (string, error)

func (f Func) Next() (string, error) { return f() }

type cryptoGen struct{}

// New returns a crypto-random generator.
func New() Generator { return cryptoGen{} }

func (cryptoGen) Next() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	b := make([]byte, Length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b), nil
}

// Sequence returns a generator that yields codes in order and then repeats the
// last one. Useful to force collisions in tests.
func Sequence(codes ...string) Generator {
	i := 0
	return Func(func() (string, error) {
		c := codes[min(i, len(codes)-1)]
		i++
		return c, nil
	})
}
