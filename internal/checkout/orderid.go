package checkout

import (
	"math/rand"
	"strings"
)

// OrderIDLength is the number of characters in a synthesized order id
const OrderIDLength = 9

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Synthesizer builds display-only order ids when the backend supplies none
type Synthesizer struct {
	// Fraction returns a value in [0, 1)
	Fraction func() float64
}

// NewSynthesizer returns a synthesizer backed by math/rand
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{Fraction: rand.Float64}
}

// Next renders the base-36 fractional digits of a random value, keeps the
// first OrderIDLength and uppercases them. Uniqueness is not guaranteed.
func (s *Synthesizer) Next() string {
	return FormatOrderID(s.Fraction())
}

// FormatOrderID converts a fraction in [0, 1) into an order id
func FormatOrderID(f float64) string {
	if f < 0 || f >= 1 {
		f = 0
	}

	var b strings.Builder
	b.Grow(OrderIDLength)
	for i := 0; i < OrderIDLength; i++ {
		f *= 36
		d := int(f)
		f -= float64(d)
		b.WriteByte(base36[d])
	}
	return strings.ToUpper(b.String())
}

// SynthesizeOrderID returns a fresh random order id
func SynthesizeOrderID() string {
	return FormatOrderID(rand.Float64())
}
