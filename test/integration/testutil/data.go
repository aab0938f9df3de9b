//go:build integration

package testutil

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// DataGenerator produces fighter, card and account data for integration tests.
type DataGenerator struct {
	faker *gofakeit.Faker
}

// NewDataGenerator creates a generator with an optional fixed seed.
func NewDataGenerator(seed ...uint64) *DataGenerator {
	s := uint64(time.Now().UnixNano())
	if len(seed) > 0 {
		s = seed[0]
	}
	return &DataGenerator{faker: gofakeit.New(s)}
}

// FighterName returns a unique-looking "First Last" name.
func (g *DataGenerator) FighterName() string {
	return g.faker.FirstName() + " " + g.faker.LastName() + " " + g.faker.LetterN(4)
}

// Record returns a "W-L-D" record string and its canonical form.
func (g *DataGenerator) Record() (raw, canonical string) {
	w, l, d := g.faker.Number(0, 30), g.faker.Number(0, 15), g.faker.Number(0, 3)
	canonical = fmt.Sprintf("%d-%d-%d", w, l, d)
	if d == 0 {
		return fmt.Sprintf("%d-%d", w, l), canonical
	}
	return canonical, canonical
}

// EventName returns a plausible card name.
func (g *DataGenerator) EventName() string {
	return fmt.Sprintf("Fight Night %d: %s", g.faker.Number(100, 999), g.faker.City())
}

// Email returns a unique email address.
func (g *DataGenerator) Email() string {
	return g.faker.LetterN(8) + "." + g.faker.Email()
}

// Password returns a password satisfying the minimum length.
func (g *DataGenerator) Password() string {
	return g.faker.Password(true, true, true, false, false, 14)
}
