// Package market produces simulated price quotes and the prompt used to ask
// the assistant for selling advice.
package market

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/muurk/kisan/internal/crops"
)

// Tracked is how many catalog crops the market screen offers.
const Tracked = 6

// InsightsUnavailableText replaces the insights when the assistant fails.
const InsightsUnavailableText = "Unable to fetch market insights at the moment."

// Quote is a simulated market price in rupees per Unit.
type Quote struct {
	CropID    string
	Price     int
	ChangePct float64
	Unit      string
	UpdatedAt time.Time
}

// Rising reports whether the price moved up or stayed flat.
func (q Quote) Rising() bool { return q.ChangePct >= 0 }

// Yesterday is the previous day's price.
func (q Quote) Yesterday() int { return q.Price - 5 }

// WeekHigh is the highest price of the week.
func (q Quote) WeekHigh() int { return q.Price + 3 }

// WeekLow is the lowest price of the week.
func (q Quote) WeekLow() int { return q.Price - 8 }

// ChangeText formats the change with an explicit sign and one decimal.
func (q Quote) ChangeText() string {
	return fmt.Sprintf("%+.1f%%", q.ChangePct)
}

// Crops returns the crops offered on the market screen.
func Crops() []crops.Crop {
	return crops.Catalog()[:Tracked]
}

// Source generates quotes.
type Source struct {
	// Rand draws the random numbers. Defaults to the global math/rand/v2 source.
	Rand *rand.Rand
	// Now stamps quotes. Defaults to time.Now.
	Now func() time.Time
}

// NewSource returns a source backed by the global generator.
func NewSource() *Source {
	return &Source{Now: time.Now}
}

// Quote returns a simulated quote: a price of 20 to 69 rupees per kg and a
// change of up to 10 percent either way.
func (s *Source) Quote(cropID string) Quote {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Quote{
		CropID:    cropID,
		Price:     20 + s.intN(50),
		ChangePct: (s.float64() - 0.5) * 20,
		Unit:      "kg",
		UpdatedAt: now(),
	}
}

func (s *Source) intN(n int) int {
	if s.Rand != nil {
		return s.Rand.IntN(n)
	}
	return rand.IntN(n)
}

func (s *Source) float64() float64 {
	if s.Rand != nil {
		return s.Rand.Float64()
	}
	return rand.Float64()
}

// InsightPrompt is the question sent to the assistant for cropID.
func InsightPrompt(cropID string) string {
	return fmt.Sprintf("Provide market analysis and selling recommendations for %s with current price trends.", cropID)
}
