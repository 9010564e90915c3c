package assistant

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"
)

// Topic is the category the keyword stub assigns to a prompt.
type Topic int

const (
	TopicGeneral Topic = iota
	TopicDisease
	TopicMarket
	TopicSchemes
	TopicCalendar
)

// String returns the topic name.
func (t Topic) String() string {
	switch t {
	case TopicDisease:
		return "disease"
	case TopicMarket:
		return "market"
	case TopicSchemes:
		return "schemes"
	case TopicCalendar:
		return "calendar"
	default:
		return "general"
	}
}

// Diagnoses are the answers to disease questions and image analyses.
var Diagnoses = []string{
	"Septoria Leaf Spot detected. Apply Neem Oil spray every 7 days. Remove affected leaves and ensure proper drainage.",
	"Early Blight identified. Use Copper-based fungicide. Improve air circulation and avoid overhead watering.",
	"Powdery Mildew found. Apply Baking Soda solution (1 tsp per liter). Increase sunlight exposure.",
	"Bacterial Leaf Spot detected. Remove infected parts immediately. Apply Copper Hydroxide spray.",
	"Healthy plant detected! Continue current care routine. Monitor for any changes.",
}

// Canned answers for the remaining topics.
const (
	MarketAnswer   = "Current market analysis: Tomato prices are ₹45/kg (+7% from yesterday). Recommendation: Sell 45% today at ₹23-25/kg, 30% tomorrow at ₹22-25/kg. Store unripe ones due to predicted hailstorm. Need storage advice? Just ask!"
	SchemesAnswer  = "Based on your profile, you're eligible for PM-KISAN (₹6000/year), Crop Insurance, and Seed Subsidy. For PM-KISAN: Visit nearest CSC with Aadhaar, bank details, and land documents. Application deadline: March 31st."
	CalendarAnswer = "For your location, optimal sowing window for Wheat: Nov 15-30, Harvest: April. Rice: Sow Jun 1-15, Harvest: October. Brinjal: Sow year-round, best in Feb-Mar and Jun-Jul. Consider soil temperature and moisture levels."
	GeneralAnswer  = "I'm here to help with your farming needs! You can ask me about crop diseases, market prices, government schemes, sowing schedules, or any other agricultural questions. How can I assist you today?"
)

// Keyword stub delays.
const (
	DefaultKeywordDelay  = 1500 * time.Millisecond
	DefaultKeywordJitter = time.Second
)

// Rules are checked in order; the first match wins.
var topicKeywords = []struct {
	topic    Topic
	keywords []string
}{
	{TopicDisease, []string{"disease", "leaf", "plant"}},
	{TopicMarket, []string{"price", "market", "sell"}},
	{TopicSchemes, []string{"scheme", "subsidy", "government"}},
	{TopicCalendar, []string{"sow", "plant", "harvest", "when"}},
}

// Classify decides the topic of a prompt. Any image makes it a disease
// question.
func Classify(prompt string, hasImage bool) Topic {
	if hasImage {
		return TopicDisease
	}
	lower := strings.ToLower(prompt)
	for _, rule := range topicKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.topic
			}
		}
	}
	return TopicGeneral
}

// Keyword is the offline assistant. It never fails except on cancellation.
type Keyword struct {
	// Delay is the minimum wait before answering.
	Delay time.Duration
	// Jitter is the upper bound of the random extra wait.
	Jitter time.Duration
	// Intn picks a random index in [0, n). Defaults to math/rand/v2.
	Intn func(n int) int
}

// NewKeyword returns a stub with the default delays.
func NewKeyword() *Keyword {
	return &Keyword{
		Delay:  DefaultKeywordDelay,
		Jitter: DefaultKeywordJitter,
	}
}

// Ask waits, then answers from the canned table.
func (k *Keyword) Ask(ctx context.Context, prompt string, image []byte) (string, error) {
	wait := k.Delay
	if k.Jitter > 0 {
		wait += time.Duration(rand.Int64N(int64(k.Jitter)))
	}

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}

	return k.Answer(prompt, len(image) > 0), nil
}

// Answer returns the canned answer without waiting.
func (k *Keyword) Answer(prompt string, hasImage bool) string {
	switch Classify(prompt, hasImage) {
	case TopicDisease:
		return Diagnoses[k.intn(len(Diagnoses))]
	case TopicMarket:
		return MarketAnswer
	case TopicSchemes:
		return SchemesAnswer
	case TopicCalendar:
		return CalendarAnswer
	default:
		return GeneralAnswer
	}
}

func (k *Keyword) intn(n int) int {
	if k.Intn != nil {
		return k.Intn(n)
	}
	return rand.IntN(n)
}
