// Package chat holds the assistant conversation transcript.
//
// A transcript is append-only, except that the typing placeholder added while
// a reply is pending is later replaced in place by the final answer or an
// error message. Message ids are monotonic ULIDs, so sorting by id gives the
// conversation order.
package chat

import (
	"crypto/rand"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrUnknownMessage is returned when replacing a placeholder that does not exist.
var ErrUnknownMessage = errors.New("no pending message with that id")

// Message is one transcript entry.
type Message struct {
	ID        string
	Role      Role
	Text      string
	Timestamp time.Time
	IsTyping  bool
	IsError   bool
}

// QuickQuestions are the canned prompts offered under the input.
var QuickQuestions = []string{
	"What diseases affect tomato plants?",
	"Current market price of wheat",
	"Government schemes for farmers",
	"Best time to sow rice",
}

// WelcomeText opens every conversation.
const WelcomeText = "Hello! I'm your farming assistant. Ask me anything about crops, diseases, market prices, or government schemes."

// ErrorText replaces a placeholder when the assistant fails.
const ErrorText = "Sorry, I encountered an error. Please try again."

// Transcript is safe for concurrent use.
type Transcript struct {
	mu       sync.Mutex
	messages []Message
	entropy  io.Reader
	now      func() time.Time
}

// Option configures a Transcript.
type Option func(*Transcript)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(t *Transcript) { t.now = now }
}

// NewTranscript returns a transcript opened with the assistant's welcome
// message.
func NewTranscript(opts ...Option) *Transcript {
	t := &Transcript{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.append(Message{Role: RoleAssistant, Text: WelcomeText})
	return t
}

// AddUser appends a message typed (or spoken) by the user.
func (t *Transcript) AddUser(text string) Message {
	return t.append(Message{Role: RoleUser, Text: text})
}

// BeginReply appends a typing placeholder and returns its id.
func (t *Transcript) BeginReply() string {
	return t.append(Message{Role: RoleAssistant, IsTyping: true}).ID
}

// Resolve replaces the placeholder id with the assistant's answer.
func (t *Transcript) Resolve(id, text string) error {
	return t.replace(id, text, false)
}

// Fail replaces the placeholder id with the standard error message.
func (t *Transcript) Fail(id string) error {
	return t.replace(id, ErrorText, true)
}

// Pending reports whether a reply is still being waited for.
func (t *Transcript) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.messages {
		if m.IsTyping {
			return true
		}
	}
	return false
}

// Messages returns a copy of the transcript in order.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

func (t *Transcript) append(m Message) Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	m.ID = ulid.MustNew(ulid.Timestamp(now), t.entropy).String()
	m.Timestamp = now
	t.messages = append(t.messages, m)
	return m
}

func (t *Transcript) replace(id, text string, isError bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.messages {
		if t.messages[i].ID != id || !t.messages[i].IsTyping {
			continue
		}
		t.messages[i].Text = text
		t.messages[i].IsTyping = false
		t.messages[i].IsError = isError
		t.messages[i].Timestamp = t.now()
		return nil
	}
	return ErrUnknownMessage
}
