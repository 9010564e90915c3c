package chat

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTranscriptStartsWithWelcome(t *testing.T) {
	tr := NewTranscript()

	msgs := tr.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, WelcomeText, msgs[0].Text)
	assert.False(t, tr.Pending())
}

func TestReplyLifecycle(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tr := NewTranscript(WithClock(func() time.Time { return fixed }))

	tr.AddUser("Best time to sow rice")
	id := tr.BeginReply()
	assert.True(t, tr.Pending())
	assert.Equal(t, 3, tr.Len())

	require.NoError(t, tr.Resolve(id, "June"))
	assert.False(t, tr.Pending())

	last := tr.Messages()[2]
	assert.Equal(t, "June", last.Text)
	assert.False(t, last.IsError)
	assert.Equal(t, fixed, last.Timestamp)

	// A resolved placeholder cannot be replaced again.
	assert.ErrorIs(t, tr.Resolve(id, "again"), ErrUnknownMessage)
	assert.ErrorIs(t, tr.Fail("missing"), ErrUnknownMessage)
}

func TestFail(t *testing.T) {
	tr := NewTranscript()
	tr.AddUser("hello")
	id := tr.BeginReply()

	require.NoError(t, tr.Fail(id))

	last := tr.Messages()[tr.Len()-1]
	assert.True(t, last.IsError)
	assert.Equal(t, ErrorText, last.Text)
}

func TestIDsAreOrdered(t *testing.T) {
	// Same timestamp for every message: the monotonic entropy keeps ids sorted.
	fixed := time.Now()
	tr := NewTranscript(WithClock(func() time.Time { return fixed }))
	for i := 0; i < 20; i++ {
		tr.AddUser("q")
	}

	msgs := tr.Messages()
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestConcurrentAppend(t *testing.T) {
	tr := NewTranscript()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.AddUser("q")
		}()
	}
	wg.Wait()

	assert.Equal(t, 17, tr.Len())
}
