package diagnosis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/kisan/internal/assistant"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadImage(t *testing.T) {
	path := writeFile(t, "leaf.png", pngHeader)

	img, err := LoadImage("  " + path + "  ")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIME)
	assert.Equal(t, "leaf.png", img.Name())
	assert.Equal(t, pngHeader, img.Data)
}

func TestLoadImageRejects(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := LoadImage(" ")
		assert.ErrorIs(t, err, ErrNoImage)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadImage(filepath.Join(t.TempDir(), "nope.jpg"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("text file", func(t *testing.T) {
		_, err := LoadImage(writeFile(t, "notes.jpg", []byte("just some notes")))
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("too large", func(t *testing.T) {
		data := make([]byte, MaxImageBytes+1)
		copy(data, pngHeader)
		_, err := LoadImage(writeFile(t, "huge.png", data))
		assert.ErrorIs(t, err, ErrTooLarge)
	})
}

func TestPrompt(t *testing.T) {
	assert.Equal(t,
		"Analyze this crop image for diseases and health issues. Provide diagnosis and treatment recommendations.",
		Prompt("   "))
	assert.Equal(t,
		`Analyze this crop image for diseases and health issues. User's specific question: "why are the leaves yellow?"`,
		Prompt("why are the leaves yellow?"))
}

func TestAnalyze(t *testing.T) {
	img := &Image{Path: "leaf.png", Data: pngHeader, MIME: "image/png"}

	var gotPrompt string
	var gotImage []byte
	a := assistant.Func(func(ctx context.Context, prompt string, image []byte) (string, error) {
		gotPrompt, gotImage = prompt, image
		return "Leaf blight", nil
	})

	text, err := Analyze(context.Background(), a, img, "spots?")
	require.NoError(t, err)
	assert.Equal(t, "Leaf blight", text)
	assert.Equal(t, Prompt("spots?"), gotPrompt)
	assert.Equal(t, pngHeader, gotImage)
}

func TestAnalyzeFailure(t *testing.T) {
	boom := errors.New("boom")
	a := assistant.Func(func(context.Context, string, []byte) (string, error) {
		return "", boom
	})

	text, err := Analyze(context.Background(), a, &Image{Data: pngHeader}, "")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, FailureText, text)

	text, err = Analyze(context.Background(), a, nil, "")
	assert.ErrorIs(t, err, ErrNoImage)
	assert.Equal(t, NoImageText, text)
}
