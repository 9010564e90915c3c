// Package diagnosis prepares crop photos and prompts for disease analysis.
package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/muurk/kisan/internal/assistant"
)

// MaxImageBytes caps the size of a photo sent for analysis.
const MaxImageBytes = 10 << 20

// Texts shown on the crop health screen.
const (
	FailureText = "Failed to analyze the image. Please try again."
	NoImageText = "No image selected for analysis."
)

const basePrompt = "Analyze this crop image for diseases and health issues."

var (
	ErrNotImage = errors.New("file is not an image")
	ErrTooLarge = errors.New("image is too large")
	ErrNoImage  = errors.New("no image selected")
)

// Image is a photo loaded for analysis.
type Image struct {
	Path string
	Data []byte
	MIME string
}

// Name is the base name of the file.
func (i *Image) Name() string {
	return filepath.Base(i.Path)
}

// LoadImage reads the file at path and checks that its content is an image.
// A leading "~/" is expanded to the home directory.
func LoadImage(path string) (*Image, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrNoImage
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%w: limit is %d MB", ErrTooLarge, MaxImageBytes>>20)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%w: %s looks like %s", ErrNotImage, filepath.Base(path), mime)
	}

	return &Image{Path: path, Data: data, MIME: mime}, nil
}

// Prompt builds the analysis prompt, including the farmer's question when
// one was given.
func Prompt(question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return basePrompt + " Provide diagnosis and treatment recommendations."
	}
	return fmt.Sprintf("%s User's specific question: \"%s\"", basePrompt, question)
}

// Analyze asks a for a diagnosis of img. On failure the returned text is
// FailureText and the error carries the cause.
func Analyze(ctx context.Context, a assistant.Assistant, img *Image, question string) (string, error) {
	if img == nil || len(img.Data) == 0 {
		return NoImageText, ErrNoImage
	}

	reply, err := a.Ask(ctx, Prompt(question), img.Data)
	if err != nil {
		return FailureText, fmt.Errorf("crop analysis failed: %w", err)
	}
	return reply, nil
}
