// Package platform gives access to the host capabilities the app can use:
// desktop notifications, a configured location, speech-to-text and
// text-to-speech. Each capability is backed by an external command; when the
// command is missing the call returns ErrUnsupported and nothing else happens.
package platform

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/kisan/internal/i18n"
	"github.com/muurk/kisan/internal/logging"
)

// ErrUnsupported is returned when a capability is not available.
var ErrUnsupported = errors.New("capability not supported on this system")

// Capability names a host feature.
type Capability string

const (
	Notifications Capability = "notifications"
	Location      Capability = "location"
	SpeechToText  Capability = "speech-to-text"
	TextToSpeech  Capability = "text-to-speech"
)

// Place is a coarse location.
type Place struct {
	District  string
	State     string
	Latitude  float64
	Longitude float64
}

// String formats the place for display.
func (p Place) String() string {
	parts := make([]string, 0, 2)
	for _, s := range []string{p.District, p.State} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%.4f, %.4f", p.Latitude, p.Longitude)
	}
	return strings.Join(parts, ", ")
}

// Config selects the commands behind each capability.
type Config struct {
	// STTCommand prints one transcript line on stdout. The selected
	// language code is passed in KISAN_LANG.
	STTCommand string
	// TTSCommand reads the text on stdin. Empty selects espeak-ng,
	// espeak or say, whichever is installed.
	TTSCommand string
	// Rate is the speaking rate in words per minute.
	Rate int
	// Place is reported by RequestLocation. nil means no location.
	Place *Place
}

// System implements the capabilities with host commands.
type System struct {
	cfg Config

	// LookPath resolves command names. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)
	// GOOS selects the notification command. Defaults to runtime.GOOS.
	GOOS string
}

// New creates a System.
func New(cfg Config) *System {
	if cfg.Rate <= 0 {
		cfg.Rate = 150
	}
	return &System{cfg: cfg, LookPath: exec.LookPath, GOOS: runtime.GOOS}
}

// Available reports whether a capability can be used.
func (s *System) Available(c Capability) bool {
	switch c {
	case Notifications:
		_, _, err := s.notifyCommand("", "")
		return err == nil
	case Location:
		return s.cfg.Place != nil
	case SpeechToText:
		_, err := s.sttCommand()
		return err == nil
	case TextToSpeech:
		_, err := s.ttsCommand("")
		return err == nil
	}
	return false
}

// RequestNotifications checks that notifications work by sending one.
func (s *System) RequestNotifications(ctx context.Context) error {
	return s.Notify(ctx, "Kisan", "Notifications enabled")
}

// Notify shows a desktop notification.
func (s *System) Notify(ctx context.Context, title, body string) error {
	name, args, err := s.notifyCommand(title, body)
	if err != nil {
		return err
	}
	if out, err := exec.CommandContext(ctx, name, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("notification failed: %w: %s", err, bytes.TrimSpace(out))
	}
	return nil
}

func (s *System) notifyCommand(title, body string) (string, []string, error) {
	switch s.GOOS {
	case "darwin":
		path, err := s.LookPath("osascript")
		if err != nil {
			return "", nil, fmt.Errorf("%w: osascript not found", ErrUnsupported)
		}
		script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(body), strconv.Quote(title))
		return path, []string{"-e", script}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		path, err := s.LookPath("notify-send")
		if err != nil {
			return "", nil, fmt.Errorf("%w: notify-send not found", ErrUnsupported)
		}
		return path, []string{"--app-name=kisan", title, body}, nil
	}
	return "", nil, fmt.Errorf("%w: notifications on %s", ErrUnsupported, s.GOOS)
}

// RequestLocation returns the configured place.
func (s *System) RequestLocation(ctx context.Context) (Place, error) {
	if err := ctx.Err(); err != nil {
		return Place{}, err
	}
	if s.cfg.Place == nil {
		return Place{}, fmt.Errorf("%w: no location configured", ErrUnsupported)
	}
	return *s.cfg.Place, nil
}

// Listen runs the speech-to-text command and returns the first non-empty
// line it prints.
func (s *System) Listen(ctx context.Context, language string) (string, error) {
	argv, err := s.sttCommand()
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), "KISAN_LANG="+i18n.Code(language))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("speech recognition failed: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	return "", errors.New("speech recognition returned no transcript")
}

func (s *System) sttCommand() ([]string, error) {
	argv := strings.Fields(s.cfg.STTCommand)
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: no speech-to-text command configured", ErrUnsupported)
	}
	path, err := s.LookPath(argv[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrUnsupported, argv[0])
	}
	argv[0] = path
	return argv, nil
}

// Speak reads text aloud and waits until it is done.
func (s *System) Speak(ctx context.Context, text, language string) error {
	argv, err := s.ttsCommand(language)
	if err != nil {
		return err
	}
	// The text goes on stdin so replies starting with '-' are not flags.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("text-to-speech failed: %w: %s", err, bytes.TrimSpace(out))
	}
	return nil
}

// SpeakAsync reads text aloud in the background. Failures are logged.
func (s *System) SpeakAsync(ctx context.Context, text, language string) {
	go func() {
		if err := s.Speak(ctx, text, language); err != nil && !errors.Is(err, context.Canceled) {
			logging.Debug("Text-to-speech skipped", zap.Error(err))
		}
	}()
}

func (s *System) ttsCommand(language string) ([]string, error) {
	if argv := strings.Fields(s.cfg.TTSCommand); len(argv) > 0 {
		path, err := s.LookPath(argv[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %s not found", ErrUnsupported, argv[0])
		}
		argv[0] = path
		return argv, nil
	}

	rate := strconv.Itoa(s.cfg.Rate)
	for _, engine := range []string{"espeak-ng", "espeak"} {
		if path, err := s.LookPath(engine); err == nil {
			return []string{path, "-s", rate, "-v", i18n.Code(language), "--stdin"}, nil
		}
	}
	if path, err := s.LookPath("say"); err == nil {
		return []string{path, "-r", rate, "-f", "-"}, nil
	}
	return nil, fmt.Errorf("%w: no text-to-speech engine found", ErrUnsupported)
}
