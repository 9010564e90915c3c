package config

import (
	"os"
	"time"

	"github.com/muurk/kisan/internal/assistant"
)

// CurrentVersion is the only config file version this build understands.
const CurrentVersion = 1

// DefaultStartupDelay is how long the splash screen shows.
const DefaultStartupDelay = 2 * time.Second

// Config represents the entire user configuration file.
type Config struct {
	Version      int             `yaml:"version"`
	Assistant    *AssistantPrefs `yaml:"assistant,omitempty"`
	Speech       *SpeechPrefs    `yaml:"speech,omitempty"`
	Location     *LocationPrefs  `yaml:"location,omitempty"`
	StartupDelay time.Duration   `yaml:"startup_delay,omitempty"`
}

// AssistantPrefs selects the assistant backend.
type AssistantPrefs struct {
	Provider  string        `yaml:"provider"`              // stub, http, ws or gemini
	URL       string        `yaml:"url,omitempty"`         // kisan-server base URL (http, ws)
	Model     string        `yaml:"model,omitempty"`       // Gemini model name
	Timeout   time.Duration `yaml:"timeout,omitempty"`     // Per-call timeout
	APIKeyEnv string        `yaml:"api_key_env,omitempty"` // Environment variable holding the API key
}

// SpeechPrefs configures the speech commands.
type SpeechPrefs struct {
	STTCommand string `yaml:"stt_command,omitempty"` // Prints one transcript line to stdout
	TTSCommand string `yaml:"tts_command,omitempty"` // Reads the text on stdin
	Rate       int    `yaml:"rate,omitempty"`        // Words per minute for the built-in engines
}

// LocationPrefs is the coarse location reported when the farmer allows
// location access. There is no GPS lookup.
type LocationPrefs struct {
	District  string  `yaml:"district,omitempty"`
	State     string  `yaml:"state,omitempty"`
	Latitude  float64 `yaml:"lat,omitempty"`
	Longitude float64 `yaml:"lon,omitempty"`
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Assistant: &AssistantPrefs{
			Provider:  assistant.ProviderStub,
			Timeout:   assistant.DefaultTimeout,
			APIKeyEnv: assistant.APIKeyEnvVar,
		},
		Speech:       &SpeechPrefs{Rate: 150},
		Location:     &LocationPrefs{},
		StartupDelay: DefaultStartupDelay,
	}
}

// applyDefaults fills sections and values missing from a loaded file.
func (c *Config) applyDefaults() {
	def := NewConfig()
	if c.Assistant == nil {
		c.Assistant = def.Assistant
	}
	if c.Assistant.Provider == "" {
		c.Assistant.Provider = def.Assistant.Provider
	}
	if c.Assistant.Timeout <= 0 {
		c.Assistant.Timeout = def.Assistant.Timeout
	}
	if c.Assistant.APIKeyEnv == "" {
		c.Assistant.APIKeyEnv = def.Assistant.APIKeyEnv
	}
	if c.Speech == nil {
		c.Speech = def.Speech
	}
	if c.Speech.Rate <= 0 {
		c.Speech.Rate = def.Speech.Rate
	}
	if c.Location == nil {
		c.Location = def.Location
	}
	if c.StartupDelay <= 0 {
		c.StartupDelay = def.StartupDelay
	}
}

// AssistantConfig converts the assistant section for assistant.New. The API
// key is read from the configured environment variable.
func (c *Config) AssistantConfig() assistant.Config {
	prefs := c.Assistant
	if prefs == nil {
		prefs = NewConfig().Assistant
	}
	return assistant.Config{
		Provider: prefs.Provider,
		URL:      prefs.URL,
		Model:    prefs.Model,
		APIKey:   os.Getenv(prefs.APIKeyEnv),
		Timeout:  prefs.Timeout,
	}
}

// HasLocation reports whether a location was configured.
func (c *Config) HasLocation() bool {
	l := c.Location
	return l != nil && (l.District != "" || l.State != "" || l.Latitude != 0 || l.Longitude != 0)
}
