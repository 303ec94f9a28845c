package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Rorical/PocketDoc/internal/llm"
)

const (
	configFileName = "config.json"
	envPrefix      = "POCKETDOC"
	homeEnv        = "POCKETDOC_HOME"
	defaultProfile = "default"
)

type Profile struct {
	APIKey    string `json:"api_key" mapstructure:"api_key"`
	BaseURL   string `json:"base_url,omitempty" mapstructure:"base_url"`
	Model     string `json:"model" mapstructure:"model"`
	MaxTokens int    `json:"max_tokens,omitempty" mapstructure:"max_tokens"`
}

// LocalModel points at the OpenAI-compatible server hosting the on-device model.
type LocalModel struct {
	BaseURL   string `json:"base_url" mapstructure:"base_url"`
	Model     string `json:"model" mapstructure:"model"`
	MaxTokens int    `json:"max_tokens" mapstructure:"max_tokens"`
}

type Stream struct {
	CharDelayMS int `json:"char_delay_ms" mapstructure:"char_delay_ms"`
}

type Device struct {
	Fixture     string `json:"fixture,omitempty" mapstructure:"fixture"`
	StoragePath string `json:"storage_path" mapstructure:"storage_path"`
}

type Logging struct {
	Level string `json:"level" mapstructure:"level"`
	File  string `json:"file,omitempty" mapstructure:"file"`
}

type Config struct {
	Profiles      map[string]Profile `json:"profiles" mapstructure:"profiles"`
	ActiveProfile string             `json:"active_profile" mapstructure:"active_profile"`
	Local         LocalModel         `json:"local" mapstructure:"local"`
	Stream        Stream             `json:"stream" mapstructure:"stream"`
	Device        Device             `json:"device" mapstructure:"device"`
	Logging       Logging            `json:"logging" mapstructure:"logging"`

	home           string
	currentProfile *Profile
}

// Default returns the configuration written on first start.
func Default(home string) *Config {
	return &Config{
		Profiles: map[string]Profile{
			defaultProfile: {
				BaseURL:   llm.DefaultRemoteBaseURL,
				Model:     llm.DefaultRemoteModel,
				MaxTokens: llm.DefaultRemoteMaxTokens,
			},
		},
		ActiveProfile: defaultProfile,
		Local: LocalModel{
			BaseURL:   llm.DefaultLocalBaseURL,
			Model:     llm.DefaultLocalModel,
			MaxTokens: llm.DefaultLocalMaxTokens,
		},
		Stream:  Stream{CharDelayMS: 30},
		Device:  Device{StoragePath: "/"},
		Logging: Logging{Level: "info"},
		home:    home,
	}
}

// DefaultHome is $POCKETDOC_HOME, or ~/.pocketdoc.
func DefaultHome() (string, error) {
	if home := os.Getenv(homeEnv); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userHome, ".pocketdoc"), nil
}

// Load reads <home>/config.json, creating it with defaults when missing.
// POCKETDOC_* environment variables override file values, e.g.
// POCKETDOC_LOCAL_MODEL or POCKETDOC_STREAM_CHAR_DELAY_MS.
func Load(home string) (*Config, error) {
	if home == "" {
		var err error
		if home, err = DefaultHome(); err != nil {
			return nil, fmt.Errorf("failed to get config home: %w", err)
		}
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(home, configFileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := Default(home).Save(); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default(home))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := &Config{home: home}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	profiles, err := readProfiles(path)
	if err != nil {
		return nil, err
	}
	cfg.Profiles = profiles
	cfg.setCurrentProfile()

	return cfg, nil
}

// readProfiles decodes the profiles table with encoding/json. Viper folds map
// keys to lower case, which would break lookups by active_profile.
func readProfiles(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var file struct {
		Profiles map[string]Profile `json:"profiles"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	if file.Profiles == nil {
		file.Profiles = make(map[string]Profile)
	}
	return file.Profiles, nil
}

// setDefaults registers every scalar key so environment overrides apply
// even when the file omits the key.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("active_profile", d.ActiveProfile)
	v.SetDefault("local.base_url", d.Local.BaseURL)
	v.SetDefault("local.model", d.Local.Model)
	v.SetDefault("local.max_tokens", d.Local.MaxTokens)
	v.SetDefault("stream.char_delay_ms", d.Stream.CharDelayMS)
	v.SetDefault("device.fixture", d.Device.Fixture)
	v.SetDefault("device.storage_path", d.Device.StoragePath)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

func (c *Config) Save() error {
	if err := os.MkdirAll(c.home, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.Path(), data, 0600)
}

// setCurrentProfile falls back to the first profile by name when the active
// one is missing. Having no profiles at all is allowed; only online mode
// needs one.
func (c *Config) setCurrentProfile() {
	c.currentProfile = nil
	if profile, ok := c.Profiles[c.ActiveProfile]; ok {
		c.currentProfile = &profile
		return
	}

	names := c.ProfileNames()
	if len(names) == 0 {
		return
	}
	c.ActiveProfile = names[0]
	profile := c.Profiles[names[0]]
	c.currentProfile = &profile
}

// Use makes name the active profile.
func (c *Config) Use(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	c.ActiveProfile = name
	c.setCurrentProfile()
	return nil
}

// ProfileNames returns the profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsValid reports whether the active profile can reach the remote endpoint.
func (c *Config) IsValid() bool {
	return c.currentProfile != nil && c.currentProfile.APIKey != ""
}

func (c *Config) GetAPIKey() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.APIKey
}

func (c *Config) GetModel() string {
	if c.currentProfile == nil || c.currentProfile.Model == "" {
		return llm.DefaultRemoteModel
	}
	return c.currentProfile.Model
}

func (c *Config) GetBaseURL() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.BaseURL
}

func (c *Config) GetMaxTokens() int {
	if c.currentProfile == nil {
		return 0
	}
	return c.currentProfile.MaxTokens
}

func (c *Config) CharDelay() time.Duration {
	if c.Stream.CharDelayMS < 0 {
		return 0
	}
	return time.Duration(c.Stream.CharDelayMS) * time.Millisecond
}

func (c *Config) Home() string {
	return c.home
}

func (c *Config) Path() string {
	return filepath.Join(c.home, configFileName)
}

// LogFile is logging.file, or <home>/logs/pocketdoc.log.
func (c *Config) LogFile() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(c.home, "logs", "pocketdoc.log")
}
