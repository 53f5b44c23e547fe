package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds configurable parameters.
type Config struct {
	Engine         string  `json:"ENGINE" yaml:"ENGINE" validate:"oneof=http openai"`
	APIEndpoint    string  `json:"API_ENDPOINT" yaml:"API_ENDPOINT"`
	OpenAIBaseURL  string  `json:"OPENAI_BASE_URL" yaml:"OPENAI_BASE_URL"`
	Token          string  `json:"TOKEN" yaml:"TOKEN"`
	Model          string  `json:"MODEL" yaml:"MODEL"`
	Language       string  `json:"LANGUAGE" yaml:"LANGUAGE"`
	Prompt         string  `json:"PROMPT" yaml:"PROMPT"`
	TEXTPath       string  `json:"TEXT_PATH" yaml:"TEXT_PATH"`
	SegmentsPath   string  `json:"SEGMENTS_PATH" yaml:"SEGMENTS_PATH"`
	ExtraConfig    string  `json:"ExtraConfig" yaml:"ExtraConfig"`
	RequestTimeout int     `json:"REQUEST_TIMEOUT" yaml:"REQUEST_TIMEOUT" validate:"gte=1"`
	MaxRetry       int     `json:"MAX_RETRY" yaml:"MAX_RETRY" validate:"gte=1"`
	RetryBaseDelay float64 `json:"RETRY_BASE_DELAY" yaml:"RETRY_BASE_DELAY" validate:"gte=0"`
	EnableHTTP2    bool    `json:"ENABLE_HTTP2" yaml:"ENABLE_HTTP2"`
	VerifySSL      bool    `json:"VERIFY_SSL" yaml:"VERIFY_SSL"`

	Channels      int `json:"CHANNELS" yaml:"CHANNELS" validate:"gte=1,lte=8"`
	SAMPLING_RATE int `json:"SAMPLING_RATE" yaml:"SAMPLING_RATE" validate:"gt=0"`
	ChunkFrames   int `json:"CHUNK_FRAMES" yaml:"CHUNK_FRAMES" validate:"gt=0"`
	MinDurationMS int `json:"MIN_DURATION_MS" yaml:"MIN_DURATION_MS" validate:"gte=0"`

	UploadCodec     string `json:"UPLOAD_CODEC" yaml:"UPLOAD_CODEC"`
	UploadContainer string `json:"UPLOAD_CONTAINER" yaml:"UPLOAD_CONTAINER"`
	BIT_RATE        int    `json:"BIT_RATE" yaml:"BIT_RATE" validate:"gt=0"`

	InjectMode    string `json:"INJECT_MODE" yaml:"INJECT_MODE" validate:"oneof=auto post type paste"`
	SettleDelayMS int    `json:"SETTLE_DELAY_MS" yaml:"SETTLE_DELAY_MS" validate:"gte=0"`
	HotKeyHook    bool   `json:"HOTKEY_HOOK" yaml:"HOTKEY_HOOK"`
	ReplayKey     string `json:"REPLAY_KEY" yaml:"REPLAY_KEY" validate:"required"`

	ControlAddr  string `json:"CONTROL_ADDR" yaml:"CONTROL_ADDR"`
	Tray         bool   `json:"TRAY" yaml:"TRAY"`
	Notification bool   `json:"NOTIFICATION" yaml:"NOTIFICATION"`
	Cues         bool   `json:"CUES" yaml:"CUES"`

	CacheDir     string `json:"CACHE_DIR" yaml:"CACHE_DIR"`
	SettingsPath string `json:"SETTINGS_PATH" yaml:"SETTINGS_PATH"`
	HistoryPath  string `json:"HISTORY_PATH" yaml:"HISTORY_PATH"`
	HistoryLimit int    `json:"HISTORY_LIMIT" yaml:"HISTORY_LIMIT" validate:"gte=1"`

	LogLevel      string `json:"LOG_LEVEL" yaml:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat     string `json:"LOG_FORMAT" yaml:"LOG_FORMAT" validate:"oneof=console json"`
	LogFile       string `json:"LOG_FILE" yaml:"LOG_FILE"`
	LogMaxSizeMB  int    `json:"LOG_MAX_SIZE_MB" yaml:"LOG_MAX_SIZE_MB" validate:"gte=1"`
	LogMaxBackups int    `json:"LOG_MAX_BACKUPS" yaml:"LOG_MAX_BACKUPS" validate:"gte=0"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Engine:         "http",
		APIEndpoint:    "http://127.0.0.1:8080/inference",
		OpenAIBaseURL:  "",
		Token:          "",
		Model:          "",
		Language:       "",
		Prompt:         "",
		TEXTPath:       "text",
		SegmentsPath:   "segments[*].text",
		ExtraConfig:    "",
		RequestTimeout: 60,
		MaxRetry:       3,
		RetryBaseDelay: 0.5,
		EnableHTTP2:    true,
		VerifySSL:      true,

		Channels:      1,
		SAMPLING_RATE: 16000,
		ChunkFrames:   1024,
		MinDurationMS: 1000,

		UploadCodec:     "",
		UploadContainer: "ogg",
		BIT_RATE:        128,

		InjectMode:    "auto",
		SettleDelayMS: 100,
		HotKeyHook:    true,
		ReplayKey:     "ctrl+alt+v",

		ControlAddr:  "127.0.0.1:5000",
		Tray:         true,
		Notification: false,
		Cues:         true,

		CacheDir:     "",
		SettingsPath: "",
		HistoryPath:  "",
		HistoryLimit: 1000,

		LogLevel:      "info",
		LogFormat:     "console",
		LogFile:       "",
		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
	}
}

// Load loads config from a JSON or YAML file if provided. ${VAR} references
// are expanded from the environment before decoding.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	expanded := os.ExpandEnv(string(data))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal([]byte(expanded), &cfg); err != nil {
			return cfg, fmt.Errorf("parse json config: %w", err)
		}
	}
	return cfg, nil
}

// SaveDefault writes a default config to the provided path, as YAML when
// the extension asks for it and JSON otherwise.
func SaveDefault(path string) error {
	cfg := DefaultConfig()
	var (
		b   []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err = yaml.Marshal(cfg)
	default:
		b, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

var validate = validator.New()

// Validate verifies config fields and returns an error if any value is invalid.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Engine == "http" && cfg.APIEndpoint == "" {
		return fmt.Errorf("invalid API_ENDPOINT: required for ENGINE=http")
	}
	if cfg.Engine == "openai" && cfg.Token == "" {
		return fmt.Errorf("invalid TOKEN: required for ENGINE=openai")
	}
	if cfg.ChunkFrames*cfg.Channels*2 > 1<<20 {
		return fmt.Errorf("invalid CHUNK_FRAMES: %d (chunk exceeds 1 MiB)", cfg.ChunkFrames)
	}
	if cfg.UploadCodec != "" && ContainerExt(cfg.UploadContainer) == "" {
		return fmt.Errorf("invalid UPLOAD_CONTAINER: %q", cfg.UploadContainer)
	}
	return nil
}

// InitCacheDir validates/creates the configured cache directory.
// It mutates cfg.CacheDir to an absolute path, or clears it on failure so
// the OS temp directory is used instead.
func InitCacheDir(cfg *Config) error {
	if cfg.CacheDir == "" {
		return nil
	}
	abs, err := filepath.Abs(cfg.CacheDir)
	if err != nil {
		cfg.CacheDir = ""
		return fmt.Errorf("cache dir path invalid %q: %w", cfg.CacheDir, err)
	}
	info, err := os.Stat(abs)
	if err == nil {
		if !info.IsDir() {
			cfg.CacheDir = ""
			return fmt.Errorf("cache dir %q exists but is not a directory", abs)
		}
		cfg.CacheDir = abs
		return nil
	}
	if !os.IsNotExist(err) {
		cfg.CacheDir = ""
		return fmt.Errorf("cannot access cache dir %q: %w", abs, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		cfg.CacheDir = ""
		return fmt.Errorf("cannot create cache dir %q: %w", abs, err)
	}
	cfg.CacheDir = abs
	return nil
}

// TempDir returns the directory to use for scratch files.
func TempDir(cfg *Config) string {
	if cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	return os.TempDir()
}

// DataDir is the per-user directory holding settings and history.
func DataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "openwhisper")
	}
	return "."
}

// ResolveSettingsPath returns SETTINGS_PATH or the per-user default.
func ResolveSettingsPath(cfg *Config) string {
	if cfg.SettingsPath != "" {
		return cfg.SettingsPath
	}
	return filepath.Join(DataDir(), "settings.json")
}

// ResolveHistoryPath returns HISTORY_PATH or the per-user default.
func ResolveHistoryPath(cfg *Config) string {
	if cfg.HistoryPath != "" {
		return cfg.HistoryPath
	}
	return filepath.Join(DataDir(), "transcription_history.json")
}

// ContainerExt maps container names to file extensions (lowercase).
// Unknown containers map to "".
func ContainerExt(container string) string {
	c := strings.ToLower(container)
	switch c {
	case "wav", "ac3", "ogg", "oga", "mp3", "flac", "aac", "m4a", "mp4", "opus", "webm":
		return c
	case "":
		return "ogg"
	default:
		return ""
	}
}
