package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// FlagValues holds parsed flags with explicit set tracking.
type FlagValues struct {
	Engine             string
	EngineSet          bool
	APIEndpoint        string
	APIEndpointSet     bool
	OpenAIBaseURL      string
	OpenAIBaseURLSet   bool
	Token              string
	TokenSet           bool
	Model              string
	ModelSet           bool
	Language           string
	LanguageSet        bool
	Prompt             string
	PromptSet          bool
	TEXTPath           string
	TEXTPathSet        bool
	SegmentsPath       string
	SegmentsPathSet    bool
	ExtraConfig        string
	ExtraConfigSet     bool
	RequestTimeout     int
	RequestTimeoutSet  bool
	MaxRetry           int
	MaxRetrySet        bool
	RetryBaseDelay     float64
	RetryBaseDelaySet  bool
	EnableHTTP2        bool
	EnableHTTP2Set     bool
	VerifySSL          bool
	VerifySSLSet       bool
	Channels           int
	ChannelsSet        bool
	SAMPLING_RATE      int
	SAMPLING_RATESet   bool
	ChunkFrames        int
	ChunkFramesSet     bool
	MinDurationMS      int
	MinDurationMSSet   bool
	UploadCodec        string
	UploadCodecSet     bool
	UploadContainer    string
	UploadContainerSet bool
	BIT_RATE           int
	BIT_RATESet        bool
	InjectMode         string
	InjectModeSet      bool
	SettleDelayMS      int
	SettleDelayMSSet   bool
	HotKeyHook         bool
	HotKeyHookSet      bool
	ReplayKey          string
	ReplayKeySet       bool
	ControlAddr        string
	ControlAddrSet     bool
	Tray               bool
	TraySet            bool
	Notification       bool
	NotificationSet    bool
	Cues               bool
	CuesSet            bool
	CacheDir           string
	CacheDirSet        bool
	SettingsPath       string
	SettingsPathSet    bool
	HistoryPath        string
	HistoryPathSet     bool
	HistoryLimit       int
	HistoryLimitSet    bool
	LogLevel           string
	LogLevelSet        bool
	LogFormat          string
	LogFormatSet       bool
	LogFile            string
	LogFileSet         bool

	OutputPath    string
	OutputPathSet bool
}

type stringFlag struct {
	target *string
	set    *bool
}

func (s *stringFlag) String() string {
	if s == nil || s.target == nil {
		return ""
	}
	return *s.target
}

func (s *stringFlag) Set(v string) error {
	if s.target != nil {
		*s.target = v
	}
	if s.set != nil {
		*s.set = true
	}
	return nil
}

type intFlag struct {
	target *int
	set    *bool
}

func (i *intFlag) String() string {
	if i == nil || i.target == nil {
		return ""
	}
	return fmt.Sprintf("%d", *i.target)
}

func (i *intFlag) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	if i.target != nil {
		*i.target = n
	}
	if i.set != nil {
		*i.set = true
	}
	return nil
}

type floatFlag struct {
	target *float64
	set    *bool
}

func (f *floatFlag) String() string {
	if f == nil || f.target == nil {
		return ""
	}
	return fmt.Sprintf("%v", *f.target)
}

func (f *floatFlag) Set(v string) error {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	if f.target != nil {
		*f.target = n
	}
	if f.set != nil {
		*f.set = true
	}
	return nil
}

type boolFlag struct {
	target *bool
	set    *bool
}

func (b *boolFlag) String() string {
	if b == nil || b.target == nil {
		return ""
	}
	return fmt.Sprintf("%v", *b.target)
}

func parseBoolExt(v string) (bool, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean: %s", v)
}

func (b *boolFlag) Set(v string) error {
	n, err := parseBoolExt(v)
	if err != nil {
		return err
	}
	if b.target != nil {
		*b.target = n
	}
	if b.set != nil {
		*b.set = true
	}
	return nil
}

// BindFlags registers all flags and returns the populated FlagValues.
func BindFlags(fs *flag.FlagSet) *FlagValues {
	fv := &FlagValues{}

	fs.Var(&stringFlag{&fv.Engine, &fv.EngineSet}, "engine", "transcription engine (http|openai)")
	fs.Var(&stringFlag{&fv.APIEndpoint, &fv.APIEndpointSet}, "api-endpoint", "API endpoint URL for the http engine")
	fs.Var(&stringFlag{&fv.OpenAIBaseURL, &fv.OpenAIBaseURLSet}, "openai-base-url", "base URL for the openai engine (empty uses the public API)")
	fs.Var(&stringFlag{&fv.Token, &fv.TokenSet}, "token", "Authorization token")
	fs.Var(&stringFlag{&fv.Model, &fv.ModelSet}, "model", "default model when no setting is stored")
	fs.Var(&stringFlag{&fv.Language, &fv.LanguageSet}, "language", "language")
	fs.Var(&stringFlag{&fv.Prompt, &fv.PromptSet}, "prompt", "prompt")
	fs.Var(&stringFlag{&fv.TEXTPath, &fv.TEXTPathSet}, "text-path", "JSON path to extract text")
	fs.Var(&stringFlag{&fv.SegmentsPath, &fv.SegmentsPathSet}, "segments-path", "JSON path to extract ordered segment texts, [*] iterates")
	fs.Var(&stringFlag{&fv.ExtraConfig, &fv.ExtraConfigSet}, "extra-config", "extra JSON config to merge into request payload")
	fs.Var(&intFlag{&fv.RequestTimeout, &fv.RequestTimeoutSet}, "request-timeout", "request timeout seconds")
	fs.Var(&intFlag{&fv.MaxRetry, &fv.MaxRetrySet}, "max-retry", "max retry attempts")
	fs.Var(&floatFlag{&fv.RetryBaseDelay, &fv.RetryBaseDelaySet}, "retry-base-delay", "retry base delay seconds (float)")
	fs.Var(&boolFlag{&fv.EnableHTTP2, &fv.EnableHTTP2Set}, "enable-http2", "enable HTTP/2 (true/false)")
	fs.Var(&boolFlag{&fv.VerifySSL, &fv.VerifySSLSet}, "verify-ssl", "verify TLS certificates (true/false)")
	fs.Var(&intFlag{&fv.Channels, &fv.ChannelsSet}, "channels", "channels (int)")
	fs.Var(&intFlag{&fv.SAMPLING_RATE, &fv.SAMPLING_RATESet}, "sampling-rate", "sampling rate (Hz)")
	// deprecated alias
	fs.Var(&intFlag{&fv.SAMPLING_RATE, &fv.SAMPLING_RATESet}, "rate", "deprecated: rate (Hz), use -sampling-rate")
	fs.Var(&intFlag{&fv.ChunkFrames, &fv.ChunkFramesSet}, "chunk-frames", "frames per capture chunk")
	fs.Var(&intFlag{&fv.MinDurationMS, &fv.MinDurationMSSet}, "min-duration-ms", "utterances shorter than this are padded with silence")
	fs.Var(&stringFlag{&fv.UploadCodec, &fv.UploadCodecSet}, "upload-codec", "transcode before upload with ffmpeg (empty sends WAV)")
	fs.Var(&stringFlag{&fv.UploadContainer, &fv.UploadContainerSet}, "upload-container", "container for -upload-codec (e.g. OGG, MP3, FLAC)")
	fs.Var(&intFlag{&fv.BIT_RATE, &fv.BIT_RATESet}, "bit-rate", "bit rate (kbps) for -upload-codec")
	fs.Var(&stringFlag{&fv.InjectMode, &fv.InjectModeSet}, "inject-mode", "text injection mode (auto|post|type|paste)")
	fs.Var(&intFlag{&fv.SettleDelayMS, &fv.SettleDelayMSSet}, "settle-delay-ms", "delay before injecting text (ms)")
	fs.Var(&boolFlag{&fv.HotKeyHook, &fv.HotKeyHookSet}, "hotkeyhook", "listen for global key events (true/false)")
	fs.Var(&stringFlag{&fv.ReplayKey, &fv.ReplayKeySet}, "replay-key", "replay hotkey")
	fs.Var(&stringFlag{&fv.ControlAddr, &fv.ControlAddrSet}, "control-addr", "HTTP control address (empty disables)")
	fs.Var(&boolFlag{&fv.Tray, &fv.TraySet}, "tray", "show tray icon (true/false)")
	fs.Var(&boolFlag{&fv.Notification, &fv.NotificationSet}, "notification", "enable notifications (true/false)")
	fs.Var(&boolFlag{&fv.Cues, &fv.CuesSet}, "cues", "play start/stop beeps (true/false)")
	fs.Var(&stringFlag{&fv.CacheDir, &fv.CacheDirSet}, "cache-dir", "scratch directory")
	fs.Var(&stringFlag{&fv.SettingsPath, &fv.SettingsPathSet}, "settings", "settings file path")
	fs.Var(&stringFlag{&fv.HistoryPath, &fv.HistoryPathSet}, "history", "history file path")
	fs.Var(&intFlag{&fv.HistoryLimit, &fv.HistoryLimitSet}, "history-limit", "max history entries")
	fs.Var(&stringFlag{&fv.LogLevel, &fv.LogLevelSet}, "log-level", "log level (debug|info|warn|error)")
	fs.Var(&stringFlag{&fv.LogFormat, &fv.LogFormatSet}, "log-format", "log format (console|json)")
	fs.Var(&stringFlag{&fv.LogFile, &fv.LogFileSet}, "log-file", "also write JSON logs to this rotating file")

	fs.Var(&stringFlag{&fv.OutputPath, &fv.OutputPathSet}, "output", "output txt path for -file mode")

	return fv
}

// ApplyFlags applies present flags to the config.
func ApplyFlags(cfg *Config, fv *FlagValues) {
	if fv.EngineSet {
		cfg.Engine = fv.Engine
	}
	if fv.APIEndpointSet {
		cfg.APIEndpoint = fv.APIEndpoint
	}
	if fv.OpenAIBaseURLSet {
		cfg.OpenAIBaseURL = fv.OpenAIBaseURL
	}
	if fv.TokenSet {
		cfg.Token = fv.Token
	}
	if fv.ModelSet {
		cfg.Model = fv.Model
	}
	if fv.LanguageSet {
		cfg.Language = fv.Language
	}
	if fv.PromptSet {
		cfg.Prompt = fv.Prompt
	}
	if fv.TEXTPathSet {
		cfg.TEXTPath = fv.TEXTPath
	}
	if fv.SegmentsPathSet {
		cfg.SegmentsPath = fv.SegmentsPath
	}
	if fv.ExtraConfigSet {
		cfg.ExtraConfig = fv.ExtraConfig
	}
	if fv.RequestTimeoutSet {
		cfg.RequestTimeout = fv.RequestTimeout
	}
	if fv.MaxRetrySet {
		cfg.MaxRetry = fv.MaxRetry
	}
	if fv.RetryBaseDelaySet {
		cfg.RetryBaseDelay = fv.RetryBaseDelay
	}
	if fv.EnableHTTP2Set {
		cfg.EnableHTTP2 = fv.EnableHTTP2
	}
	if fv.VerifySSLSet {
		cfg.VerifySSL = fv.VerifySSL
	}
	if fv.ChannelsSet {
		cfg.Channels = fv.Channels
	}
	if fv.SAMPLING_RATESet {
		cfg.SAMPLING_RATE = fv.SAMPLING_RATE
	}
	if fv.ChunkFramesSet {
		cfg.ChunkFrames = fv.ChunkFrames
	}
	if fv.MinDurationMSSet {
		cfg.MinDurationMS = fv.MinDurationMS
	}
	if fv.UploadCodecSet {
		cfg.UploadCodec = fv.UploadCodec
	}
	if fv.UploadContainerSet {
		cfg.UploadContainer = fv.UploadContainer
	}
	if fv.BIT_RATESet {
		cfg.BIT_RATE = fv.BIT_RATE
	}
	if fv.InjectModeSet {
		cfg.InjectMode = fv.InjectMode
	}
	if fv.SettleDelayMSSet {
		cfg.SettleDelayMS = fv.SettleDelayMS
	}
	if fv.HotKeyHookSet {
		cfg.HotKeyHook = fv.HotKeyHook
	}
	if fv.ReplayKeySet {
		cfg.ReplayKey = fv.ReplayKey
	}
	if fv.ControlAddrSet {
		cfg.ControlAddr = fv.ControlAddr
	}
	if fv.TraySet {
		cfg.Tray = fv.Tray
	}
	if fv.NotificationSet {
		cfg.Notification = fv.Notification
	}
	if fv.CuesSet {
		cfg.Cues = fv.Cues
	}
	if fv.CacheDirSet {
		cfg.CacheDir = fv.CacheDir
	}
	if fv.SettingsPathSet {
		cfg.SettingsPath = fv.SettingsPath
	}
	if fv.HistoryPathSet {
		cfg.HistoryPath = fv.HistoryPath
	}
	if fv.HistoryLimitSet {
		cfg.HistoryLimit = fv.HistoryLimit
	}
	if fv.LogLevelSet {
		cfg.LogLevel = fv.LogLevel
	}
	if fv.LogFormatSet {
		cfg.LogFormat = fv.LogFormat
	}
	if fv.LogFileSet {
		cfg.LogFile = fv.LogFile
	}
}

// AnySet reports whether any flag was explicitly set by the user.
func (fv *FlagValues) AnySet() bool {
	return fv.EngineSet ||
		fv.APIEndpointSet ||
		fv.OpenAIBaseURLSet ||
		fv.TokenSet ||
		fv.ModelSet ||
		fv.LanguageSet ||
		fv.PromptSet ||
		fv.TEXTPathSet ||
		fv.SegmentsPathSet ||
		fv.ExtraConfigSet ||
		fv.RequestTimeoutSet ||
		fv.MaxRetrySet ||
		fv.RetryBaseDelaySet ||
		fv.EnableHTTP2Set ||
		fv.VerifySSLSet ||
		fv.ChannelsSet ||
		fv.SAMPLING_RATESet ||
		fv.ChunkFramesSet ||
		fv.MinDurationMSSet ||
		fv.UploadCodecSet ||
		fv.UploadContainerSet ||
		fv.BIT_RATESet ||
		fv.InjectModeSet ||
		fv.SettleDelayMSSet ||
		fv.HotKeyHookSet ||
		fv.ReplayKeySet ||
		fv.ControlAddrSet ||
		fv.TraySet ||
		fv.NotificationSet ||
		fv.CuesSet ||
		fv.CacheDirSet ||
		fv.SettingsPathSet ||
		fv.HistoryPathSet ||
		fv.HistoryLimitSet ||
		fv.LogLevelSet ||
		fv.LogFormatSet ||
		fv.LogFileSet ||
		fv.OutputPathSet
}
