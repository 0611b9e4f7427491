// Package config loads kittentts configuration from defaults, flags,
// environment variables, and an optional config file, in ascending
// precedence of flag > env > file > default.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Runtime  RuntimeConfig  `mapstructure:"runtime"`
	TTS      TTSConfig      `mapstructure:"tts"`
	Server   ServerConfig   `mapstructure:"server"`
	Download DownloadConfig `mapstructure:"download"`
}

type PathsConfig struct {
	ModelPath      string `mapstructure:"model_path"`
	VocabPath      string `mapstructure:"vocab_path"`
	VoicesManifest string `mapstructure:"voices_manifest"`
	OutputDir      string `mapstructure:"output_dir"`
}

type RuntimeConfig struct {
	ORTLibraryPath string `mapstructure:"ort_library_path"`
	ORTVersion     string `mapstructure:"ort_version"`
	APIVersion     uint32 `mapstructure:"api_version"`
}

type TTSConfig struct {
	Voice          string  `mapstructure:"voice"`
	Speed          float64 `mapstructure:"speed"`
	Tokenizer      string  `mapstructure:"tokenizer"`
	TokenizerModel string  `mapstructure:"tokenizer_model"`
}

type ServerConfig struct {
	ListenAddr     string `mapstructure:"listen_addr"`
	Workers        int    `mapstructure:"workers"`
	MaxTextBytes   int    `mapstructure:"max_text_bytes"`
	RequestTimeout int    `mapstructure:"request_timeout"`
}

type DownloadConfig struct {
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
	CacheDir string `mapstructure:"cache_dir"`
}

// Tokenizer backend names accepted by tts.tokenizer.
const (
	TokenizerTable         = "table"
	TokenizerSentencePiece = "sentencepiece"
)

// NormalizeTokenizer validates and canonicalizes a tokenizer backend name.
func NormalizeTokenizer(raw string) (string, error) {
	tok := strings.ToLower(strings.TrimSpace(raw))
	if tok == "" {
		tok = TokenizerTable
	}
	switch tok {
	case TokenizerTable, TokenizerSentencePiece:
		return tok, nil
	default:
		return "", fmt.Errorf("invalid tokenizer %q (expected %s|%s)", raw, TokenizerTable, TokenizerSentencePiece)
	}
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Paths: PathsConfig{
			ModelPath:      "models/kitten_tts_nano_v0_1.onnx",
			VocabPath:      "models/vocab.json",
			VoicesManifest: "voices/manifest.json",
			OutputDir:      "out",
		},
		Runtime: RuntimeConfig{
			ORTLibraryPath: "",
			ORTVersion:     "",
			APIVersion:     0,
		},
		TTS: TTSConfig{
			Voice:          "expr-0",
			Speed:          1.0,
			Tokenizer:      TokenizerTable,
			TokenizerModel: "",
		},
		Server: ServerConfig{
			ListenAddr:     ":8080",
			Workers:        2,
			MaxTextBytes:   4096,
			RequestTimeout: 60,
		},
		Download: DownloadConfig{
			Model:    "kitten-nano-en",
			BaseURL:  "",
			CacheDir: "models",
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("paths-model-path", defaults.Paths.ModelPath, "Path to ONNX model")
	fs.String("paths-vocab-path", defaults.Paths.VocabPath, "Path to vocabulary JSON")
	fs.String("paths-voices-manifest", defaults.Paths.VoicesManifest, "Path to voices manifest JSON")
	fs.String("paths-output-dir", defaults.Paths.OutputDir, "Directory for published WAV files")
	fs.String("runtime-ort-library-path", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library")
	fs.String("ort-lib", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library (alias for --runtime-ort-library-path)")
	fs.String("runtime-ort-version", defaults.Runtime.ORTVersion, "Expected ONNX Runtime version")
	fs.Uint32("runtime-api-version", defaults.Runtime.APIVersion, "ORT C API version (0 = binding default)")
	fs.String("tts-voice", defaults.TTS.Voice, "Voice ID from the voices manifest")
	fs.Float64("tts-speed", defaults.TTS.Speed, "Playback speed in [0.5, 2.0]")
	fs.String("tts-tokenizer", defaults.TTS.Tokenizer, "Tokenizer backend (table|sentencepiece)")
	fs.String("tts-tokenizer-model", defaults.TTS.TokenizerModel, "SentencePiece model path (tokenizer=sentencepiece)")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-workers", defaults.Server.Workers, "Max concurrent synthesis requests")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum text size for POST /tts")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request synthesis deadline in seconds")
	fs.String("download-model", defaults.Download.Model, "Pinned model bundle name")
	fs.String("download-base-url", defaults.Download.BaseURL, "Asset base URL override")
	fs.String("download-cache-dir", defaults.Download.CacheDir, "Local asset cache directory")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("KITTENTTS")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("runtime.ort_library_path", "KITTENTTS_ORT_LIB", "ORT_LIBRARY_PATH"); err != nil {
		return Config{}, fmt.Errorf("bind ort env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("kittentts")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if _, err := NormalizeTokenizer(cfg.TTS.Tokenizer); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("paths.model_path", c.Paths.ModelPath)
	v.SetDefault("paths.vocab_path", c.Paths.VocabPath)
	v.SetDefault("paths.voices_manifest", c.Paths.VoicesManifest)
	v.SetDefault("paths.output_dir", c.Paths.OutputDir)
	v.SetDefault("runtime.ort_library_path", c.Runtime.ORTLibraryPath)
	v.SetDefault("runtime.ort_version", c.Runtime.ORTVersion)
	v.SetDefault("runtime.api_version", c.Runtime.APIVersion)
	v.SetDefault("tts.voice", c.TTS.Voice)
	v.SetDefault("tts.speed", c.TTS.Speed)
	v.SetDefault("tts.tokenizer", c.TTS.Tokenizer)
	v.SetDefault("tts.tokenizer_model", c.TTS.TokenizerModel)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("download.model", c.Download.Model)
	v.SetDefault("download.base_url", c.Download.BaseURL)
	v.SetDefault("download.cache_dir", c.Download.CacheDir)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("log_level", "log-level")
	v.RegisterAlias("paths.model_path", "paths-model-path")
	v.RegisterAlias("paths.vocab_path", "paths-vocab-path")
	v.RegisterAlias("paths.voices_manifest", "paths-voices-manifest")
	v.RegisterAlias("paths.output_dir", "paths-output-dir")
	v.RegisterAlias("runtime.ort_library_path", "runtime-ort-library-path")
	v.RegisterAlias("runtime.ort_library_path", "ort-lib")
	v.RegisterAlias("runtime.ort_version", "runtime-ort-version")
	v.RegisterAlias("runtime.api_version", "runtime-api-version")
	v.RegisterAlias("tts.voice", "tts-voice")
	v.RegisterAlias("tts.speed", "tts-speed")
	v.RegisterAlias("tts.tokenizer", "tts-tokenizer")
	v.RegisterAlias("tts.tokenizer_model", "tts-tokenizer-model")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.workers", "server-workers")
	v.RegisterAlias("server.max_text_bytes", "server-max-text-bytes")
	v.RegisterAlias("server.request_timeout", "server-request-timeout")
	v.RegisterAlias("download.model", "download-model")
	v.RegisterAlias("download.base_url", "download-base-url")
	v.RegisterAlias("download.cache_dir", "download-cache-dir")
}
