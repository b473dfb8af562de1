package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	LLM      LLMConfig
	MiniMax  MiniMaxConfig
	TTS      TTSConfig
	Podcast  PodcastConfig
	Music    MusicConfig
	Storage  StorageConfig
	GenLog   GenLogConfig
	Webhook  WebhookConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret    string
	APIKeyHeader string
	APIKeys      []string
}

type LLMConfig struct {
	OpenAIKey        string
	OpenAIBaseURL    string
	AnthropicKey     string
	OllamaURL        string
	MiniMaxKey       string
	MiniMaxBaseURL   string
	DefaultProvider  string
	DefaultModel     string
	FallbackProvider string
	MaxRetries       int
	MaxTokens        int
	Temperature      float64
	TopP             float64
}

type MiniMaxConfig struct {
	APIKey      string
	GroupID     string
	BaseURL     string
	TextModel   string
	SpeechModel string
	MusicModel  string
	Timeout     time.Duration
	VoiceTTL    time.Duration
}

type TTSConfig struct {
	Backend       string // "minimax", "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	LocalBinPath  string // default: "piper"
	LocalModel    string // required when backend=local
	LocalSpeakers int    // speakers in a multi-speaker Piper model
}

// PodcastConfig holds the pipeline knobs.
type PodcastConfig struct {
	OutputDir       string
	TempDir         string
	Concurrency     int
	SynthRetries    int
	SynthBackoff    time.Duration
	SynthPace       time.Duration
	SynthTimeout    time.Duration
	MinAudioBytes   int
	MaxSegmentChars int
	FFmpegPath      string
	FFprobePath     string
	Bitrate         string
	Loudness        string
	FadeIn          time.Duration
	FadeOut         time.Duration
}

type MusicConfig struct {
	Enabled bool
	Source  string // "generated" or "file"
	File    string
	Volume  float64
}

type StorageConfig struct {
	Backend        string // "supabase", "minio" or "" (disabled)
	SupabaseURL    string
	SupabaseKey    string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    bool
	Bucket         string
	PresignExpiry  time.Duration
}

type GenLogConfig struct {
	Dir      string
	Postgres bool
}

type WebhookConfig struct {
	Secret  string
	Timeout time.Duration
}

type WorkerConfig struct {
	Concurrency int
	MaxRetry    int
	TaskTimeout time.Duration
	JobTTL      time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	intVar := func(key string, fallback int) int {
		v, err := getEnvInt(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}
	floatVar := func(key string, fallback float64) float64 {
		v, err := getEnvFloat(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}
	durVar := func(key string, fallback time.Duration) time.Duration {
		v, err := getEnvDuration(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}
	boolVar := func(key string, fallback bool) bool {
		v, err := getEnvBool(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}

	minimaxKey := getEnv("MINIMAX_API_KEY", "")
	minimaxURL := getEnv("MINIMAX_BASE_URL", "https://api.minimax.chat")

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           intVar("SERVER_PORT", 8080),
			CORSOrigins:    getEnvList("CORS_ORIGINS"),
			RateLimitRPS:   floatVar("RATE_LIMIT_RPS", 10),
			RateLimitBurst: intVar("RATE_LIMIT_BURST", 20),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       intVar("DB_MAX_CONNS", 10),
			MinConns:       intVar("DB_MIN_CONNS", 1),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       intVar("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			APIKeyHeader: getEnv("API_KEY_HEADER", "X-API-Key"),
			APIKeys:      getEnvList("API_KEYS"),
		},
		LLM: LLMConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:        getEnv("OLLAMA_URL", ""),
			MiniMaxKey:       minimaxKey,
			MiniMaxBaseURL:   minimaxURL,
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "minimax"),
			DefaultModel:     getEnv("LLM_DEFAULT_MODEL", "MiniMax-Text-01"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			MaxRetries:       intVar("LLM_MAX_RETRIES", 2),
			MaxTokens:        intVar("LLM_MAX_TOKENS", 1024),
			Temperature:      floatVar("LLM_TEMPERATURE", 0.8),
			TopP:             floatVar("LLM_TOP_P", 0.95),
		},
		MiniMax: MiniMaxConfig{
			APIKey:      minimaxKey,
			GroupID:     getEnv("MINIMAX_GROUP_ID", ""),
			BaseURL:     minimaxURL,
			TextModel:   getEnv("MINIMAX_TEXT_MODEL", "MiniMax-Text-01"),
			SpeechModel: getEnv("MINIMAX_SPEECH_MODEL", "speech-2.5-hd-preview"),
			MusicModel:  getEnv("MINIMAX_MUSIC_MODEL", "music-1.5"),
			Timeout:     durVar("MINIMAX_TIMEOUT", 60*time.Second),
			VoiceTTL:    durVar("MINIMAX_VOICE_CACHE_TTL", 24*time.Hour),
		},
		TTS: TTSConfig{
			Backend:       getEnv("TTS_BACKEND", "minimax"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("TTS_OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("TTS_OPENAI_MODEL", ""),
			LocalBinPath:  getEnv("TTS_LOCAL_PIPER_BIN", "piper"),
			LocalModel:    getEnv("TTS_LOCAL_PIPER_MODEL", ""),
			LocalSpeakers: intVar("TTS_LOCAL_PIPER_SPEAKERS", 0),
		},
		Podcast: PodcastConfig{
			OutputDir:       getEnv("PODCAST_OUTPUT_DIR", "output"),
			TempDir:         getEnv("PODCAST_TEMP_DIR", ""),
			Concurrency:     intVar("PODCAST_CONCURRENCY", 3),
			SynthRetries:    intVar("PODCAST_SYNTH_RETRIES", 3),
			SynthBackoff:    durVar("PODCAST_SYNTH_BACKOFF", time.Second),
			SynthPace:       durVar("PODCAST_SYNTH_PACE", 1500*time.Millisecond),
			SynthTimeout:    durVar("PODCAST_SYNTH_TIMEOUT", 60*time.Second),
			MinAudioBytes:   intVar("PODCAST_MIN_AUDIO_BYTES", 1000),
			MaxSegmentChars: intVar("PODCAST_MAX_SEGMENT_CHARS", 300),
			FFmpegPath:      getEnv("FFMPEG_PATH", "ffmpeg"),
			FFprobePath:     getEnv("FFPROBE_PATH", "ffprobe"),
			Bitrate:         getEnv("PODCAST_BITRATE", "192k"),
			Loudness:        getEnv("PODCAST_LOUDNORM", "I=-16:TP=-1.5:LRA=11"),
			FadeIn:          durVar("PODCAST_FADE_IN", 2*time.Second),
			FadeOut:         durVar("PODCAST_FADE_OUT", 3*time.Second),
		},
		Music: MusicConfig{
			Enabled: boolVar("MUSIC_ENABLED", true),
			Source:  getEnv("MUSIC_SOURCE", "generated"),
			File:    getEnv("MUSIC_FILE", ""),
			Volume:  floatVar("MUSIC_VOLUME", 0.3),
		},
		Storage: StorageConfig{
			Backend:        getEnv("STORAGE_BACKEND", ""),
			SupabaseURL:    getEnv("SUPABASE_URL", ""),
			SupabaseKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
			MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
			MinioSecure:    boolVar("MINIO_SECURE", false),
			Bucket:         getEnv("STORAGE_BUCKET", "podcasts"),
			PresignExpiry:  durVar("STORAGE_PRESIGN_EXPIRY", 24*time.Hour),
		},
		GenLog: GenLogConfig{
			Dir:      getEnv("GENLOG_DIR", "logs"),
			Postgres: boolVar("GENLOG_POSTGRES", false),
		},
		Webhook: WebhookConfig{
			Secret:  getEnv("WEBHOOK_SECRET", ""),
			Timeout: durVar("WEBHOOK_TIMEOUT", 10*time.Second),
		},
		Worker: WorkerConfig{
			Concurrency: intVar("WORKER_CONCURRENCY", 3),
			MaxRetry:    intVar("WORKER_MAX_RETRY", 1),
			TaskTimeout: durVar("WORKER_TASK_TIMEOUT", 30*time.Minute),
			JobTTL:      durVar("JOB_TTL", 24*time.Hour),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports every required variable that is missing for the
// configured backends.
func (c *Config) Validate() error {
	var missing []string
	needsMiniMax := c.LLM.DefaultProvider == "minimax" || c.TTS.Backend == "minimax" ||
		(c.Music.Enabled && c.Music.Source == "generated")
	if needsMiniMax && c.MiniMax.APIKey == "" {
		missing = append(missing, "MINIMAX_API_KEY")
	}
	if c.TTS.Backend == "local" && c.TTS.LocalModel == "" {
		missing = append(missing, "TTS_LOCAL_PIPER_MODEL")
	}
	if c.Music.Enabled && c.Music.Source == "file" && c.Music.File == "" {
		missing = append(missing, "MUSIC_FILE")
	}
	switch c.Storage.Backend {
	case "supabase":
		if c.Storage.SupabaseURL == "" {
			missing = append(missing, "SUPABASE_URL")
		}
		if c.Storage.SupabaseKey == "" {
			missing = append(missing, "SUPABASE_SERVICE_KEY")
		}
	case "minio":
		if c.Storage.MinioAccessKey == "" {
			missing = append(missing, "MINIO_ACCESS_KEY")
		}
		if c.Storage.MinioSecretKey == "" {
			missing = append(missing, "MINIO_SECRET_KEY")
		}
	}
	if c.GenLog.Postgres && c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateServer adds the checks that only the HTTP API needs.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" && len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("missing required env vars: JWT_SECRET or API_KEYS")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
