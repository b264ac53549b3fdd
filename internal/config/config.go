package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Postgres   PostgresConfig
	Slack      SlackConfig
	Embedding  EmbeddingConfig
	Generation GenerationConfig
	Ingest     IngestConfig
	Enrich     EnrichConfig
	Metrics    MetricsConfig
	Logs       LogsConfig
	Metadata   MetadataConfig
	Auth       AuthConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type SlackConfig struct {
	BotToken  string
	ChannelID string
}

type EmbeddingConfig struct {
	APIKey string
	Model  string

	// Dimension: 배포 단위로 고정되는 임베딩 차원
	Dimension int
}

type GenerationConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	TopK        int
	Timeout     time.Duration
}

type IngestConfig struct {
	// Bucket/Prefix: 런북 마크다운이 저장된 GCS 위치
	Bucket string
	Prefix string

	// OnStartup: true면 부팅 시 백그라운드로 전체 인제스트 수행
	OnStartup bool

	// MaxChunkSize: 청크 크기 상한 (문자 수)
	MaxChunkSize int

	// Backend: "postgres" 또는 "memory"
	Backend string

	EmbedTimeout time.Duration
}

type EnrichConfig struct {
	// Lookback: 메트릭/로그 조회 범위
	Lookback time.Duration

	// FetchTimeout: 소스별 개별 타임아웃
	FetchTimeout time.Duration
}

type MetricsConfig struct {
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
}

type LogsConfig struct {
	LokiURL string
}

type MetadataConfig struct {
	GCPProject      string
	CredentialsFile string
}

type AuthConfig struct {
	JWTSecret      string
	JWTAccessTTL   string
	JWTRefreshTTL  string
	AdminUsername  string
	AdminPassword  string
	AllowSignup    string
	CookieSecure   string
	CookieSameSite string
	CookiePath     string
	CookieDomain   string

	// OIDC 로그인 (선택)
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "8080"),
			AllowedOrigins: splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Slack: SlackConfig{
			BotToken:  os.Getenv("SLACK_BOT_TOKEN"),
			ChannelID: os.Getenv("SLACK_CHANNEL_ID"),
		},
		Embedding: EmbeddingConfig{
			APIKey:    os.Getenv("AI_API_KEY"),
			Model:     getenv("EMBEDDING_MODEL", "text-embedding-004"),
			Dimension: getenvInt("EMBEDDING_DIMENSION", 768),
		},
		Generation: GenerationConfig{
			APIKey:      os.Getenv("AI_API_KEY"),
			Model:       getenv("GENERATION_MODEL", "gemini-2.0-flash"),
			MaxTokens:   getenvInt("GENERATION_MAX_TOKENS", 2048),
			Temperature: getenvFloat("GENERATION_TEMPERATURE", 0.2),
			TopK:        getenvInt("RETRIEVAL_TOP_K", 5),
			Timeout:     getenvDuration("GENERATION_TIMEOUT", 60*time.Second),
		},
		Ingest: IngestConfig{
			Bucket:       os.Getenv("RUNBOOK_BUCKET"),
			Prefix:       getenv("RUNBOOK_PREFIX", "runbooks/"),
			OnStartup:    getenvBool("INGEST_ON_STARTUP", false),
			MaxChunkSize: getenvInt("MAX_CHUNK_SIZE", 2000),
			Backend:      getenv("VECTOR_BACKEND", "postgres"),
			EmbedTimeout: getenvDuration("EMBED_TIMEOUT", 15*time.Second),
		},
		Enrich: EnrichConfig{
			Lookback:     getenvDuration("ENRICH_LOOKBACK", 15*time.Minute),
			FetchTimeout: getenvDuration("ENRICH_FETCH_TIMEOUT", 10*time.Second),
		},
		Metrics: MetricsConfig{
			InfluxURL:    os.Getenv("INFLUX_URL"),
			InfluxToken:  os.Getenv("INFLUX_TOKEN"),
			InfluxOrg:    os.Getenv("INFLUX_ORG"),
			InfluxBucket: getenv("INFLUX_BUCKET", "telemetry"),
		},
		Logs: LogsConfig{
			LokiURL: os.Getenv("LOKI_URL"),
		},
		Metadata: MetadataConfig{
			GCPProject:      os.Getenv("GCP_PROJECT"),
			CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		},
		Auth: AuthConfig{
			JWTSecret:        os.Getenv("JWT_SECRET"),
			JWTAccessTTL:     getenv("JWT_ACCESS_TTL", "15m"),
			JWTRefreshTTL:    getenv("JWT_REFRESH_TTL", "168h"),
			AdminUsername:    os.Getenv("ADMIN_USERNAME"),
			AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
			AllowSignup:      os.Getenv("ALLOW_SIGNUP"),
			CookieSecure:     os.Getenv("AUTH_COOKIE_SECURE"),
			CookieSameSite:   os.Getenv("AUTH_COOKIE_SAMESITE"),
			CookiePath:       os.Getenv("AUTH_COOKIE_PATH"),
			CookieDomain:     os.Getenv("AUTH_COOKIE_DOMAIN"),
			OIDCIssuer:       os.Getenv("OIDC_ISSUER"),
			OIDCClientID:     os.Getenv("OIDC_CLIENT_ID"),
			OIDCClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			OIDCRedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
