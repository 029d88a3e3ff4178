package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string
	BaseURL string // public base URL, used for profile links in notifications

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	RedditClientID     string
	RedditClientSecret string
	RedditRedirectURI  string
	RedditUserAgent    string

	XboxAPIKey string
	PSNNpsso   string

	TrelloAPIKey   string
	TrelloToken    string
	TrelloBoardIDs []string

	WebhookURL    string
	OperatorPhone string
	SNSRegion     string

	SessionSecret   string
	SessionLifetime time.Duration

	HTTPTimeout    time.Duration // applied to every outbound third-party call
	AllowedOrigins []string      // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Records  string
	Sessions string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),
		BaseURL: getEnv("BASE_URL", "http://localhost:3000"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Records:  getEnv("DYNAMO_TABLE_RECORDS", "verification_records"),
			Sessions: getEnv("DYNAMO_TABLE_SESSIONS", "verification_sessions"),
		},

		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		RedditRedirectURI:  getEnv("REDDIT_REDIRECT_URI", "http://localhost:3000/login/callback"),
		RedditUserAgent:    getEnv("REDDIT_USER_AGENT", "MarketplaceUserVerification v1.0.0"),

		XboxAPIKey: getEnv("XBOX_API_KEY", ""),
		PSNNpsso:   getEnv("PSN_NPSSO", ""),

		TrelloAPIKey:   getEnv("TRELLO_API_KEY", ""),
		TrelloToken:    getEnv("TRELLO_TOKEN", ""),
		TrelloBoardIDs: splitNonEmpty(getEnv("TRELLO_BOARD_IDS", "")),

		WebhookURL:    getEnv("NOTIFICATION_WEBHOOK_URL", ""),
		OperatorPhone: getEnv("OPERATOR_PHONE", ""),
		SNSRegion:     getEnv("SNS_REGION", "us-east-1"),

		SessionSecret:   getEnv("SESSION_SECRET", "dev-secret-do-not-use"),
		SessionLifetime: time.Duration(getEnvInt("SESSION_LIFETIME_DAYS", 7)) * 24 * time.Hour,

		HTTPTimeout:    time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 10)) * time.Second,
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
