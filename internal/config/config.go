package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	TrustProxyHeaders  bool
	AdminJWTSecret     string
	DatabaseURL        string

	// Airtable record store
	AirtableBaseID    string
	AirtableAPIKey    string
	AirtableTableName string
	AirtableBaseURL   string
	AirtableTimeout   time.Duration
	SubmitMaxAttempts int

	// Rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisTLS        bool

	// Notifications
	SlackWebhookURL       string
	NotifyEmailRecipients []string
	NotifyTimeout         time.Duration
	NotifyWait            time.Duration
	FollowUpQueueURL      string

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// AWS (SES email, SQS follow-up queue)
	SESFromEmail        string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		TrustProxyHeaders:  getEnvAsBool("TRUST_PROXY_HEADERS", false),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),

		AirtableBaseID:    strings.TrimSpace(getEnv("AIRTABLE_BASE_ID", "")),
		AirtableAPIKey:    strings.TrimSpace(getEnv("AIRTABLE_API_KEY", "")),
		AirtableTableName: getEnv("AIRTABLE_TABLE_NAME", "Leads"),
		AirtableBaseURL:   getEnv("AIRTABLE_BASE_URL", "https://api.airtable.com"),
		AirtableTimeout:   getEnvAsDuration("AIRTABLE_TIMEOUT", 10*time.Second),
		SubmitMaxAttempts: getEnvAsInt("SUBMIT_MAX_ATTEMPTS", 3),

		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 10),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTLS:        getEnvAsBool("REDIS_TLS", false),

		SlackWebhookURL:       strings.TrimSpace(getEnv("SLACK_WEBHOOK_URL", "")),
		NotifyEmailRecipients: getEnvAsList("NOTIFY_EMAIL_RECIPIENTS", nil),
		NotifyTimeout:         getEnvAsDuration("NOTIFY_TIMEOUT", 10*time.Second),
		NotifyWait:            getEnvAsDuration("NOTIFY_WAIT", 2*time.Second),
		FollowUpQueueURL:      getEnv("FOLLOWUP_QUEUE_URL", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Assessment Desk"),

		SESFromEmail:        getEnv("SES_FROM_EMAIL", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// AirtableConfigured reports whether both record store credentials are present.
func (c *Config) AirtableConfigured() bool {
	return c.AirtableBaseID != "" && c.AirtableAPIKey != ""
}

// NeedsAWS reports whether any AWS-backed integration is enabled.
func (c *Config) NeedsAWS() bool {
	return c.SESFromEmail != "" || c.FollowUpQueueURL != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
