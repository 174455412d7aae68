package config

import (
	"os"
	"strconv"
)

// ServiceConfig holds all runtime configuration for the receptionist
// service. Everything comes from environment variables so the same binary
// runs in every environment.
type ServiceConfig struct {
	Port        string
	Environment string

	// Voice platform
	VapiAPIURL string
	VapiAPIKey string

	// LLM
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Messaging
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	// Email
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Auth
	ClerkSecretKey string

	// Frontend deep links and CORS origin
	AppURL string

	// Rate limiting (fixed window)
	APIRateLimit        int
	WebhookRateLimit    int
	RateLimitWindowSecs int
}

// Load reads the service configuration from the environment.
func Load() *ServiceConfig {
	return &ServiceConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		Environment: getEnvOrDefault("ENV", "development"),

		VapiAPIURL: getEnvOrDefault("VAPI_API_URL", "https://api.vapi.ai"),
		VapiAPIKey: os.Getenv("VAPI_API_KEY"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),

		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@voicedesk.app"),

		ClerkSecretKey: os.Getenv("CLERK_SECRET_KEY"),

		AppURL: getEnvOrDefault("NEXT_PUBLIC_APP_URL", "http://localhost:3000"),

		APIRateLimit:        getEnvIntOrDefault("API_RATE_LIMIT", 100),
		WebhookRateLimit:    getEnvIntOrDefault("WEBHOOK_RATE_LIMIT", 300),
		RateLimitWindowSecs: getEnvIntOrDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
