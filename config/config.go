package config

import (
	"log"
	"sync"

	"github.com/spf13/viper"
)

var (
	Environment     string
	Port            string
	SessionSecret   string
	OpenRouterKey   string
	OpenRouterURL   string
	OpenRouterModel string
	AppReferer      string
	AppTitle        string
	SecretsFile     string
	AppUsers        string

	// singleton lock
	loadConfigOnce sync.Once
)

const (
	defaultOpenRouterURL   = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel = "deepseek/deepseek-chat-v3-0324:free"
)

// LoadConfig loads configuration from .env or config.yaml using Viper
func LoadConfig() error {
	var loadError error
	loadConfigOnce.Do(func() {
		// Try to load config from .env first, then fallback to config.yaml
		viper.SetConfigFile(".env")
		viper.AutomaticEnv()

		if err := viper.ReadInConfig(); err != nil {
			viper.SetConfigFile("config.yaml")
			if err := viper.ReadInConfig(); err != nil {
				// Missing config file is not fatal; environment variables
				// may still carry everything needed.
				log.Println("No configuration file found, relying on environment:", err)
			}
		}

		viper.SetDefault("OPENROUTER_API_URL", defaultOpenRouterURL)
		viper.SetDefault("OPENROUTER_MODEL", defaultOpenRouterModel)
		viper.SetDefault("APP_REFERER", "http://localhost:8501")
		viper.SetDefault("APP_TITLE", "Customer Support Assistant")
		viper.SetDefault("PORT", "8080")
		viper.SetDefault("SECRETS_FILE", "secrets.toml")

		// Assign variables from configuration
		Environment = viper.GetString("ENVIRONMENT")
		Port = viper.GetString("PORT")
		SessionSecret = viper.GetString("SESSION_SECRET")
		OpenRouterKey = viper.GetString("OPENROUTER_API_KEY")
		OpenRouterURL = viper.GetString("OPENROUTER_API_URL")
		OpenRouterModel = viper.GetString("OPENROUTER_MODEL")
		AppReferer = viper.GetString("APP_REFERER")
		AppTitle = viper.GetString("APP_TITLE")
		SecretsFile = viper.GetString("SECRETS_FILE")
		AppUsers = viper.GetString("APP_USERS")

		if OpenRouterKey == "" {
			log.Println("⚠️ OPENROUTER_API_KEY is not set, rewrite requests will be rejected upstream")
		}

		log.Println("✅ Configuration loaded successfully!")
	})

	return loadError
}
