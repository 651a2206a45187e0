package config

import (
	"github.com/spf13/viper"
)

// Config holds all process-wide settings. It is built once in main and
// passed by reference to the components that need it; nothing else reads
// the environment.
type Config struct {
	AppPort     string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	LogDir      string
	RabbitMQURL string // empty disables event publication
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "shopapi")
	viper.SetDefault("JWT_SECRET", "change-me")
	viper.SetDefault("LOG_DIR", "logs")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	return &Config{
		AppPort:     viper.GetString("APP_PORT"),
		MongoURI:    viper.GetString("MONGO_URI"),
		MongoDB:     viper.GetString("MONGO_DB"),
		JWTSecret:   viper.GetString("JWT_SECRET"),
		LogDir:      viper.GetString("LOG_DIR"),
		RabbitMQURL: viper.GetString("RABBITMQ_URL"),
	}
}
