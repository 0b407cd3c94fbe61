// Package config loads configuration for docket binaries.
//
// It uses Viper to read a config.yml, godotenv to load a .env file, and binds
// DOCKET_-prefixed environment variables onto nested keys, so
// DOCKET_CONNECTOR_API_SECRET fills connector.api_secret.
//
// # Usage
//
//	var cfg CLIConfig
//	err := config.LoadConfig("docket", &cfg, config.WithConfigFile(path))
package config
