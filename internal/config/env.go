package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvPriceAPIURL   = "PRICE_API_URL"
	EnvPolygonAPIKey = "POLYGON_API_KEY"
	EnvStorePath     = "FLIPPER_STORE_PATH"
	EnvLogLevel      = "FLIPPER_LOG_LEVEL"
)

var envKeys = []string{EnvPriceAPIURL, EnvPolygonAPIKey, EnvStorePath, EnvLogLevel}

// ReadEnvironment reads the override variables from the given .env files and the process
// environment. Missing files are skipped and the process environment wins.
func ReadEnvironment(files ...string) (map[string]string, error) {
	env := map[string]string{}

	for _, file := range files {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, err
		}

		for _, key := range envKeys {
			if value, ok := values[key]; ok {
				env[key] = value
			}
		}
	}

	for _, key := range envKeys {
		if value, ok := os.LookupEnv(key); ok {
			env[key] = value
		}
	}

	return env, nil
}

// ApplyEnvironment overrides the config with the non-empty values of env.
func (c *Config) ApplyEnvironment(env map[string]string) {
	if value := env[EnvPriceAPIURL]; value != "" {
		c.DataSource.URL = value
	}

	if value := env[EnvPolygonAPIKey]; value != "" {
		c.DataSource.APIKey = value
	}

	if value := env[EnvStorePath]; value != "" {
		c.Store.Path = value
	}

	if value := env[EnvLogLevel]; value != "" {
		c.Logging.Level = value
	}
}
