package envconfig

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadEnvFile loads KEY=VALUE pairs from a .env style file into the process
// environment. Variables already set in the environment win. A missing file
// is reported to the caller but is not fatal.
func LoadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)

		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		os.Setenv(key, value)
	}

	return scanner.Err()
}

// GetEnv returns the value of the environment variable or the default when it
// is unset or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBool reads a boolean environment variable ("true"/"false", "1"/"0").
func GetBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetInt reads an integer environment variable.
func GetInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetDuration reads a duration environment variable ("5s", "1m30s").
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetLogLevel returns the configured log level, defaulting to info.
func GetLogLevel() string {
	level := strings.ToLower(GetEnv("LOG_LEVEL", "info"))
	switch level {
	case "debug", "info", "warn", "error":
		return level
	default:
		return "info"
	}
}
