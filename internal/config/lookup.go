package config

import (
	"os"
	"time"
)

func lookupEnvOrString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}

	return defaultVal
}

func lookupEnvOrDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if x, err := time.ParseDuration(val); err == nil {
			return x
		}
	}

	return defaultVal
}
