// Package config loads runtime settings from the environment. The
// obfuscator is stateless, so configuration is limited to the object
// store and the optional HTTP surface; cmd entrypoints load a .env file
// before calling FromEnv.
package config

import "os"

// DefaultRegion is the AWS region used when AWS_REGION is unset.
const DefaultRegion = "eu-west-2"

// Config holds environment-derived settings.
type Config struct {
	// AWSRegion is the region for S3 operations.
	AWSRegion string
	// AWSEndpointURL overrides the S3 endpoint (localstack-style
	// testing). When set, path-style addressing is used.
	AWSEndpointURL string
	// HTTPPort is the listen port for the HTTP invocation surface.
	HTTPPort string
}

// FromEnv reads configuration from the environment.
func FromEnv() Config {
	return Config{
		AWSRegion:      getEnv("AWS_REGION", DefaultRegion),
		AWSEndpointURL: os.Getenv("AWS_ENDPOINT_URL"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
