package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/lighthouse-crew/profilesync/internal/flagx"
	"github.com/lighthouse-crew/profilesync/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1500ms" and integer nanoseconds.
//
// This struct is an intermediate DTO (Data Transfer Object) used only for
// reading JSON configuration files. After unmarshalling, its fields are
// copied into the runtime Config struct which uses time.Duration. Every field
// is a pointer so a partial file overlays only the keys it actually carries
// and leaves the defaults for the rest alone.
type JsonConfig struct {
	EndpointAddrHTTP *string         `json:"endpoint_addr_http"`
	DatabaseDSN      *string         `json:"database_dsn"`
	SecretKey        *string         `json:"secret_key"`
	AutosaveDebounce *timex.Duration `json:"autosave_debounce"`
	RelayBaseURL     *string         `json:"relay_base_url"`
	RelayToken       *string         `json:"relay_token"`
	RelayQueueSize   *int            `json:"relay_queue_size"`
	RedisAddr        *string         `json:"redis_addr"`
	RedisChannel     *string         `json:"redis_channel"`
	S3RootUser       *string         `json:"s3_root_user"`
	S3RootPassword   *string         `json:"s3_root_password"`
	S3Bucket         *string         `json:"s3_bucket"`
	S3Region         *string         `json:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. Only the keys present in the file are copied into the
// target Config; omitted keys keep their current (default) values. If the
// file cannot be read or contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AutosaveDebounce != nil {
		config.AutosaveDebounce = time.Duration(c.AutosaveDebounce.Duration)
	}
	setString(&config.RelayBaseURL, c.RelayBaseURL)
	setString(&config.RelayToken, c.RelayToken)
	if c.RelayQueueSize != nil {
		config.RelayQueueSize = *c.RelayQueueSize
	}
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisChannel, c.RedisChannel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
