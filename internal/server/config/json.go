package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/recipebox/internal/flagx"
	"github.com/dmitrijs2005/recipebox/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration.
// Durations use timex.Duration so both "24h" and integer nanoseconds work.
// Pointer fields distinguish "absent" from an explicit zero value.
type JsonConfig struct {
	EndpointAddrHTTP      string          `json:"endpoint_addr_http"`
	DatabaseDSN           string          `json:"database_dsn"`
	SecretKey             string          `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	CookieSecure          *bool           `json:"cookie_secure"`
	AllowedOrigins        []string        `json:"allowed_origins"`
	S3RootUser            string          `json:"s3_root_user"`
	S3RootPassword        string          `json:"s3_root_password"`
	S3Bucket              string          `json:"s3_bucket"`
	S3Region              string          `json:"s3_region"`
	S3BaseEndpoint        string          `json:"s3_base_endpoint"`
	RedisAddr             string          `json:"redis_addr"`
	CacheTTL              *timex.Duration `json:"cache_ttl"`
	MaxThumbnailSize      int64           `json:"max_thumbnail_size"`
	DefaultPageLimit      int             `json:"default_page_limit"`
	MaxPageLimit          int             `json:"max_page_limit"`
}

// parseJson overlays config with values from the JSON file named by the
// -c / -config flag. Missing fields keep their current value. Read or
// decode errors panic: a broken config file must stop the server early.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.RedisAddr, c.RedisAddr)

	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.CacheTTL != nil {
		config.CacheTTL = c.CacheTTL.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.MaxThumbnailSize > 0 {
		config.MaxThumbnailSize = c.MaxThumbnailSize
	}
	if c.DefaultPageLimit > 0 {
		config.DefaultPageLimit = c.DefaultPageLimit
	}
	if c.MaxPageLimit > 0 {
		config.MaxPageLimit = c.MaxPageLimit
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
