package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/charstorm/toposphere/internal/flagx"
	"github.com/charstorm/toposphere/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. It uses timex.Duration for lifetime fields, which
// allows parsing both string values such as "15m" and integer
// nanoseconds. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	AuthRateLimitRPS             int            `json:"auth_rate_limit_rps"`
	AuthRateLimitBurst           int            `json:"auth_rate_limit_burst"`
}

// parseJson loads configuration values from an optional JSON file into
// the provided Config instance. The file path comes from the -c/-config
// command-line flags; when absent, no JSON file is loaded. An unreadable
// or invalid file panics: a config file that was explicitly requested
// must not be silently skipped.
func parseJson(config *Config) {

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

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.AuthRateLimitRPS = c.AuthRateLimitRPS
	config.AuthRateLimitBurst = c.AuthRateLimitBurst
}
