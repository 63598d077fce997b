package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the optional config file. Durations
// use timex.Duration so both "15m" and integer nanoseconds are accepted.
// Pointer fields distinguish "absent" from a zero value.
type JsonConfig struct {
	EndpointAddrHTTP        *string         `json:"endpoint_addr_http"`
	DatabaseDSN             *string         `json:"database_dsn"`
	SecretKey               *string         `json:"secret_key"`
	TokenValidityDuration   *timex.Duration `json:"token_validity_duration"`
	PublicURL               *string         `json:"public_url"`
	MailFrom                *string         `json:"mail_from"`
	SMTPHost                *string         `json:"smtp_host"`
	SMTPPort                *int            `json:"smtp_port"`
	SMTPUsername            *string         `json:"smtp_username"`
	SMTPPassword            *string         `json:"smtp_password"`
	RevokeOutstandingTokens *bool           `json:"revoke_outstanding_tokens"`
	LogLevel                *string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config (if any) and copies every
// field present in it onto config. Unreadable files or invalid JSON panic.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFileFlag(args)

	// nothing to load
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

	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	setIf(&config.PublicURL, c.PublicURL)
	setIf(&config.MailFrom, c.MailFrom)
	setIf(&config.SMTPHost, c.SMTPHost)
	setIf(&config.SMTPPort, c.SMTPPort)
	setIf(&config.SMTPUsername, c.SMTPUsername)
	setIf(&config.SMTPPassword, c.SMTPPassword)
	setIf(&config.RevokeOutstandingTokens, c.RevokeOutstandingTokens)
	setIf(&config.LogLevel, c.LogLevel)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
