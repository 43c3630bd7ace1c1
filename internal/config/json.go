package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// duration unmarshals both "1m30s" style strings and integer nanoseconds.
type duration time.Duration

func (d *duration) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(data, []byte(`"`)) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", text, err)
		}
		*d = duration(parsed)
		return nil
	}

	var nanoseconds int64
	if err := json.Unmarshal(data, &nanoseconds); err != nil {
		return err
	}
	*d = duration(nanoseconds)

	return nil
}

// fileConfig is the shape of the JSON configuration file.
type fileConfig struct {
	RunAddr             string   `json:"server_address"`
	LogLevel            string   `json:"log_level"`
	DatabaseDSN         string   `json:"database_dsn"`
	DBFileName          string   `json:"file_storage_path"`
	DBConnectionTimeout duration `json:"db_connection_timeout"`
	TokenSigningKey     string   `json:"token_signing_key"`
	TokenTTL            duration `json:"token_ttl"`
	BcryptCost          int      `json:"bcrypt_cost"`
	GeocoderURL         string   `json:"geocoder_url"`
	GeocoderTimeout     duration `json:"geocoder_timeout"`
	TrustedSubnet       string   `json:"trusted_subnet"`
	CORSAllowedOrigins  []string `json:"cors_allowed_origins"`
	APIBasePath         string   `json:"api_base_path"`
}

func (f *fileConfig) applyTo(c *Config) error {
	c.override(&Config{
		RunAddr:             f.RunAddr,
		LogLevel:            f.LogLevel,
		DatabaseDSN:         f.DatabaseDSN,
		DBFileName:          f.DBFileName,
		DBConnectionTimeout: time.Duration(f.DBConnectionTimeout),
		TokenSigningKey:     f.TokenSigningKey,
		TokenTTL:            time.Duration(f.TokenTTL),
		BcryptCost:          f.BcryptCost,
		GeocoderURL:         f.GeocoderURL,
		GeocoderTimeout:     time.Duration(f.GeocoderTimeout),
		TrustedSubnet:       f.TrustedSubnet,
		CORSAllowedOrigins:  f.CORSAllowedOrigins,
		APIBasePath:         f.APIBasePath,
	})

	return nil
}
