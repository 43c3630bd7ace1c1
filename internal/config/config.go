// Package config loads the service configuration from defaults, an optional
// JSON file, environment variables and command-line flags, in increasing
// order of priority, and validates the result.
package config

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the service.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBFileName          string        `env:"FILE_STORAGE_PATH"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" validate:"gt=0"`
	TokenSigningKey     string        `env:"TOKEN_SIGNING_KEY" validate:"required,base64key"`
	TokenTTL            time.Duration `env:"TOKEN_TTL" validate:"gt=0"`
	BcryptCost          int           `env:"BCRYPT_COST" validate:"min=4,max=31"`
	GeocoderURL         string        `env:"GEOCODER_URL" validate:"url"`
	GeocoderTimeout     time.Duration `env:"GEOCODER_TIMEOUT" validate:"gt=0"`
	TrustedSubnet       string        `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`
	CORSAllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	APIBasePath         string        `env:"API_BASE_PATH" validate:"omitempty,startswith=/"`
	ConfigFile          string        `env:"CONFIG"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	LogLevel:            "info",
	DatabaseDSN:         "",
	DBFileName:          "",
	DBConnectionTimeout: 10 * time.Second,
	// no default: an unset TOKEN_SIGNING_KEY fails validation
	TokenSigningKey:    "",
	TokenTTL:           24 * time.Hour,
	BcryptCost:         10,
	GeocoderURL:        "https://api-adresse.data.gouv.fr/search/",
	GeocoderTimeout:    5 * time.Second,
	TrustedSubnet:      "",
	CORSAllowedOrigins: []string{"*"},
	APIBasePath:        "/api",
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

// WithDisableFlagsParsing skips command-line parsing; used by tests.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs parses the given arguments instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

// New builds the configuration. Priority: flags > environment > JSON file > defaults.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	var valuesFromFlags Config
	setFlags := map[string]bool{}
	if !options.disableFlagsParsing {
		setFlags, err = parseFlags(&valuesFromFlags, options.args)
		if err != nil {
			return nil, err
		}
	}

	var valuesFromEnv Config
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, err
	}

	configFile := valuesFromEnv.ConfigFile
	if setFlags["c"] {
		configFile = valuesFromFlags.ConfigFile
	}
	if configFile != "" {
		if err := values.loadJSON(configFile); err != nil {
			return nil, err
		}
	}

	values.override(&valuesFromEnv)
	values.overrideFromFlags(&valuesFromFlags, setFlags)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}

// SigningKey returns the decoded token signing key.
func (c *Config) SigningKey() ([]byte, error) {
	return base64.StdEncoding.DecodeString(c.TokenSigningKey)
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
	values.CORSAllowedOrigins = append([]string(nil), defaults.CORSAllowedOrigins...)
}

func parseFlags(values *Config, args []string) (map[string]bool, error) {
	flags := flag.NewFlagSet("favaddr", flag.ContinueOnError)
	flags.StringVar(&values.RunAddr, "a", "", "address and port to run server")
	flags.StringVar(&values.LogLevel, "l", "", "logger level")
	flags.StringVar(&values.DatabaseDSN, "d", "", "PostgreSQL connection string")
	flags.StringVar(&values.DBFileName, "f", "", "SQLite database file")
	flags.StringVar(&values.TokenSigningKey, "k", "", "base64 encoded token signing key")
	flags.StringVar(&values.TrustedSubnet, "t", "", "CIDR allowed to read internal stats")
	flags.StringVar(&values.ConfigFile, "c", "", "JSON config file")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	setFlags := map[string]bool{}
	flags.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	return setFlags, nil
}

func (c *Config) loadJSON(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/loadJSON(): error while `os.ReadFile()` calling: %w", err)
	}

	var fromFile fileConfig
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return fmt.Errorf("in internal/config/config.go/loadJSON(): error while `json.Unmarshal()` calling: %w", err)
	}

	return fromFile.applyTo(c)
}

// override copies every non-zero field of other into c.
func (c *Config) override(other *Config) {
	if other.RunAddr != "" {
		c.RunAddr = other.RunAddr
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabaseDSN != "" {
		c.DatabaseDSN = other.DatabaseDSN
	}
	if other.DBFileName != "" {
		c.DBFileName = other.DBFileName
	}
	if other.DBConnectionTimeout != 0 {
		c.DBConnectionTimeout = other.DBConnectionTimeout
	}
	if other.TokenSigningKey != "" {
		c.TokenSigningKey = other.TokenSigningKey
	}
	if other.TokenTTL != 0 {
		c.TokenTTL = other.TokenTTL
	}
	if other.BcryptCost != 0 {
		c.BcryptCost = other.BcryptCost
	}
	if other.GeocoderURL != "" {
		c.GeocoderURL = other.GeocoderURL
	}
	if other.GeocoderTimeout != 0 {
		c.GeocoderTimeout = other.GeocoderTimeout
	}
	if other.TrustedSubnet != "" {
		c.TrustedSubnet = other.TrustedSubnet
	}
	if len(other.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = other.CORSAllowedOrigins
	}
	if other.APIBasePath != "" {
		c.APIBasePath = other.APIBasePath
	}
}

func (c *Config) overrideFromFlags(fromFlags *Config, setFlags map[string]bool) {
	if setFlags["a"] {
		c.RunAddr = fromFlags.RunAddr
	}
	if setFlags["l"] {
		c.LogLevel = fromFlags.LogLevel
	}
	if setFlags["d"] {
		c.DatabaseDSN = fromFlags.DatabaseDSN
	}
	if setFlags["f"] {
		c.DBFileName = fromFlags.DBFileName
	}
	if setFlags["k"] {
		c.TokenSigningKey = fromFlags.TokenSigningKey
	}
	if setFlags["t"] {
		c.TrustedSubnet = fromFlags.TrustedSubnet
	}
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func validateBase64Key(fieldLevel validator.FieldLevel) bool {
	key, err := base64.StdEncoding.DecodeString(fieldLevel.Field().String())

	return err == nil && len(key) >= 32
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("base64key", validateBase64Key)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}
