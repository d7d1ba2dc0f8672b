// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package acctportalconfig provides configuration parsing and validation for acctportal.
//
// Configuration is stored at ~/.config/acctportal/config.yaml (or
// $ACCTPORTAL_CONFIG_DIR/config.yaml). Secrets are never stored in the
// configuration file. Instead, the file names the environment variables that
// hold them.
package acctportalconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalpath"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalprovider"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalrecent"
	"github.com/bufdev/acctportal/internal/pkg/backoff"
	"github.com/bufdev/acctportal/internal/pkg/dataphile"
	"github.com/bufdev/acctportal/internal/standard/xos"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// DefaultListenAddress is the listen address used if listen_address is not set.
const DefaultListenAddress = ":8080"

// configTemplate is the default configuration file template with comments.
// yaml.v3 does not preserve comments, so we hardcode the template string.
const configTemplate = `# The configuration file version.
#
# Required. The only current valid version is v1.
version: v1
# The address the server listens on.
#
# Optional. Defaults to :8080.
listen_address: ":8080"
# A directory of localization tables that replaces the built-in tables.
#
# Optional. Must contain one <table>.yaml file for every table.
# catalog_dir: ~/acctportal/catalog
# The Dataphile endpoints, one per dealer.
#
# Required. Each password is read from the named environment variable.
dealers:
  - code: MLI
    url: https://dataphile.example.com/AccountService
    username: portal
    password_env: ACCTPORTAL_MLI_PASSWORD
# The clients allowed to call the API.
#
# Required for serve. Each secret is read from the named environment variable
# and compared against the x-api-secret header of requests with a matching
# x-api-id header.
api_clients:
  - id: mobile
    secret_env: ACCTPORTAL_MOBILE_SECRET
# Recent activity window.
#
# Optional. Both values default to 10.
# recent_activity:
#   max_records_per_account: 10
#   max_days_prior: 10
# Outbound request limits, applied per dealer.
#
# Optional. A requests_per_second of 0 disables rate limiting.
# provider:
#   requests_per_second: 5
#   burst: 5
#   max_attempts: 4
`

// ExternalConfig is the YAML-serializable configuration file structure.
type ExternalConfig struct {
	// Version is the configuration file version (must be "v1").
	Version string `yaml:"version"`
	// ListenAddress is the address the server listens on.
	ListenAddress string `yaml:"listen_address"`
	// CatalogDir is the optional directory of localization tables.
	CatalogDir string `yaml:"catalog_dir"`
	// Dealers is the list of dealer endpoints.
	Dealers []ExternalDealerConfig `yaml:"dealers"`
	// APIClients is the list of API clients.
	APIClients []ExternalAPIClientConfig `yaml:"api_clients"`
	// RecentActivity is the recent activity window.
	RecentActivity ExternalRecentActivityConfig `yaml:"recent_activity"`
	// Provider holds outbound request limits.
	Provider ExternalProviderConfig `yaml:"provider"`
}

// ExternalDealerConfig holds a dealer's Dataphile endpoint.
type ExternalDealerConfig struct {
	// Code is the dealer code used in requests.
	Code string `yaml:"code"`
	// URL is the Dataphile service URL.
	URL string `yaml:"url"`
	// Username is the service username.
	Username string `yaml:"username"`
	// PasswordEnv is the name of the environment variable holding the service password.
	PasswordEnv string `yaml:"password_env"`
}

// ExternalAPIClientConfig holds an API client's credentials.
type ExternalAPIClientConfig struct {
	// ID is the value of the x-api-id header.
	ID string `yaml:"id"`
	// SecretEnv is the name of the environment variable holding the client's secret.
	SecretEnv string `yaml:"secret_env"`
}

// ExternalRecentActivityConfig holds the recent activity window.
type ExternalRecentActivityConfig struct {
	MaxRecordsPerAccount int `yaml:"max_records_per_account"`
	MaxDaysPrior         int `yaml:"max_days_prior"`
}

// ExternalProviderConfig holds outbound request limits.
type ExternalProviderConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	MaxAttempts       int     `yaml:"max_attempts"`
}

// Config is the validated runtime configuration derived from the config file.
type Config struct {
	// ListenAddress is the address the server listens on.
	ListenAddress string
	// CatalogDirPath is the directory of localization tables, or empty for the built-in tables.
	CatalogDirPath string
	// DealerConfigs maps dealer codes to their endpoints.
	DealerConfigs map[string]DealerConfig
	// APIClientConfigs maps API client IDs to their credentials.
	APIClientConfigs map[string]APIClientConfig
	// RecentActivityWindow is the recent activity window.
	RecentActivityWindow acctportalrecent.Window
	// RequestsPerSecond is the per-dealer outbound request rate. Zero disables rate limiting.
	RequestsPerSecond float64
	// Burst is the per-dealer outbound request burst.
	Burst int
	// BackoffPolicy is the retry policy for outbound requests.
	BackoffPolicy backoff.Policy
}

// DealerConfig holds a dealer's Dataphile endpoint.
type DealerConfig struct {
	URL         string
	Username    string
	PasswordEnv string
}

// APIClientConfig holds an API client's credentials.
type APIClientConfig struct {
	SecretEnv string
}

// NewConfig validates an ExternalConfig and returns a runtime Config.
func NewConfig(externalConfig ExternalConfig) (*Config, error) {
	if externalConfig.Version != "v1" {
		return nil, fmt.Errorf("unsupported config version %q, must be v1", externalConfig.Version)
	}
	listenAddress := externalConfig.ListenAddress
	if listenAddress == "" {
		listenAddress = DefaultListenAddress
	}
	catalogDirPath, err := xos.ExpandHome(externalConfig.CatalogDir)
	if err != nil {
		return nil, err
	}
	if len(externalConfig.Dealers) == 0 {
		return nil, errors.New("at least one dealer is required")
	}
	dealerConfigs := make(map[string]DealerConfig, len(externalConfig.Dealers))
	for _, d := range externalConfig.Dealers {
		if d.Code == "" {
			return nil, errors.New("dealer code is required")
		}
		if _, ok := dealerConfigs[d.Code]; ok {
			return nil, fmt.Errorf("duplicate dealer code %q", d.Code)
		}
		parsedURL, err := url.Parse(d.URL)
		if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
			return nil, fmt.Errorf("dealer %q: url must be an absolute http or https URL, got %q", d.Code, d.URL)
		}
		dealerConfigs[d.Code] = DealerConfig{
			URL:         d.URL,
			Username:    d.Username,
			PasswordEnv: d.PasswordEnv,
		}
	}
	apiClientConfigs := make(map[string]APIClientConfig, len(externalConfig.APIClients))
	for _, c := range externalConfig.APIClients {
		if c.ID == "" {
			return nil, errors.New("api client id is required")
		}
		if c.SecretEnv == "" {
			return nil, fmt.Errorf("api client %q: secret_env is required", c.ID)
		}
		if _, ok := apiClientConfigs[c.ID]; ok {
			return nil, fmt.Errorf("duplicate api client id %q", c.ID)
		}
		apiClientConfigs[c.ID] = APIClientConfig{
			SecretEnv: c.SecretEnv,
		}
	}
	// Zero values select the defaults.
	window := acctportalrecent.DefaultWindow()
	if value := externalConfig.RecentActivity.MaxRecordsPerAccount; value != 0 {
		if value < 0 {
			return nil, fmt.Errorf("recent_activity.max_records_per_account must be positive, got %d", value)
		}
		window.MaxRecordsPerAccount = value
	}
	if value := externalConfig.RecentActivity.MaxDaysPrior; value != 0 {
		if value < 0 {
			return nil, fmt.Errorf("recent_activity.max_days_prior must be positive, got %d", value)
		}
		window.MaxDaysPrior = value
	}
	providerConfig := externalConfig.Provider
	if providerConfig.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("provider.requests_per_second must not be negative, got %v", providerConfig.RequestsPerSecond)
	}
	if providerConfig.Burst < 0 {
		return nil, fmt.Errorf("provider.burst must not be negative, got %d", providerConfig.Burst)
	}
	burst := providerConfig.Burst
	if burst == 0 {
		burst = 1
	}
	backoffPolicy := backoff.DefaultPolicy()
	if providerConfig.MaxAttempts != 0 {
		if providerConfig.MaxAttempts < 0 {
			return nil, fmt.Errorf("provider.max_attempts must be positive, got %d", providerConfig.MaxAttempts)
		}
		backoffPolicy.MaxAttempts = providerConfig.MaxAttempts
	}
	return &Config{
		ListenAddress:        listenAddress,
		CatalogDirPath:       catalogDirPath,
		DealerConfigs:        dealerConfigs,
		APIClientConfigs:     apiClientConfigs,
		RecentActivityWindow: window,
		RequestsPerSecond:    providerConfig.RequestsPerSecond,
		Burst:                burst,
		BackoffPolicy:        backoffPolicy,
	}, nil
}

// DealerEndpoints resolves the dealer passwords with getenv and returns the
// dealer endpoints, each with its own rate limiter.
//
// Returns an error if a named password environment variable is not set.
func (c *Config) DealerEndpoints(getenv func(string) string) (map[string]acctportalprovider.DealerEndpoint, error) {
	dealerEndpoints := make(map[string]acctportalprovider.DealerEndpoint, len(c.DealerConfigs))
	for code, dealerConfig := range c.DealerConfigs {
		var password string
		if dealerConfig.PasswordEnv != "" {
			password = getenv(dealerConfig.PasswordEnv)
			if password == "" {
				return nil, fmt.Errorf("dealer %q: environment variable %s is not set", code, dealerConfig.PasswordEnv)
			}
		}
		var limiter *rate.Limiter
		if c.RequestsPerSecond > 0 {
			limiter = rate.NewLimiter(rate.Limit(c.RequestsPerSecond), c.Burst)
		}
		dealerEndpoints[code] = acctportalprovider.DealerEndpoint{
			Endpoint: dataphile.Endpoint{
				URL:      dealerConfig.URL,
				Username: dealerConfig.Username,
				Password: password,
			},
			Limiter: limiter,
		}
	}
	return dealerEndpoints, nil
}

// APIClientSecrets resolves the API client secrets with getenv and returns a
// map from client ID to secret.
//
// Returns an error if a named secret environment variable is not set.
func (c *Config) APIClientSecrets(getenv func(string) string) (map[string]string, error) {
	apiClientSecrets := make(map[string]string, len(c.APIClientConfigs))
	for id, apiClientConfig := range c.APIClientConfigs {
		secret := getenv(apiClientConfig.SecretEnv)
		if secret == "" {
			return nil, fmt.Errorf("api client %q: environment variable %s is not set", id, apiClientConfig.SecretEnv)
		}
		apiClientSecrets[id] = secret
	}
	return apiClientSecrets, nil
}

// ReadConfig reads and validates the configuration file from the given config directory.
// Returns a clear error message directing users to run "acctportal config init" if the file is missing.
func ReadConfig(configDirPath string) (*Config, error) {
	filePath := acctportalpath.ConfigFilePath(configDirPath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found at %s, run \"acctportal config init\" to create one", filePath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var externalConfig ExternalConfig
	if err := unmarshalYAMLStrict(data, &externalConfig); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
	}
	config, err := NewConfig(externalConfig)
	if err != nil {
		return nil, fmt.Errorf("validating config file %s: %w", filePath, err)
	}
	return config, nil
}

// InitConfig creates a new configuration file with a documented template.
// Creates the config directory if it does not exist.
// Returns the path to the created file, or an error if the file already exists.
func InitConfig(configDirPath string) (string, error) {
	filePath := acctportalpath.ConfigFilePath(configDirPath)
	if _, err := os.Stat(filePath); err == nil {
		return "", fmt.Errorf("configuration file already exists: %s", filePath)
	}
	if err := os.MkdirAll(configDirPath, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if err := xos.WriteFileAtomic(filePath, []byte(configTemplate), 0o600); err != nil {
		return "", err
	}
	return filePath, nil
}

// ValidateConfig reads and validates the configuration file from the given config directory.
func ValidateConfig(configDirPath string) error {
	_, err := ReadConfig(configDirPath)
	return err
}

// *** PRIVATE ***

// unmarshalYAMLStrict unmarshals the data as YAML with strict field checking.
// If the data length is 0, this is a no-op.
func unmarshalYAMLStrict(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
	// Reject unknown fields.
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
