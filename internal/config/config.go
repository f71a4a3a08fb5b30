// Package config provides configuration management for cl-exports.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/ini.v1"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/constants"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/ratelimit"
)

// Config enumerates every option the export commands recognize.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\commercelayer\config
//   - Unix: ~/.config/commercelayer/config
//
// INI format:
//
//	[organization]
//	slug = my-brand
//	domain = commercelayer.io
//	client_id = <integration client id>
//	client_secret = <integration client secret>
//
//	[api]
//	page_max_size = 25
//	requests_max_num_burst = 50
//	requests_max_secs_burst = 10
//	requests_max_num_avg = 200
//	requests_max_secs_avg = 60
//	request_timeout_seconds = 60
//	http_retries = 0
//
//	[proxy]
//	mode = no-proxy
//
//	[exports]
//	types = orders,skus,...
//	statuses = pending,in_progress,interrupted,completed
//
//	[notifications]
//	enabled = true
type Config struct {
	// Organization and credentials
	Organization string // organization slug
	Domain       string
	ClientID     string
	ClientSecret string
	AccessToken  string // never written to the config file

	// BaseURL overrides https://{slug}.{domain} (mostly for staging and tests)
	BaseURL string

	// API limits
	PageMaxSize    int
	Budgets        ratelimit.Budgets
	RequestTimeout time.Duration
	HTTPRetries    int // retryablehttp RetryMax; 0 keeps failures fatal

	// Proxy settings
	ProxyMode     string // "no-proxy", "ntlm", "basic", "system"
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string // runtime only, never saved
	NoProxy       string // Comma-separated list of hosts to bypass proxy
	ProxyWarmup   bool

	// Closed sets the export commands validate against
	ExportTypes    []string
	ExportStatuses []string

	// Desktop notifications
	NotificationsEnabled bool
}

// Validation errors
var (
	ErrMissingOrganization = errors.New("organization slug is required")
	ErrMissingDomain       = errors.New("domain is required")
	ErrMissingCredentials  = errors.New("an access token or client id and secret are required")
	ErrInvalidPageSize     = errors.New("page_max_size must be between 1 and 25")
	ErrInvalidHTTPRetries  = errors.New("http_retries must not be negative")
)

// Environment variables read by MergeWithFlags
const (
	EnvOrganization = "CL_CLI_ORGANIZATION"
	EnvDomain       = "CL_CLI_DOMAIN"
	EnvClientID     = "CL_CLI_CLIENT_ID"
	EnvClientSecret = "CL_CLI_CLIENT_SECRET"
	EnvAccessToken  = "CL_CLI_ACCESS_TOKEN"
	EnvBaseURL      = "CL_CLI_BASE_URL"
)

// DefaultConfigPath returns the default path for the config file.
// - Windows: %USERPROFILE%\.config\commercelayer\config
// - Unix: ~/.config/commercelayer/config
func DefaultConfigPath() (string, error) {
	var configDir string

	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		configDir = filepath.Join(userProfile, ".config", "commercelayer")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "commercelayer")
	}

	return filepath.Join(configDir, "config"), nil
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Domain:               constants.DefaultDomain,
		PageMaxSize:          constants.PageMaxSize,
		Budgets:              ratelimit.DefaultBudgets(),
		RequestTimeout:       constants.HTTPRequestTimeout,
		ProxyMode:            "no-proxy",
		ExportTypes:          append([]string(nil), DefaultExportTypes...),
		ExportStatuses:       append([]string(nil), DefaultExportStatuses...),
		NotificationsEnabled: true,
	}
}

// Load loads configuration from an INI file.
// If the file doesn't exist, returns a config with default values and no error.
// If the file exists but is invalid, returns an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, nil // Return defaults if we can't determine path
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	org := iniFile.Section("organization")
	cfg.Organization = org.Key("slug").String()
	cfg.Domain = org.Key("domain").MustString(cfg.Domain)
	cfg.ClientID = org.Key("client_id").String()
	cfg.ClientSecret = org.Key("client_secret").String()
	if org.HasKey("access_token") {
		// SECURITY: access tokens are short-lived and belong in flags or env
		log.Warn().Msg("access_token in config file is ignored - use --access-token or " + EnvAccessToken)
	}

	api := iniFile.Section("api")
	cfg.BaseURL = api.Key("base_url").String()
	cfg.PageMaxSize = api.Key("page_max_size").MustInt(cfg.PageMaxSize)
	cfg.Budgets.Burst.MaxRequests = api.Key("requests_max_num_burst").MustInt(cfg.Budgets.Burst.MaxRequests)
	cfg.Budgets.Burst.WindowSeconds = api.Key("requests_max_secs_burst").MustInt(cfg.Budgets.Burst.WindowSeconds)
	cfg.Budgets.Average.MaxRequests = api.Key("requests_max_num_avg").MustInt(cfg.Budgets.Average.MaxRequests)
	cfg.Budgets.Average.WindowSeconds = api.Key("requests_max_secs_avg").MustInt(cfg.Budgets.Average.WindowSeconds)
	if secs := api.Key("request_timeout_seconds").MustInt(0); secs > 0 {
		cfg.RequestTimeout = time.Duration(secs) * time.Second
	}
	cfg.HTTPRetries = api.Key("http_retries").MustInt(cfg.HTTPRetries)

	proxy := iniFile.Section("proxy")
	cfg.ProxyMode = proxy.Key("mode").MustString(cfg.ProxyMode)
	cfg.ProxyHost = proxy.Key("host").String()
	cfg.ProxyPort = proxy.Key("port").MustInt(0)
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()
	cfg.ProxyWarmup = proxy.Key("warmup").MustBool(false)

	exports := iniFile.Section("exports")
	if types := splitList(exports.Key("types").String()); len(types) > 0 {
		cfg.ExportTypes = types
	}
	if statuses := splitList(exports.Key("statuses").String()); len(statuses) > 0 {
		cfg.ExportStatuses = statuses
	}

	cfg.NotificationsEnabled = iniFile.Section("notifications").Key("enabled").MustBool(true)

	return cfg, nil
}

// Save saves configuration to an INI file.
// Creates parent directories if they don't exist.
// The client secret is stored in the file - the file is written with 0600 permissions.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	org, err := iniFile.NewSection("organization")
	if err != nil {
		return fmt.Errorf("failed to create organization section: %w", err)
	}
	org.Key("slug").SetValue(cfg.Organization)
	org.Key("domain").SetValue(cfg.Domain)
	org.Key("client_id").SetValue(cfg.ClientID)
	org.Key("client_secret").SetValue(cfg.ClientSecret)

	api, err := iniFile.NewSection("api")
	if err != nil {
		return fmt.Errorf("failed to create api section: %w", err)
	}
	if cfg.BaseURL != "" {
		api.Key("base_url").SetValue(cfg.BaseURL)
	}
	api.Key("page_max_size").SetValue(strconv.Itoa(cfg.PageMaxSize))
	api.Key("requests_max_num_burst").SetValue(strconv.Itoa(cfg.Budgets.Burst.MaxRequests))
	api.Key("requests_max_secs_burst").SetValue(strconv.Itoa(cfg.Budgets.Burst.WindowSeconds))
	api.Key("requests_max_num_avg").SetValue(strconv.Itoa(cfg.Budgets.Average.MaxRequests))
	api.Key("requests_max_secs_avg").SetValue(strconv.Itoa(cfg.Budgets.Average.WindowSeconds))
	api.Key("request_timeout_seconds").SetValue(strconv.Itoa(int(cfg.RequestTimeout / time.Second)))
	api.Key("http_retries").SetValue(strconv.Itoa(cfg.HTTPRetries))

	proxy, err := iniFile.NewSection("proxy")
	if err != nil {
		return fmt.Errorf("failed to create proxy section: %w", err)
	}
	// proxy password intentionally omitted for security
	proxy.Key("mode").SetValue(cfg.ProxyMode)
	proxy.Key("host").SetValue(cfg.ProxyHost)
	proxy.Key("port").SetValue(strconv.Itoa(cfg.ProxyPort))
	proxy.Key("user").SetValue(cfg.ProxyUser)
	proxy.Key("no_proxy").SetValue(cfg.NoProxy)
	proxy.Key("warmup").SetValue(strconv.FormatBool(cfg.ProxyWarmup))

	exports, err := iniFile.NewSection("exports")
	if err != nil {
		return fmt.Errorf("failed to create exports section: %w", err)
	}
	exports.Key("types").SetValue(strings.Join(cfg.ExportTypes, ","))
	exports.Key("statuses").SetValue(strings.Join(cfg.ExportStatuses, ","))

	notifications, err := iniFile.NewSection("notifications")
	if err != nil {
		return fmt.Errorf("failed to create notifications section: %w", err)
	}
	notifications.Key("enabled").SetValue(strconv.FormatBool(cfg.NotificationsEnabled))

	// Use temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Overrides carries the values given on the command line. Empty fields are ignored.
type Overrides struct {
	Organization string
	Domain       string
	ClientID     string
	ClientSecret string
	AccessToken  string
}

// MergeWithFlags merges config with environment variables and command-line flags.
// Priority (highest to lowest): flags > environment > config file > defaults
func (c *Config) MergeWithFlags(o Overrides) {
	apply := func(dst *string, env string, flag string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
		if flag != "" {
			*dst = flag
		}
	}

	apply(&c.Organization, EnvOrganization, o.Organization)
	apply(&c.Domain, EnvDomain, o.Domain)
	apply(&c.ClientID, EnvClientID, o.ClientID)
	apply(&c.ClientSecret, EnvClientSecret, o.ClientSecret)
	apply(&c.AccessToken, EnvAccessToken, o.AccessToken)
	apply(&c.BaseURL, EnvBaseURL, "")

	if envProxy := os.Getenv("HTTPS_PROXY"); envProxy != "" && c.ProxyHost == "" {
		c.parseProxyURL(envProxy)
	}

	c.Domain = strings.TrimSuffix(strings.TrimPrefix(c.Domain, "https://"), "/")
}

// parseProxyURL parses a proxy URL from environment variable
func (c *Config) parseProxyURL(proxyURL string) {
	proxyURL = strings.TrimPrefix(proxyURL, "http://")
	proxyURL = strings.TrimPrefix(proxyURL, "https://")

	parts := strings.Split(proxyURL, ":")
	if len(parts) >= 1 {
		c.ProxyHost = parts[0]
	}
	if len(parts) >= 2 {
		if port, err := strconv.Atoi(strings.TrimSuffix(parts[1], "/")); err == nil {
			c.ProxyPort = port
		}
	}
	if c.ProxyHost != "" && c.ProxyMode == "no-proxy" {
		c.ProxyMode = "system"
	}
}

// APIBaseURL returns the organization's API endpoint, e.g. https://my-brand.commercelayer.io
func (c *Config) APIBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.%s", c.Organization, c.Domain)
}

// HasClientCredentials reports whether a new access token can be requested.
func (c *Config) HasClientCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Validate checks if the configuration is usable for API calls.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Organization) == "" && c.BaseURL == "" {
		return ErrMissingOrganization
	}
	if strings.TrimSpace(c.Domain) == "" && c.BaseURL == "" {
		return ErrMissingDomain
	}
	if c.AccessToken == "" && !c.HasClientCredentials() {
		return ErrMissingCredentials
	}
	if c.PageMaxSize < 1 || c.PageMaxSize > constants.PageMaxSize {
		return ErrInvalidPageSize
	}
	if c.HTTPRetries < 0 {
		return ErrInvalidHTTPRetries
	}
	return c.Budgets.Validate()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
