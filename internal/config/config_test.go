package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Domain != "commercelayer.io" {
		t.Errorf("expected default Domain to be commercelayer.io, got %s", cfg.Domain)
	}
	if cfg.PageMaxSize != 25 {
		t.Errorf("expected default PageMaxSize to be 25, got %d", cfg.PageMaxSize)
	}
	if cfg.HTTPRetries != 0 {
		t.Errorf("expected default HTTPRetries to be 0, got %d", cfg.HTTPRetries)
	}
	if cfg.ProxyMode != "no-proxy" {
		t.Errorf("expected default ProxyMode to be no-proxy, got %s", cfg.ProxyMode)
	}
	if got := cfg.Budgets.ComputeDelay(); got != 300*time.Millisecond {
		t.Errorf("expected default poll delay of 300ms, got %v", got)
	}
	if !cfg.NotificationsEnabled {
		t.Error("expected notifications to be enabled by default")
	}
	if !slices.Contains(cfg.ExportTypes, "orders") || slices.Contains(cfg.ExportTypes, "widgets") {
		t.Error("unexpected default export type set")
	}
}

func TestNewConfigCopiesDefaultSets(t *testing.T) {
	cfg := NewConfig()
	cfg.ExportTypes[0] = "mutated"

	if DefaultExportTypes[0] == "mutated" {
		t.Fatal("NewConfig must not alias DefaultExportTypes")
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config")

	cfg := NewConfig()
	cfg.Organization = "my-brand"
	cfg.ClientID = "client-id"
	cfg.ClientSecret = "client-secret"
	cfg.AccessToken = "should-not-be-saved"
	cfg.PageMaxSize = 10
	cfg.Budgets.Burst.MaxRequests = 5
	cfg.Budgets.Burst.WindowSeconds = 2
	cfg.RequestTimeout = 30 * time.Second
	cfg.HTTPRetries = 2
	cfg.ProxyMode = "basic"
	cfg.ProxyHost = "proxy.example.com"
	cfg.ProxyPort = 8080
	cfg.ProxyUser = "alice"
	cfg.ProxyPassword = "should-not-be-saved"
	cfg.ExportTypes = []string{"orders", "skus"}
	cfg.NotificationsEnabled = false

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Organization != "my-brand" {
		t.Errorf("Organization mismatch: got %s", loaded.Organization)
	}
	if loaded.ClientID != "client-id" || loaded.ClientSecret != "client-secret" {
		t.Errorf("credentials mismatch: got %s/%s", loaded.ClientID, loaded.ClientSecret)
	}
	if loaded.AccessToken != "" {
		t.Error("access token must not be persisted")
	}
	if loaded.ProxyPassword != "" {
		t.Error("proxy password must not be persisted")
	}
	if loaded.PageMaxSize != 10 {
		t.Errorf("PageMaxSize mismatch: got %d", loaded.PageMaxSize)
	}
	if loaded.Budgets.Burst.MaxRequests != 5 || loaded.Budgets.Burst.WindowSeconds != 2 {
		t.Errorf("Burst budget mismatch: got %+v", loaded.Budgets.Burst)
	}
	if loaded.Budgets.Average != cfg.Budgets.Average {
		t.Errorf("Average budget mismatch: got %+v", loaded.Budgets.Average)
	}
	if loaded.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout mismatch: got %v", loaded.RequestTimeout)
	}
	if loaded.HTTPRetries != 2 {
		t.Errorf("HTTPRetries mismatch: got %d", loaded.HTTPRetries)
	}
	if loaded.ProxyMode != "basic" || loaded.ProxyHost != "proxy.example.com" || loaded.ProxyPort != 8080 {
		t.Errorf("proxy mismatch: got %s %s:%d", loaded.ProxyMode, loaded.ProxyHost, loaded.ProxyPort)
	}
	if len(loaded.ExportTypes) != 2 || loaded.ExportTypes[1] != "skus" {
		t.Errorf("ExportTypes mismatch: got %v", loaded.ExportTypes)
	}
	if loaded.NotificationsEnabled {
		t.Error("NotificationsEnabled should be false")
	}
}

func TestSave_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permissions are not enforced on windows")
	}
	configPath := filepath.Join(t.TempDir(), "config")

	if err := Save(NewConfig(), configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions, got %o", perm)
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dir", "config")

	if err := Save(NewConfig(), configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Errorf("config file not created in nested directory: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.PageMaxSize != 25 {
		t.Errorf("expected defaults, got PageMaxSize %d", cfg.PageMaxSize)
	}
}

func TestLoad_InvalidINI(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(configPath, []byte("[organization\nslug"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for malformed INI")
	}
}

func TestLoad_PartialConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")
	content := "[organization]\nslug = acme\n\n[exports]\nstatuses = completed, interrupted\n"
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Organization != "acme" {
		t.Errorf("expected slug acme, got %s", cfg.Organization)
	}
	if cfg.Domain != "commercelayer.io" {
		t.Errorf("expected default domain, got %s", cfg.Domain)
	}
	if len(cfg.ExportStatuses) != 2 || cfg.ExportStatuses[0] != "completed" {
		t.Errorf("expected trimmed status list, got %v", cfg.ExportStatuses)
	}
	if len(cfg.ExportTypes) != len(DefaultExportTypes) {
		t.Errorf("expected default export types, got %d", len(cfg.ExportTypes))
	}
}

func TestMergeWithFlags(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		flags    Overrides
		wantOrg  string
		wantID   string
		wantTok  string
		wantHost string
	}{
		{
			name:    "file values kept",
			wantOrg: "from-file",
			wantID:  "file-id",
		},
		{
			name:    "env overrides file",
			env:     map[string]string{EnvOrganization: "from-env", EnvAccessToken: "env-token"},
			wantOrg: "from-env",
			wantID:  "file-id",
			wantTok: "env-token",
		},
		{
			name:    "flags override env",
			env:     map[string]string{EnvOrganization: "from-env", EnvClientID: "env-id"},
			flags:   Overrides{Organization: "from-flag", ClientID: "flag-id"},
			wantOrg: "from-flag",
			wantID:  "flag-id",
		},
		{
			name:     "HTTPS_PROXY fills empty proxy host",
			env:      map[string]string{"HTTPS_PROXY": "http://proxy.corp:3128"},
			wantOrg:  "from-file",
			wantID:   "file-id",
			wantHost: "proxy.corp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{EnvOrganization, EnvDomain, EnvClientID, EnvClientSecret, EnvAccessToken, EnvBaseURL, "HTTPS_PROXY"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := NewConfig()
			cfg.Organization = "from-file"
			cfg.ClientID = "file-id"
			cfg.MergeWithFlags(tt.flags)

			if cfg.Organization != tt.wantOrg {
				t.Errorf("Organization = %s, want %s", cfg.Organization, tt.wantOrg)
			}
			if cfg.ClientID != tt.wantID {
				t.Errorf("ClientID = %s, want %s", cfg.ClientID, tt.wantID)
			}
			if cfg.AccessToken != tt.wantTok {
				t.Errorf("AccessToken = %s, want %s", cfg.AccessToken, tt.wantTok)
			}
			if cfg.ProxyHost != tt.wantHost {
				t.Errorf("ProxyHost = %s, want %s", cfg.ProxyHost, tt.wantHost)
			}
			if tt.wantHost != "" && (cfg.ProxyPort != 3128 || cfg.ProxyMode != "system") {
				t.Errorf("expected system proxy on port 3128, got %s:%d", cfg.ProxyMode, cfg.ProxyPort)
			}
		})
	}
}

func TestAPIBaseURL(t *testing.T) {
	cfg := NewConfig()
	cfg.Organization = "my-brand"
	if got := cfg.APIBaseURL(); got != "https://my-brand.commercelayer.io" {
		t.Errorf("APIBaseURL() = %s", got)
	}

	cfg.BaseURL = "http://127.0.0.1:8080/"
	if got := cfg.APIBaseURL(); got != "http://127.0.0.1:8080" {
		t.Errorf("APIBaseURL() with override = %s", got)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := NewConfig()
		cfg.Organization = "acme"
		cfg.ClientID = "id"
		cfg.ClientSecret = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid client credentials", func(*Config) {}, nil},
		{"valid access token only", func(c *Config) { c.ClientID, c.ClientSecret, c.AccessToken = "", "", "tok" }, nil},
		{"missing organization", func(c *Config) { c.Organization = "" }, ErrMissingOrganization},
		{"base url replaces organization", func(c *Config) { c.Organization, c.BaseURL = "", "http://localhost" }, nil},
		{"missing domain", func(c *Config) { c.Domain = " " }, ErrMissingDomain},
		{"missing credentials", func(c *Config) { c.ClientSecret = "" }, ErrMissingCredentials},
		{"page size too large", func(c *Config) { c.PageMaxSize = 26 }, ErrInvalidPageSize},
		{"page size zero", func(c *Config) { c.PageMaxSize = 0 }, ErrInvalidPageSize},
		{"negative retries", func(c *Config) { c.HTTPRetries = -1 }, ErrInvalidHTTPRetries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("invalid budget", func(t *testing.T) {
		cfg := valid()
		cfg.Budgets.Average.WindowSeconds = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected budget validation error")
		}
	})
}

func TestDefaultLogFile(t *testing.T) {
	if filepath.Base(DefaultLogFile()) != "cl-exports.log" {
		t.Errorf("unexpected log file name: %s", DefaultLogFile())
	}
}
