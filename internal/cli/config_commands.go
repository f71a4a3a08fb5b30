package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cl-exports configuration",
		Long: `Configuration management commands for cl-exports.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// configPath returns --config or the default location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for cl-exports.

The configuration is saved to ~/.config/commercelayer/config with 0600
permissions. Access tokens are never stored: the client id and secret are
used to request them.

Use --force to overwrite an existing configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			cfg, err := initConfig(newPrompter(cmd.InOrStdin(), out), out)
			if err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}

			GetLogger().Info().Str("path", path).Msg("Configuration saved")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Configuration saved to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// initConfig asks for the organization, credentials and optional proxy settings.
func initConfig(p *prompter, out io.Writer) (*config.Config, error) {
	cfg := config.NewConfig()

	fmt.Fprintln(out, "Commerce Layer Configuration Setup")
	fmt.Fprintln(out, "==================================")
	fmt.Fprintln(out)

	var err error
	if cfg.Organization, err = p.askRequired("Organization slug", ""); err != nil {
		return nil, err
	}
	if cfg.Domain, err = p.ask("Domain", cfg.Domain); err != nil {
		return nil, err
	}
	if cfg.ClientID, err = p.askRequired("Client ID", ""); err != nil {
		return nil, err
	}
	if cfg.ClientSecret, err = p.askSecret("Client secret", ""); err != nil {
		return nil, err
	}

	fmt.Fprintln(out)
	answer, err := p.ask("Configure proxy? [y/N]", "")
	if err != nil {
		return nil, err
	}
	if answer = strings.ToLower(answer); answer == "y" || answer == "yes" {
		fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
		if cfg.ProxyMode, err = p.ask("Proxy mode", "system"); err != nil {
			return nil, err
		}
		if cfg.ProxyMode != "no-proxy" {
			if cfg.ProxyHost, err = p.ask("Proxy host", ""); err != nil {
				return nil, err
			}
			port, err := p.ask("Proxy port", "8080")
			if err != nil {
				return nil, err
			}
			if cfg.ProxyPort, err = strconv.Atoi(port); err != nil || cfg.ProxyPort <= 0 {
				cfg.ProxyPort = 8080
			}
			if cfg.ProxyMode == "basic" || cfg.ProxyMode == "ntlm" {
				if cfg.ProxyUser, err = p.ask("Proxy user", ""); err != nil {
					return nil, err
				}
			}
		}
	}

	return cfg, nil
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file (~/.config/commercelayer/config)
  2. Environment variables (CL_CLI_ORGANIZATION, CL_CLI_DOMAIN, CL_CLI_CLIENT_ID, ...)
  3. Command-line flags (--organization, --domain, --client-id, ...)

Priority: flags > environment > config file > defaults`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			cfg.MergeWithFlags(currentOverrides())

			showConfig(cmd.OutOrStdout(), cfg, path)
			return nil
		},
	}
}

// showConfig prints cfg with every secret masked.
func showConfig(out io.Writer, cfg *config.Config, path string) {
	fmt.Fprintln(out, "Current Configuration")
	fmt.Fprintln(out, "=====================")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Organization:")
	fmt.Fprintf(out, "  Slug:          %s\n", cfg.Organization)
	fmt.Fprintf(out, "  Domain:        %s\n", cfg.Domain)
	fmt.Fprintf(out, "  API endpoint:  %s\n", cfg.APIBaseURL())
	fmt.Fprintf(out, "  Client ID:     %s\n", cfg.ClientID)
	fmt.Fprintf(out, "  Client secret: %s\n", mask(cfg.ClientSecret))
	fmt.Fprintf(out, "  Access token:  %s\n", mask(cfg.AccessToken))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "API Settings:")
	fmt.Fprintf(out, "  Page size:       %d\n", cfg.PageMaxSize)
	fmt.Fprintf(out, "  Burst limit:     %d requests / %ds\n", cfg.Budgets.Burst.MaxRequests, cfg.Budgets.Burst.WindowSeconds)
	fmt.Fprintf(out, "  Average limit:   %d requests / %ds\n", cfg.Budgets.Average.MaxRequests, cfg.Budgets.Average.WindowSeconds)
	fmt.Fprintf(out, "  Poll delay:      %s\n", cfg.Budgets.ComputeDelay())
	fmt.Fprintf(out, "  Request timeout: %s\n", cfg.RequestTimeout)
	fmt.Fprintf(out, "  HTTP retries:    %d\n", cfg.HTTPRetries)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Proxy Settings:")
	fmt.Fprintf(out, "  Proxy Mode: %s\n", cfg.ProxyMode)
	if cfg.ProxyHost != "" {
		fmt.Fprintf(out, "  Proxy Host: %s\n", cfg.ProxyHost)
		fmt.Fprintf(out, "  Proxy Port: %d\n", cfg.ProxyPort)
	}
	if cfg.ProxyUser != "" {
		fmt.Fprintf(out, "  Proxy User: %s\n", cfg.ProxyUser)
	}
	if cfg.NoProxy != "" {
		fmt.Fprintf(out, "  No Proxy:   %s\n", cfg.NoProxy)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Notifications: %t\n", cfg.NotificationsEnabled)
	fmt.Fprintf(out, "Export types:  %d configured\n", len(cfg.ExportTypes))
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Configuration file: %s\n", path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(out, "  (file does not exist - using defaults)")
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path, err := configPath()
			if err != nil {
				return err
			}
			if cfgFile == "" {
				fmt.Fprintln(out, "Default configuration path:")
			} else {
				fmt.Fprintln(out, "Configuration path (from --config flag):")
			}
			fmt.Fprintf(out, "  %s\n\n", path)

			if info, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status: File exists")
				fmt.Fprintf(out, "Size:   %d bytes\n", info.Size())
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Create a configuration file with: cl-exports config init")
			}
			return nil
		},
	}
}
