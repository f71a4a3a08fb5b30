// Package cli provides the command-line interface for cl-exports.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/config"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/logging"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/version"
)

var (
	// Global flags
	cfgFile      string
	organization string
	domain       string
	clientID     string
	clientSecret string
	accessToken  string
	verbose      bool
	debug        bool
	logFile      string

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cl-exports",
		Short: "Create and list Commerce Layer exports",
		Long: `cl-exports ` + version.Version + ` - Built: ` + version.BuildTime + `
Export resources from a Commerce Layer organization.

  create  - start an export job, follow it to the end and save the file
  list    - show previous export jobs

Credentials come from flags, CL_CLI_* environment variables or the config file
(see 'cl-exports config init').`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logFile != "" {
				if err := config.EnsureLogDirectory(logFile); err != nil {
					return err
				}
			}
			logger = logging.NewLogger(logging.Options{
				Console: cmd.ErrOrStderr(),
				LogFile: logFile,
			})
			if verbose || debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
			logger.Debug().Str("command", cmd.CommandPath()).Msg("Starting")
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	flags.StringVarP(&organization, "organization", "o", "", "Organization slug")
	flags.StringVarP(&domain, "domain", "d", "", "API domain (default commercelayer.io)")
	flags.StringVar(&clientID, "client-id", "", "Integration client id")
	flags.StringVar(&clientSecret, "client-secret", "", "Integration client secret")
	flags.StringVar(&accessToken, "access-token", "", "Access token (a new one is requested when omitted)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	flags.BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")
	flags.StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")
	flags.Lookup("log-file").NoOptDefVal = config.DefaultLogFile()

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := executeRoot(rootContext, rootCmd)

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// executeRoot runs rootCmd and closes the log file whether or not the command failed.
// Cobra skips post-run hooks after an error.
func executeRoot(ctx context.Context, rootCmd *cobra.Command) error {
	defer closeLogger()
	return rootCmd.ExecuteContext(ctx)
}

func closeLogger() {
	if logger == nil {
		return
	}
	if err := logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
	logger = nil
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd(rootCmd))
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// commandContext prefers the context cobra was executed with.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return GetContext()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cl-exports %s (built %s)\n", version.Version, version.BuildTime)
			return err
		},
	}
}

func newCompletionCmd(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate a shell completion script",
		Long: `Generate a shell completion script for cl-exports.

  bash:       source <(cl-exports completion bash)
  zsh:        cl-exports completion zsh > "${fpath[1]}/_cl-exports"
  fish:       cl-exports completion fish | source
  powershell: cl-exports completion powershell | Out-String | Invoke-Expression`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			default:
				return rootCmd.GenPowerShellCompletion(out)
			}
		},
	}
}
