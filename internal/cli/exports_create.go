package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/constants"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/export"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/http"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/models"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/notify"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/output"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/progress"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/validation"
)

// terminal is where a command writes and whether it may animate.
type terminal struct {
	out         io.Writer
	errOut      io.Writer
	interactive bool
}

func newTerminal(cmd *cobra.Command) terminal {
	return terminal{
		out:         cmd.OutOrStdout(),
		errOut:      cmd.ErrOrStderr(),
		interactive: progress.IsTerminal(os.Stderr),
	}
}

func newCreateCmd() *cobra.Command {
	var (
		opts    validation.CreateOptions
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"export", "exp:create"},
		Short:   "Create a new export",
		Long: `Create a new export job, follow it until it finishes and save the exported file.

Examples:
  cl-exports create -t orders -x ./orders.json
  cl-exports create -t skus -C -X ./exports/
  cl-exports create -t orders -i line_items -w number_start=100,status_eq=placed -P -x orders.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := validation.ValidateCreate(opts, cfg.ExportTypes); err != nil {
				return err
			}

			ctx := commandContext(cmd)
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			s, err := newSession(ctx, cfg)
			if err != nil {
				return err
			}
			notifier := notify.NewNotifier(opts.Notify && cfg.NotificationsEnabled, GetLogger())
			return runCreate(ctx, s, opts, newTerminal(cmd), notifier)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Type, "type", "t", "", "the type of resource being exported")
	f.StringArrayVarP(&opts.Includes, "include", "i", nil, "comma separated resources to include")
	f.StringArrayVarP(&opts.Where, "where", "w", nil, "comma separated list of query filters")
	f.BoolVarP(&opts.DryData, "dry-data", "D", false, "skip redundant attributes")
	f.StringVarP(&opts.Format, "format", "F", validation.FormatJSON, "export file format (csv or json)")
	f.BoolVarP(&opts.CSV, "csv", "C", false, "export data in CSV format")
	f.StringVarP(&opts.Save, "save", "x", "", "save command output to file")
	f.StringVarP(&opts.SavePath, "save-path", "X", "", "save command output to file and create missing path directories")
	f.BoolVarP(&opts.Notify, "notify", "N", false, "force system notification when export has finished")
	f.BoolVarP(&opts.Blind, "blind", "b", false, "execute in blind mode without showing the progress monitor")
	f.BoolVarP(&opts.Pretty, "pretty", "P", false, "prettify json output format")
	f.DurationVar(&timeout, "timeout", 0, "give up following the export after this long (0 = no limit)")
	_ = f.MarkHidden("notify")
	_ = cmd.MarkFlagRequired("type")
	cmd.MarkFlagsMutuallyExclusive("save", "save-path")
	cmd.MarkFlagsMutuallyExclusive("csv", "format")

	return cmd
}

// runCreate submits the export, follows it to a terminal status and saves the file.
func runCreate(ctx context.Context, s *session, opts validation.CreateOptions, ui terminal, notifier *notify.Notifier) error {
	log := GetLogger()

	if err := validation.CheckApplication(s.token.Claims, constants.ApplicationKindIntegration, constants.ApplicationKindCLI); err != nil {
		return err
	}

	filters, err := validation.ParseWhere(opts.Where)
	if err != nil {
		return err
	}
	spec := models.ExportCreate{
		ResourceType: opts.Type,
		Format:       opts.EffectiveFormat(),
		DryData:      opts.DryData,
		Includes:     validation.ParseIncludes(opts.Includes),
		Filters:      filters,
	}
	desc := output.Humanize(opts.Type)
	color := ui.interactive

	var spinner *progress.Spinner
	poller := export.NewPoller(s.client, s.tokens, s.token, s.cfg.Budgets)
	poller.OnStatus = func(job *models.Export) {
		log.Debug().Str("export_id", job.ID).Str("status", job.Status).Msg("Export status")
		if spinner != nil {
			spinner.Describe(output.Humanize(job.Status))
		}
	}

	started := func(job *models.Export) {
		log.Info().Str("export_id", job.ID).Str("resource_type", job.ResourceType).Int("records", job.RecordsCount).Msg("Export started")
		fmt.Fprintln(ui.out, output.Colorizer(color).Color("Started export [light_yellow]"+job.ID))
		spinner = progress.NewSpinner(ui.errOut, "Exporting "+desc, ui.interactive && !opts.Blind)
		status := job.Status
		if status == "" {
			status = "waiting"
		}
		spinner.Describe(output.Humanize(status))
	}

	job, err := export.Submit(ctx, poller, spec, started)
	if spinner != nil {
		spinner.Stop()
	}
	if errors.Is(err, export.ErrNoRecords) {
		fmt.Fprintln(ui.out, "\nNo records found")
		return nil
	}
	if err != nil {
		var failed *export.FailedError
		if errors.As(err, &failed) {
			notifier.ExportFailed(failed.ID, err)
		}
		return err
	}

	fmt.Fprintln(ui.out, output.Colorizer(color).Color(fmt.Sprintf("\nExported [light_yellow]%s[reset] %s", output.FormatCount(job.RecordsCount), desc)))

	downloader, err := http.NewDownloadClient(s.cfg)
	if err != nil {
		return fmt.Errorf("failed to configure download client: %w", err)
	}
	path, err := output.SaveExport(ctx, downloader, job, output.SaveOptions{
		Path:       opts.OutputPath(),
		CreateDirs: opts.SavePath != "",
		Pretty:     opts.Pretty,
	})
	if err != nil {
		return err
	}
	log.Info().Str("export_id", job.ID).Str("path", path).Msg("Export saved")
	fmt.Fprintf(ui.out, "Export saved to %s\n", path)

	finished := fmt.Sprintf("Export of %d %s is finished!", job.RecordsCount, desc)
	if opts.Blind {
		fmt.Fprintln(ui.out, finished)
	} else {
		notifier.ExportFinished(finished, path)
	}
	return nil
}
