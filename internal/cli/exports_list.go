package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/constants"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/export"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/output"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/progress"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/validation"
)

func newListCmd() *cobra.Command {
	var (
		opts    validation.ListOptions
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"exports", "exp:list"},
		Short:   "List all the created exports",
		Long: `List the exports of the organization, newest first.

Without --all or --limit the most recent 25 exports are shown. At most 1,000
exports are ever fetched.

Examples:
  cl-exports list
  cl-exports list -t orders -s completed
  cl-exports list -A`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.LimitSet = cmd.Flags().Changed("limit")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := validation.ValidateList(opts, cfg.ExportTypes, cfg.ExportStatuses); err != nil {
				return err
			}

			ctx := commandContext(cmd)
			s, err := newSession(ctx, cfg)
			if err != nil {
				return err
			}
			return runList(ctx, s, opts, jsonOut, newTerminal(cmd))
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.All, "all", "A", false, "show all exports instead of the first 25 only")
	f.StringVarP(&opts.Type, "type", "t", "", "the type of resource exported")
	f.StringVarP(&opts.Status, "status", "s", "", "the export job status")
	f.IntVarP(&opts.Limit, "limit", "l", 0, "limit number of exports in output")
	f.BoolVar(&jsonOut, "json", false, "print the exports as JSON")
	cmd.MarkFlagsMutuallyExclusive("all", "limit")

	return cmd
}

// runList fetches the exports and prints them as a table with a footer, or as JSON.
func runList(ctx context.Context, s *session, opts validation.ListOptions, jsonOut bool, ui terminal) error {
	log := GetLogger()

	if err := validation.CheckApplication(s.token.Claims, constants.ApplicationKindIntegration, constants.ApplicationKindCLI); err != nil {
		return err
	}

	bar := progress.NewPageBar(ui.errOut, ui.interactive && !jsonOut)
	pager := export.NewPager(s.client)
	pager.MaxPageSize = s.cfg.PageMaxSize
	pager.OnPage = func(fetched, limit, total int) {
		log.Debug().Int("fetched", fetched).Int("limit", limit).Int("total", total).Msg("Fetched exports page")
		bar.Update(fetched, limit, total)
	}

	prevOutput := log.Output()
	log.SetOutput(bar.Writer())
	coll, err := pager.Collect(ctx, export.Query{
		Filters:  opts.Filters(),
		PageSize: s.cfg.PageMaxSize,
		Limit:    opts.Limit,
		All:      opts.All,
	})
	bar.Done()
	log.SetOutput(prevOutput)
	if err != nil {
		return fmt.Errorf("failed to list exports: %w", err)
	}

	if jsonOut {
		enc := json.NewEncoder(ui.out)
		enc.SetIndent("", "  ")
		return enc.Encode(coll.Items)
	}

	fmt.Fprintln(ui.out)
	if len(coll.Items) == 0 {
		fmt.Fprintln(ui.out, "No exports found")
		fmt.Fprintln(ui.out)
		return nil
	}

	if err := output.RenderExportsTable(ui.out, coll.Items, ui.interactive); err != nil {
		return err
	}
	footer := output.Footer{
		Displayed: coll.Fetched,
		Total:     coll.Total,
		All:       opts.All,
		Limit:     opts.Limit,
	}
	if err := output.WriteFooter(ui.out, footer, ui.interactive); err != nil {
		return err
	}
	fmt.Fprintln(ui.out)
	return nil
}
