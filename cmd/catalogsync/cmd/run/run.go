// Package run implements the run command: load the source exports,
// reconcile them into match groups, detect discrepancies, and render a
// report.
package run

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/catalogsync/catalogsync"
	"github.com/catalogsync/catalogsync/internal/report"
	"github.com/catalogsync/catalogsync/internal/sources"
	"github.com/catalogsync/catalogsync/pkg/errors"
	"github.com/catalogsync/catalogsync/pkg/products"
)

// AppContext defines the interface that the run command needs from the
// app. Commands accept this rather than the concrete App type so they
// can be tested with mock implementations.
type AppContext interface {
	Pipeline() (catalogsync.Catalogsync, error)
	PipelineWithOptions(...catalogsync.Option) (catalogsync.Catalogsync, error)
	Logger() *zerolog.Logger
	OutputFormat() string
	SourcePaths() (inventory, storefront, sheet string)
}

// NewCommand creates the run command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	var (
		inventoryPath  string
		storefrontPath string
		sheetPath      string
		threshold      float64
		priceTolerance float64
		priceCritical  float64
		workers        int
		outPath        string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile source exports and report discrepancies",
		Long: `Run loads the configured source exports, matches records that denote
the same product across sources, and reports field-level disagreements
inside every matched group.

At least one source must be provided. Sources may be given as flags or
in the config file.`,
		Example: `  catalogsync run --inventory items.json --storefront products.csv
  catalogsync run --inventory items.json --sheet feed.csv --threshold 0.85
  catalogsync run --inventory items.json --storefront products.csv -o json > report.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Config file paths fill in flags that were not given
			cfgInventory, cfgStorefront, cfgSheet := app.SourcePaths()
			if inventoryPath == "" {
				inventoryPath = cfgInventory
			}
			if storefrontPath == "" {
				storefrontPath = cfgStorefront
			}
			if sheetPath == "" {
				sheetPath = cfgSheet
			}

			loaders := buildLoaders(inventoryPath, storefrontPath, sheetPath)
			if len(loaders) == 0 {
				return errors.ErrNoSources
			}

			pipeline, err := buildPipeline(cmd, app, threshold, priceTolerance, priceCritical, workers)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			data, skipped, err := sources.LoadAll(ctx, loaders...)
			if err != nil {
				return err
			}

			result, err := pipeline.Run(ctx, data)
			if err != nil {
				return err
			}
			app.Logger().Info().
				Str("run_id", result.Reconciliation.Metadata.RunID).
				Int("groups", len(result.Reconciliation.Groups)).
				Int("discrepancies", len(result.Discrepancies)).
				Msg("Run complete")

			// Loader-level skips join reconciler-level skips in the report
			result.Reconciliation.Skipped = append(skipped, result.Reconciliation.Skipped...)

			return render(cmd, app, result, outPath)
		},
	}

	cmd.Flags().StringVar(&inventoryPath, "inventory", "", "inventory system JSON export")
	cmd.Flags().StringVar(&storefrontPath, "storefront", "", "storefront CSV export")
	cmd.Flags().StringVar(&sheetPath, "sheet", "", "spreadsheet feed CSV export")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum name similarity for a match (0, 1]")
	cmd.Flags().Float64Var(&priceTolerance, "price-tolerance", 0, "relative price difference treated as agreement")
	cmd.Flags().Float64Var(&priceCritical, "price-critical", 0, "relative price difference escalated to critical")
	cmd.Flags().IntVar(&workers, "workers", 0, "scoring parallelism (0 = one per CPU)")
	cmd.Flags().StringVar(&outPath, "out", "", "write the report to a file instead of stdout")

	return cmd
}

// buildLoaders creates a loader for every source with a configured path.
func buildLoaders(inventoryPath, storefrontPath, sheetPath string) []sources.Loader {
	var loaders []sources.Loader
	if inventoryPath != "" {
		loaders = append(loaders, sources.NewInventorySource(inventoryPath))
	}
	if storefrontPath != "" {
		loaders = append(loaders, sources.NewStorefrontSource(storefrontPath))
	}
	if sheetPath != "" {
		loaders = append(loaders, sources.NewSheetSource(sheetPath))
	}
	return loaders
}

// buildPipeline returns the shared pipeline, or a custom one when any
// policy flag was given explicitly.
func buildPipeline(cmd *cobra.Command, app AppContext, threshold, priceTolerance, priceCritical float64, workers int) (catalogsync.Catalogsync, error) {
	var opts []catalogsync.Option
	if cmd.Flags().Changed("threshold") {
		opts = append(opts, catalogsync.WithMatchThreshold(threshold))
	}
	if cmd.Flags().Changed("price-tolerance") {
		opts = append(opts, catalogsync.WithPriceTolerance(priceTolerance))
	}
	if cmd.Flags().Changed("price-critical") {
		opts = append(opts, catalogsync.WithPriceCritical(priceCritical))
	}
	if cmd.Flags().Changed("workers") {
		opts = append(opts, catalogsync.WithWorkers(workers))
	}

	if len(opts) == 0 {
		return app.Pipeline()
	}
	return app.PipelineWithOptions(opts...)
}

// render writes the report in the configured format.
func render(cmd *cobra.Command, app AppContext, result *catalogsync.RunResult, outPath string) error {
	format, err := report.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return errors.WrapIO("create", outPath, err)
		}
		defer f.Close()
		w = f

		// Files default to markdown unless a format was chosen
		if app.OutputFormat() == "" {
			format = report.FormatMarkdown
		}
	}

	rep := report.New(result.Reconciliation, result.Discrepancies)
	if err := report.NewFormatter(format).Format(w, rep); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	if critical := rep.CountBySeverity()[products.SeverityCritical]; critical > 0 {
		app.Logger().Warn().Int("critical", critical).Msg("Critical discrepancies detected")
	}
	return nil
}
