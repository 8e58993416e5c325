package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catalogsync/catalogsync"
	"github.com/catalogsync/catalogsync/cmd/catalogsync/cmd/run"
)

// NewRunCommand creates the run command with app dependencies.
func (a *App) NewRunCommand() *cobra.Command {
	return run.NewCommand(a)
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "catalogsync %s\n", a.version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:   %s\n", a.commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:    %s\n", a.date)
			fmt.Fprintf(cmd.OutOrStdout(), "  built by: %s\n", a.builtBy)
			return nil
		},
	}
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// SourcePaths returns the configured source file paths.
func (a *App) SourcePaths() (inventory, storefront, sheet string) {
	return a.config.InventoryPath, a.config.StorefrontPath, a.config.SheetPath
}

// PipelineWithOptions creates a new pipeline with custom options layered
// over the configured policy. Use when a command needs its own knobs.
func (a *App) PipelineWithOptions(opts ...catalogsync.Option) (catalogsync.Catalogsync, error) {
	merged := append([]catalogsync.Option{catalogsync.WithPolicy(a.config.Policy())}, opts...)
	return catalogsync.New(merged...)
}

// Ensure App implements the command context interfaces at compile time.
var _ run.AppContext = (*App)(nil)
