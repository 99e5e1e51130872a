package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/ChatbotAPI/internal/containersync"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
	"github.com/spf13/cobra"
)

func main() {
	logger_i.Init(false)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "containersync",
		Short: "Push canonical logic files into every tenant container",
		Long: `Copies the files listed in a TOML manifest from the canonical source directory
into every tenant directory under containers_dir, overwriting in place.

Example manifest (sync.toml):
  source_dir     = "./canonical"
  containers_dir = "./containers"
  files          = ["bot.js", "lib/prompts.js"]
  backup         = true`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("manifest", "m", "sync.toml", "path to the sync manifest")
	rootCmd.PersistentFlags().Bool("backup", false, "keep a timestamped copy of each file before overwriting")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Sync once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			syncer, err := syncerFromFlags(cmd)
			if err != nil {
				return err
			}
			report, err := syncer.Run(cmd.Context())
			if err != nil {
				return err
			}
			printReport(cmd, report)
			return nil
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Sync, then re-sync whenever a source file changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			syncer, err := syncerFromFlags(cmd)
			if err != nil {
				return err
			}
			report, err := syncer.Run(cmd.Context())
			if err != nil {
				return err
			}
			printReport(cmd, report)
			fmt.Fprintln(cmd.OutOrStdout(), "Watching for changes, Ctrl+C to stop")
			return syncer.Watch(cmd.Context(), func(r containersync.Report, err error) {
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "sync failed: %v\n", err)
					return
				}
				printReport(cmd, r)
			})
		},
	}

	rootCmd.AddCommand(runCmd, watchCmd)
	return rootCmd
}

func syncerFromFlags(cmd *cobra.Command) (*containersync.Syncer, error) {
	path, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return nil, fmt.Errorf("getting manifest flag: %w", err)
	}
	manifest, err := containersync.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("backup") {
		manifest.Backup, _ = cmd.Flags().GetBool("backup")
	}
	return containersync.NewSyncer(manifest), nil
}

func printReport(cmd *cobra.Command, r containersync.Report) {
	fmt.Fprintf(cmd.OutOrStdout(), "Synced %d files into %d containers", r.FilesCopied, len(r.Containers))
	if len(r.Backups) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), " (%d backups)", len(r.Backups))
	}
	fmt.Fprintln(cmd.OutOrStdout())
}
