package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/folio/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full site state as snapshot JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			bundle, closeDB, err := openBundle(cfg, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			snap, err := bundle.Snapshots.Export()
			if err != nil {
				return fmt.Errorf("exporting snapshot: %w", err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out = strings.TrimSpace(out); out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(snap); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
			logger.Info("snapshot exported", zap.Int("projects", len(snap.Projects)), zap.Int("notices", len(snap.Notices)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the site state with a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			snap, err := service.ParseSnapshot(data)
			if err != nil {
				return err
			}

			bundle, closeDB, err := openBundle(cfg, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := bundle.Snapshots.Import(snap); err != nil {
				return fmt.Errorf("importing snapshot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d projects and %d notices\n", len(snap.Projects), len(snap.Notices))
			return nil
		},
	}
}
