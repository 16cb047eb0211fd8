package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/folio/internal/imageopt"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newOptimizeCommand(opts *rootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:     "optimize <glob>...",
		Short:   "Resize and re-encode images the same way uploads are",
		Example: `  folio optimize "assets/**/*.{png,jpg}" --out data/uploads`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if strings.TrimSpace(outDir) == "" {
				outDir = cfg.UploadDir
			}
			optimizer := imageopt.New(cfg.ImageMaxDimension, cfg.ImageQuality)
			optimizer.MaxInputBytes = cfg.MaxUploadBytes

			files, err := expandGlobs(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no files matched %s", strings.Join(args, ", "))
			}

			report, err := optimizeFiles(files, outDir, optimizer, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "optimized %d of %d images into %s\n", report.written, len(files), outDir)
			for _, failure := range report.failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", failure)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default upload_dir)")
	return cmd
}

// expandGlobs 展开 doublestar 模式，结果去重并排序。
func expandGlobs(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

type optimizeReport struct {
	written  int
	failures []string
}

func optimizeFiles(files []string, outDir string, optimizer *imageopt.Optimizer, progress io.Writer) (optimizeReport, error) {
	var report optimizeReport
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return report, fmt.Errorf("creating %s: %w", outDir, err)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("Optimizing images"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	for _, path := range files {
		if err := optimizeFile(path, outDir, optimizer); err != nil {
			report.failures = append(report.failures, fmt.Sprintf("%s: %v", path, err))
		} else {
			report.written++
		}
		_ = bar.Add(1)
	}
	return report, nil
}

func optimizeFile(path, outDir string, optimizer *imageopt.Optimizer) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	result, err := optimizer.Optimize(src)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return os.WriteFile(filepath.Join(outDir, base+".jpg"), result.Bytes, 0o644)
}
