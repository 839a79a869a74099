package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/indicators/internal/core"
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Ingest a batch of indicator files",
		Long: `Ingest one batch of "<code> - <name>.csv|xlsx" files.

Files come from the arguments and from every .csv and .xlsx file in --dir.
The batch is all or nothing: any unreadable file, unknown series code or
unresolved entity name rejects the whole batch before anything is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectPaths(args, dir)
			if err != nil {
				return err
			}
			return runIngest(cmd, rootOpts, paths)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory of files to ingest")
	return cmd
}

// collectPaths merges explicit paths with the spreadsheet files of dir,
// sorted by name.
func collectPaths(args []string, dir string) ([]string, error) {
	paths := append([]string(nil), args...)
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read dir: %w", err)
		}
		exts := ingestExtensions()
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if exts[strings.ToLower(filepath.Ext(e.Name()))] {
				found = append(found, filepath.Join(dir, e.Name()))
			}
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files given: pass paths or --dir")
	}
	return paths, nil
}

// ingestExtensions lists the file extensions of every registered parser.
func ingestExtensions() map[string]bool {
	exts := make(map[string]bool)
	for _, f := range core.Formats() {
		def, ok := core.ParserFor(f)
		if !ok {
			continue
		}
		for _, ext := range def.Extensions {
			exts[ext] = true
		}
	}
	return exts
}

// withUserMessage prefixes errors that carry a support code with the
// message and action shown to users.
func withUserMessage(err error) error {
	if !core.IsUserFacing(err) {
		return err
	}
	return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
}

func runIngest(cmd *cobra.Command, opts *RootOptions, paths []string) error {
	files := make([]core.UploadedFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, core.UploadedFile{Name: filepath.Base(p), Data: data})
	}

	ctx := cmd.Context()
	svc, cfg, closeStore, err := opts.openService(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(ctx, cfg.Upload.Timeout)
	defer cancel()

	result, err := svc.Ingest(ctx, files)
	if err != nil {
		return withUserMessage(err)
	}

	return opts.printer(cmd.OutOrStdout()).result(result, func(w io.Writer) {
		p := opts.printer(w)
		p.line("batch %s: %d file(s) in %s", result.BatchID, len(result.Files), result.Duration.Round(time.Millisecond))
		for _, f := range result.Files {
			p.line("  %03d %-40s %6d rows  periods %v", f.SeriesCode, f.Name, f.RowsProcessed, f.Periods)
		}
		p.line("series touched: %d, newly classified: %d", len(result.TouchedSeriesIDs), result.NewlyClassifiedCount)
	})
}
