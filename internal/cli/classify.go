package cli

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/indicators/internal/core"
)

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "classify <series-id>",
		Short: "Recalculate the ranges of a series",
		Long: `Recalculate and store the four ranges of a series from its observations.

--mode switches the series to equalCount, equalInterval, valueQuartile or
manual before classifying. Manual series keep their stored ranges.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid series id %q: %w", args[0], err)
			}

			var m *core.ClassificationMode
			if mode != "" {
				parsed, err := core.ParseClassificationMode(mode)
				if err != nil {
					return err
				}
				m = &parsed
			}
			return runClassify(cmd, rootOpts, id, m)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "classification mode to switch to")
	return cmd
}

func runClassify(cmd *cobra.Command, opts *RootOptions, id uuid.UUID, mode *core.ClassificationMode) error {
	ctx := cmd.Context()
	svc, _, closeStore, err := opts.openService(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	ranges, err := svc.Classify(ctx, id, mode)
	if err != nil {
		return withUserMessage(err)
	}

	result := core.ClassifyResult{SeriesID: id, Ranges: ranges}
	return opts.printer(cmd.OutOrStdout()).result(result, func(w io.Writer) {
		p := opts.printer(w)
		p.line("series %s", id)
		if len(ranges) == 0 {
			p.line("  no ranges")
		}
		for _, r := range ranges {
			p.line("  %-8s %10.2f .. %.2f", r.Color, r.Min, r.Max)
		}
	})
}
