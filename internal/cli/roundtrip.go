package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/observability"
)

// roundtripOpts holds the command-line flags for the roundtrip command.
type roundtripOpts struct {
	output string // where to write the re-saved file
	audit  bool   // print the field index allocation log
}

func (c *CLI) roundtripCommand() *cobra.Command {
	var opts roundtripOpts

	cmd := &cobra.Command{
		Use:   "roundtrip [file.dlg]",
		Short: "Load and re-save a dialog, checking the output is byte-identical",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoundtrip(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the re-saved file here (atomic replace)")
	cmd.Flags().BoolVar(&opts.audit, "audit", false, "print field index allocations and fail on pointer conflicts")

	return cmd
}

// roundtripResult compares a file with its re-saved form.
type roundtripResult struct {
	identical bool
	diffAt    int // first differing byte, or -1
	saved     []byte
	stats     dlg.SaveStats
	timing    timingHooks
}

func (c *CLI) roundtrip(ctx context.Context, data []byte) (roundtripResult, error) {
	opts, err := c.codecOptions()
	if err != nil {
		return roundtripResult{}, err
	}
	var timing timingHooks
	opts = append(opts, dlg.WithHooks(observability.Multi{&logHooks{logger: c.Logger}, &timing}))
	d, err := dlg.LoadContext(ctx, data, opts...)
	if err != nil {
		return roundtripResult{}, err
	}
	saved, stats, err := dlg.SaveContext(ctx, d, opts...)
	if err != nil {
		return roundtripResult{}, err
	}
	res := roundtripResult{identical: bytes.Equal(data, saved), diffAt: -1, saved: saved, stats: stats, timing: timing}
	if !res.identical {
		res.diffAt = firstDiff(data, saved)
	}
	return res, nil
}

func firstDiff(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func (c *CLI) runRoundtrip(ctx context.Context, path string, opts roundtripOpts) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	res, err := c.roundtrip(ctx, data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	s := res.stats
	printKeyValue("size", fmt.Sprintf("%d -> %d bytes", len(data), s.Bytes))
	printKeyValue("structs", fmt.Sprint(s.Structs))
	printKeyValue("fields", fmt.Sprint(s.Fields))
	printKeyValue("pointers", fmt.Sprintf("%d logical, %d physical (%.0f%%)",
		s.LogicalPointers, s.PhysicalPointers, 100*s.CompactionRatio()))
	printKeyValue("took", fmt.Sprintf("load %s, save %s",
		res.timing.load.Round(time.Microsecond), res.timing.save.Round(time.Microsecond)))
	for _, diag := range s.Diagnostics {
		printWarning("%s", diag)
	}
	if opts.audit {
		printNewline()
		for _, a := range s.Allocations {
			printDetail("%s", a)
		}
		if n := len(s.Conflicts()); n > 0 {
			return fmt.Errorf("%s: %d pointer(s) lose their condition or comment on save", path, n)
		}
	}

	if opts.output != "" {
		if err := writeFileAtomic(opts.output, res.saved); err != nil {
			return err
		}
		printFile(opts.output)
	}

	if !res.identical {
		printError("Output differs from input at byte %d", res.diffAt)
		if opts.output == "" {
			printNextStep("Keep the re-saved file with", fmt.Sprintf("%s roundtrip %s -o out.dlg", appName, path))
		}
		return fmt.Errorf("%s: round trip is not byte-identical", path)
	}
	printSuccess("Round trip is byte-identical")
	return nil
}
