package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/cache"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/flowchart"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/render"
)

// formatJSON writes the flowchart structure itself instead of a drawing.
const formatJSON = "json"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file path (default: input with the format's extension)
	format   string  // svg, dot, pdf, png or json
	detailed bool    // include speakers and scripts in labels
	maxLabel int     // truncate node text
	scale    float64 // PNG scale factor
	noCache  bool    // always re-render
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: string(render.FormatSVG), scale: 2}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a dialog as a flowchart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format's extension, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot, pdf, png, json")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show speakers and scripts in node labels")
	cmd.Flags().IntVar(&opts.maxLabel, "max-label", 40, "truncate node text to this many characters")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "ignore and do not update the render cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	d, err := c.readDialogue(ctx, path)
	if err != nil {
		return err
	}
	s := flowchart.FromDialogue(d)

	format := strings.ToLower(strings.TrimSpace(opts.format))
	var out []byte
	if format == formatJSON {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		out = buf.Bytes()
	} else {
		f, err := render.ParseFormat(format)
		if err != nil {
			return err
		}
		dot := render.ToDOT(s, render.Options{Detailed: opts.detailed, MaxLabel: opts.maxLabel})
		if out, err = c.renderCached(ctx, dot, f, opts.scale, opts.noCache); err != nil {
			return err
		}
	}

	output := opts.output
	if output == "-" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if output == "" {
		output = strings.TrimSuffix(path, filepath.Ext(path)) + "." + format
	}
	if err := writeFileAtomic(output, out); err != nil {
		return err
	}
	printSuccess("Rendered %s", format)
	printFile(output)
	return nil
}

// renderCachedTTL bounds how long a rendered diagram is reused.
const renderCachedTTL = 7 * 24 * time.Hour

// renderCached renders dot, reusing an earlier result for identical input.
// Cache failures are logged and otherwise ignored.
func (c *CLI) renderCached(ctx context.Context, dot string, f render.Format, scale float64, noCache bool) ([]byte, error) {
	if f == render.FormatDOT {
		return []byte(dot), nil
	}
	store := newCache(noCache)
	defer store.Close()

	key := cache.RenderKey(dot, string(f), scale)
	if data, hit, err := store.Get(ctx, key); err != nil {
		c.Logger.Debug("render cache read failed", "err", err)
	} else if hit {
		c.Logger.Debug("render cache hit", "format", f)
		return data, nil
	}

	prog := newProgress(c.Logger)
	out, err := render.Render(ctx, dot, f, scale)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Rendered %s", f))
	if err := store.Set(ctx, key, out, renderCachedTTL); err != nil {
		c.Logger.Debug("render cache write failed", "err", err)
	}
	return out, nil
}
