package cli

import (
	"bytes"
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
	dlgio "github.com/LordOfMyatar/Radoub-sub018/pkg/io"
)

func (c *CLI) dumpCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "Write a dialog as a JSON or YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDump(cmd.Context(), args[0], output, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "document format: json, yaml (default from config, else json)")

	return cmd
}

func (c *CLI) runDump(ctx context.Context, path, output, flag string) error {
	d, err := c.readDialogue(ctx, path)
	if err != nil {
		return err
	}
	if output != "" && flag == "" {
		if f, err := dlgio.FormatFromPath(output); err == nil {
			flag = string(f)
		}
	}
	format, err := c.documentFormat(flag)
	if err != nil {
		return err
	}
	if output == "" {
		return dlgio.Write(d, os.Stdout, format)
	}
	var buf bytes.Buffer
	if err := dlgio.Write(d, &buf, format); err != nil {
		return err
	}
	if err := writeFileAtomic(output, buf.Bytes()); err != nil {
		return err
	}
	printSuccess("Wrote %s document", format)
	printFile(output)
	return nil
}

func (c *CLI) importCommand() *cobra.Command {
	var (
		output string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "import [document]",
		Short: "Build a binary dialog from a JSON or YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], output, strict)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output .dlg file (required)")
	_ = cmd.MarkFlagRequired("output")
	cmd.Flags().BoolVar(&strict, "reject-conflicts", false, "fail instead of dropping conditions of pointers that share a struct")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, path, output string, strict bool) error {
	prog := newProgress(c.Logger)
	d, err := c.readDialogue(ctx, path)
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		c.Logger.Warn("document has structural problems", "err", err)
	}
	if err := c.writeDialogue(ctx, d, output, dlg.WithRejectConflicts(strict)); err != nil {
		return err
	}
	prog.done("Imported " + path)
	printFile(output)
	return nil
}
