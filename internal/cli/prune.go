package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
)

// pruneOpts holds the command-line flags for the prune command.
type pruneOpts struct {
	output  string // output file (default: overwrite the input)
	start   int    // starting pointer slot to remove, or -1
	node    string // node to delete, as E<n> or R<n>
	pointer string // pointer to remove, as E<n>:<slot>
	policy  string // overrides the configured delete policy
	dryRun  bool
}

func (c *CLI) pruneCommand() *cobra.Command {
	opts := pruneOpts{start: -1}

	cmd := &cobra.Command{
		Use:     "prune [file]",
		Aliases: []string{"prune-start"},
		Short:   "Remove a start, pointer or node and everything only it kept alive",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPrune(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().IntVar(&opts.start, "start", opts.start, "starting pointer slot to remove")
	cmd.Flags().StringVar(&opts.node, "node", "", "node to delete (E<n> or R<n>)")
	cmd.Flags().StringVar(&opts.pointer, "pointer", "", "pointer to remove (E<n>:<slot> or R<n>:<slot>)")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "delete policy: conservative, strict (default from config)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "report what would be removed without writing")
	cmd.MarkFlagsMutuallyExclusive("start", "node", "pointer")
	cmd.MarkFlagsOneRequired("start", "node", "pointer")

	return cmd
}

func (c *CLI) runPrune(ctx context.Context, path string, opts pruneOpts) error {
	d, err := c.readDialogue(ctx, path)
	if err != nil {
		return err
	}
	if opts.policy != "" {
		if d.DeletePolicy, err = dlg.ParseDeletePolicy(opts.policy); err != nil {
			return err
		}
	}

	res, err := prune(d, opts)
	if err != nil {
		return err
	}

	printInfo("Policy %s", StyleValue.Render(d.DeletePolicy.String()))
	printKeyValue("removed", refList(res.Removed))
	printKeyValue("preserved", refList(res.Preserved))
	printKeyValue("promoted", refList(res.Promoted))
	if res.Dropped > 0 {
		printKeyValue("dropped pointers", StyleNumber.Render(fmt.Sprint(res.Dropped)))
	}
	for _, diag := range res.Diagnostics {
		printWarning("%s", diag)
	}
	if opts.dryRun {
		printInfo("Dry run, nothing written")
		return nil
	}

	output := opts.output
	if output == "" {
		output = path
	}
	if err := c.writeDialogue(ctx, d, output); err != nil {
		return err
	}
	printSuccess("Pruned %d nodes", len(res.Removed))
	printFile(output)
	return nil
}

func prune(d *dlg.Dialogue, opts pruneOpts) (dlg.DeleteResult, error) {
	switch {
	case opts.start >= 0:
		return d.RemoveStart(opts.start)
	case opts.node != "":
		ref, err := parseNodeRef(opts.node)
		if err != nil {
			return dlg.DeleteResult{}, err
		}
		return d.DeleteNode(ref)
	case opts.pointer != "":
		ref, slot, err := parsePointerRef(opts.pointer)
		if err != nil {
			return dlg.DeleteResult{}, err
		}
		return d.RemovePointer(ref, slot)
	}
	return dlg.DeleteResult{}, cerrors.New(cerrors.ErrCodeInvalidInput, "nothing to prune")
}

func refList(refs []dlg.NodeRef) string {
	if len(refs) == 0 {
		return StyleDim.Render("none")
	}
	s := make([]string, len(refs))
	for i, r := range refs {
		s[i] = r.String()
	}
	return StyleValue.Render(strings.Join(s, ", "))
}
