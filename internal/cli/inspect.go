package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	tree     bool // print the conversation tree
	maxDepth int  // tree depth limit; 0 means unlimited
	validate bool // fail when the graph has structural problems
}

func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Summarize a dialog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.tree, "tree", "t", false, "print the conversation tree")
	cmd.Flags().IntVar(&opts.maxDepth, "depth", 0, "limit tree depth (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "exit with an error if validation fails")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, path string, opts inspectOpts) error {
	d, err := c.readDialogue(ctx, path)
	if err != nil {
		return err
	}

	sum := summarize(d)
	fmt.Println(StyleTitle.Render(path))
	printKeyValue("entries", StyleNumber.Render(fmt.Sprint(len(d.Entries))))
	printKeyValue("replies", StyleNumber.Render(fmt.Sprint(len(d.Replies))))
	printKeyValue("starts", StyleNumber.Render(fmt.Sprint(len(d.Starts))))
	printKeyValue("pointers", StyleNumber.Render(fmt.Sprint(d.PointerCount())))
	printKeyValue("links", StyleNumber.Render(fmt.Sprint(sum.links)))
	printKeyValue("unreachable", StyleNumber.Render(fmt.Sprint(sum.unreachable)))
	if d.EndConversation != "" {
		printKeyValue("end script", d.EndConversation)
	}
	if d.EndConverAbort != "" {
		printKeyValue("abort script", d.EndConverAbort)
	}

	for _, diag := range d.Diagnostics {
		printWarning("%s", diag)
	}

	if opts.tree {
		printNewline()
		for _, line := range treeLines(d, opts.maxDepth) {
			fmt.Println(line)
		}
	}

	verr := d.Validate()
	if verr != nil {
		printNewline()
		for _, e := range problems(verr) {
			printError("%s %s", cerrors.GetCode(e), cerrors.UserMessage(e))
		}
		if opts.validate {
			return fmt.Errorf("%s: validation failed", path)
		}
		return nil
	}
	if len(d.Diagnostics) == 0 {
		printSuccess("No problems found")
	}
	return nil
}

// problems splits an error built with errors.Join into its parts.
func problems(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

type summary struct {
	links       int
	unreachable int
}

func summarize(d *dlg.Dialogue) summary {
	var s summary
	for _, ref := range d.FlowOrder() {
		for _, p := range d.Pointers(ref) {
			if p.IsLink {
				s.links++
			}
		}
	}
	s.unreachable = d.NodeCount() - len(d.Reachable())
	return s
}

// treeLines renders the conversation as an indented outline. Links are
// shown but not followed; a node reached a second time through an owning
// pointer is printed once more without its children.
func treeLines(d *dlg.Dialogue, maxDepth int) []string {
	type frame struct {
		ptr   dlg.Pointer
		depth int
	}
	var lines []string
	seen := map[dlg.NodeRef]bool{}
	var stack []frame
	for i := len(d.Starts) - 1; i >= 0; i-- {
		stack = append(stack, frame{ptr: d.Starts[i]})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		indent := strings.Repeat("  ", f.depth)
		ref := f.ptr.Ref()
		n, ok := d.Node(ref)
		switch {
		case f.ptr.Unresolved || !ok:
			lines = append(lines, indent+StyleWarning.Render(fmt.Sprintf("%s ??? (unresolved)", ref)))
			continue
		case f.ptr.IsLink:
			lines = append(lines, indent+styleLink.Render(fmt.Sprintf("%s %s %s", iconArrow, ref, quote(n))))
			continue
		}
		line := fmt.Sprintf("%s %s", ref, quote(n))
		if f.ptr.Condition != "" {
			line += StyleDim.Render(" ?" + f.ptr.Condition)
		}
		if n.Script != "" {
			line += StyleDim.Render(" !" + n.Script)
		}
		style := styleReply
		if ref.Kind == dlg.KindEntry {
			style = styleEntry
			if n.Speaker != "" {
				line = n.Speaker + ": " + line
			}
		}
		lines = append(lines, indent+style.Render(line))
		if seen[ref] || (maxDepth > 0 && f.depth+1 >= maxDepth) {
			continue
		}
		seen[ref] = true
		for i := len(n.Pointers) - 1; i >= 0; i-- {
			stack = append(stack, frame{ptr: n.Pointers[i], depth: f.depth + 1})
		}
	}
	return lines
}

func quote(n *dlg.Node) string {
	text := n.Text.Default()
	if text == "" {
		return "[continue]"
	}
	if r := []rune(text); len(r) > 60 {
		text = string(r[:60]) + "..."
	}
	return fmt.Sprintf("%q", text)
}
