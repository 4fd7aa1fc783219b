package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/linearize/internal/history"
	"github.com/roach88/linearize/internal/linearize"
)

// demo is a scripted history with optional what-if branches fed to clones
// of the final checker.
type demo struct {
	nodes   int
	feeds   []history.Entry
	whatIfs []whatIf
}

type whatIf struct {
	label string
	entry history.Entry
}

var demos = map[string]demo{
	"succeed": {
		nodes: 3,
		feeds: []history.Entry{
			{Node: 0, Span: history.Put(8, 100, 105)},
			{Node: 1, Span: history.Put(7, 104, 106)},
			{Node: 2, Span: history.Get(7, 102, 108)},
			{Node: 1, Span: history.Get(8, 110, 112)},
			{Node: 2, Span: history.Get(9, 109, 115)},
			{Node: 0, Span: history.Get(8, 110, 117)},
			{Node: 1, Span: history.Put(9, 114, 118)},
			{Node: 2, Span: history.Stopped(120)},
			{Node: 1, Span: history.Stopped(121)},
			{Node: 0, Span: history.Stopped(122)},
		},
	},
	"violate": {
		nodes: 3,
		feeds: []history.Entry{
			{Node: 0, Span: history.Put(8, 100, 105)},
			{Node: 1, Span: history.Put(7, 104, 106)},
			{Node: 2, Span: history.Put(9, 107, 110)},
			{Node: 0, Span: history.Get(7, 111, 113)},
			{Node: 2, Span: history.Stopped(120)},
			{Node: 0, Span: history.Stopped(121)},
			{Node: 1, Span: history.Stopped(122)},
		},
	},
	"complex": {
		nodes: 3,
		feeds: []history.Entry{
			{Node: 2, Span: history.GetNil(99, 101)},
			{Node: 0, Span: history.Put(8, 100, 105)},
			{Node: 1, Span: history.Put(7, 104, 106)},
			{Node: 2, Span: history.Get(7, 102, 108)},
			{Node: 1, Span: history.Get(8, 110, 112)},
			{Node: 2, Span: history.Get(9, 109, 115)},
			{Node: 1, Span: history.Fail(114, 118)},
			{Node: 0, Span: history.Get(10, 117, 119)},
			{Node: 2, Span: history.Put(11, 120, 123)},
			{Node: 2, Span: history.Stopped(125)},
			{Node: 1, Span: history.Put(12, 124, 127)},
			{Node: 1, Span: history.Stopped(128)},
			{Node: 0, Span: history.Stopped(129)},
			{Node: 2, Span: history.Resumed(130)},
			{Node: 2, Span: history.Get(11, 131, 132)},
		},
	},
	"readme": {
		nodes: 2,
		feeds: []history.Entry{
			{Node: 0, Span: history.Put(55, 1, 5)},
			{Node: 1, Span: history.Put(66, 3, 6)},
			{Node: 1, Span: history.Get(77, 10, 12)},
		},
		whatIfs: []whatIf{
			{label: "If n0 feeds", entry: history.Entry{Node: 0, Span: history.Put(77, 7, 9)}},
			{label: "If, instead, n0 feeds", entry: history.Entry{Node: 0, Span: history.Put(77, 13, 14)}},
		},
	},
}

// demoNames returns the available demo names, sorted.
func demoNames() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DemoFrame is the checker state after one feed of a demo.
type DemoFrame struct {
	WhatIf string              `json:"what_if,omitempty"`
	Node   history.Node        `json:"node"`
	Span   string              `json:"span"`
	OK     bool                `json:"ok"`
	Live   []linearize.Summary `json:"live"`
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo <name>",
		Short: "Walk through a built-in example history",
		Long: fmt.Sprintf(`Feed a built-in example history one span at a time, printing the live
possibilities after every feed.

Available demos: %v`, demoNames()),
		Args:          cobra.ExactArgs(1),
		ValidArgs:     demoNames(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runDemo(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	d, ok := demos[name]
	if !ok {
		msg := fmt.Sprintf("unknown demo %q: must be one of %v", name, demoNames())
		_ = formatter.Error(ErrCodeBadTarget, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	lin, err := linearize.New(d.nodes, linearize.WithLogger(newLogger(opts, cmd.ErrOrStderr())))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create checker", err)
	}

	w := cmd.OutOrStdout()
	text := !formatter.IsJSON()
	var frames []DemoFrame

	feed := func(l *linearize.Linearizer, label string, e history.Entry) error {
		fed, err := l.FeedSpan(e.Node, e.Span)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("demo %s", name), err)
		}
		frames = append(frames, DemoFrame{
			WhatIf: label,
			Node:   e.Node,
			Span:   e.Span.GoString(),
			OK:     fed,
			Live:   l.Snapshot(),
		})
		if text {
			writeDemoFrame(w, l, e, fed)
		}
		return nil
	}

	for _, e := range d.feeds {
		if err := feed(lin, "", e); err != nil {
			return err
		}
	}

	for _, wi := range d.whatIfs {
		if text {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "%s %s:\n", wi.label, wi.entry.Span.GoString())
		}
		if err := feed(lin.Clone(), wi.label, wi.entry); err != nil {
			return err
		}
	}

	if !text {
		return formatter.Success(frames)
	}
	return nil
}

func writeDemoFrame(w io.Writer, l *linearize.Linearizer, e history.Entry, ok bool) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Feed %d %s\n", e.Node, e.Span.GoString())
	fmt.Fprintf(w, "%s -> %t\n", l, ok)
}
