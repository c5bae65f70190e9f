package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/inamate/easel/internal/engine"
	"github.com/inamate/easel/internal/scene"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Summarize an opcode log and the construction it builds",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ops, err := readLog(args[0])
	if err != nil {
		return err
	}
	e, err := replay(ops)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), ops, e)
	return nil
}

func printSummary(w io.Writer, ops []string, e *engine.Engine) {
	actions := map[string]int{}
	for _, op := range ops {
		actions[action(op)]++
	}

	views := engine.BuildViews(e.Graph())
	kinds := map[scene.Kind]int{}
	var degenerate []string
	for _, v := range views {
		kinds[v.Kind]++
		if !v.Exists {
			degenerate = append(degenerate, v.Name)
		}
	}

	fmt.Fprintln(w, "Opcode Log")
	fmt.Fprintln(w, "==========")
	fmt.Fprintf(w, "Opcodes: %d\n", len(ops))
	for _, name := range sortedKeys(actions) {
		fmt.Fprintf(w, "  %s: %d\n", name, actions[name])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Construction:")
	fmt.Fprintf(w, "  Objects: %d\n", len(views))
	for _, k := range sortedKeys(kinds) {
		fmt.Fprintf(w, "  %s: %d\n", k, kinds[k])
	}
	fmt.Fprintf(w, "  Undoable: %v\n", e.History().CanUndo())
	fmt.Fprintf(w, "  Redoable: %v\n", e.History().CanRedo())

	if len(degenerate) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Not existing:")
		for _, name := range degenerate {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
