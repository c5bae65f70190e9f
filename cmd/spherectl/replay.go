package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var replayRender bool

var replayCmd = &cobra.Command{
	Use:   "replay [file]",
	Short: "Replay an opcode log and print the resulting objects as JSON",
	Long:  "Apply every opcode to an empty construction and print the object snapshot, or draw commands with --render. Use - to read stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayRender, "render", false, "print draw commands instead of objects")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	ops, err := readLog(args[0])
	if err != nil {
		return err
	}
	e, err := replay(ops)
	if err != nil {
		return err
	}

	out := e.Snapshot()
	if replayRender {
		out = e.Render()
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
