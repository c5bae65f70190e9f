package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spherectl",
	Short: "Replay and inspect spherical construction opcode logs",
	Long: `spherectl rebuilds a construction from its opcode log, one opcode per line,
and prints the resulting objects, draw commands or a summary. Logs can be read
from a file, from stdin, or pulled from a studio database.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
