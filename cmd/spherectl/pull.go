package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inamate/easel/internal/config"
	"github.com/inamate/easel/internal/store"
)

var pullCmd = &cobra.Command{
	Use:   "pull [studio-id]",
	Short: "Print a studio's persisted opcode log",
	Long:  "Read the opcode log of a studio from the database named by DATABASE_URL and print one opcode per line.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPull,
}

func init() {
	rootCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	ops, err := store.New(pool).ListOpcodes(ctx, args[0])
	if err != nil {
		return fmt.Errorf("list opcodes: %w", err)
	}
	for _, op := range ops {
		fmt.Fprintln(cmd.OutOrStdout(), op)
	}
	return nil
}
