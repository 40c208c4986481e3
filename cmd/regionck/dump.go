package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"regionck/internal/lir"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file.lirb>",
	Short: "Print a serialized LIR module in human-readable form",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	m, typesIn, _, err := lir.DecodeModule(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return lir.DumpModule(cmd.OutOrStdout(), m, typesIn, lir.DumpOptions{})
}
