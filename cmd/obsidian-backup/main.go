package main

import (
	"os"

	"github.com/mbbroberg/obsidian-dotfile-backup/internal/cli"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/ui"
)

func main() {
	rootCmd := cli.NewRootCmd()
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		ui.NewPrinter(os.Stderr, ui.FormatAuto).Errorf("Error: %v", err)
		if cli.IsUsageError(err) {
			_ = cmd.Usage()
		}
		os.Exit(1)
	}
}
