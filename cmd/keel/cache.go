package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"keel/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the signature cache",
}

var cacheDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Remove every cached signature set",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := driver.OpenDiskCache("keel")
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to drop cache: %w", err)
		}
		fmt.Fprintln(os.Stdout, "signature cache dropped")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheDropCmd)
}
