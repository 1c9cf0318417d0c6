package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/handheld"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of handheld",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "handheld version %s\n", strings.TrimSpace(handheld.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
