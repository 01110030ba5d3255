package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pcbfuse/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pcbfuse version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pcbfuse version %s\n", version.Info())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
