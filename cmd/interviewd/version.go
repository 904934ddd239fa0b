package main

import (
	"fmt"
	"strings"

	"github.com/open-event-systems/interview"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of interviewd",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("interviewd version %s\n", strings.TrimSpace(interview.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
