package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-event-systems/interview/internal/config"
	"github.com/open-event-systems/interview/pkg/logic"
)

var validateCmd = &cobra.Command{
	Use:   "validate [interviews-file]",
	Short: "Check an interviews file for errors",
	Long:  `Parses and compiles an interviews file, reporting syntax errors, bad pointers and references to missing questions.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, err := interviewsPath(cmd, args)
	if err != nil {
		return err
	}

	interviews, err := config.LoadInterviews(path, logic.NewEvaluator(0))
	if err != nil {
		return err
	}

	for _, id := range interviews.IDs() {
		iv := interviews.Get(id)
		fmt.Printf("  %s: %d questions, %d steps\n", id, len(iv.Questions), len(iv.Steps))
	}
	fmt.Println("Interviews are valid! ✅")
	return nil
}

// interviewsPath resolves the interviews file: an explicit argument wins,
// otherwise the configured path is used.
func interviewsPath(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return "", err
	}
	return cfg.Interviews, nil
}
