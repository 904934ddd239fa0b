package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-event-systems/interview/internal/config"
	"github.com/open-event-systems/interview/internal/presentation/tui"
	"github.com/open-event-systems/interview/pkg/input"
	"github.com/open-event-systems/interview/pkg/interview"
	"github.com/open-event-systems/interview/pkg/logic"
)

var runCmd = &cobra.Command{
	Use:   "run [interview-id]",
	Short: "Run an interview interactively in the terminal",
	Long:  `Runs an interview locally, prompting for each question on the terminal and printing the collected data on completion.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runInterview(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("context", "", "Initial context as raw JSON")
	runCmd.Flags().String("target", "", "Opaque target tag carried through the interview")
	runCmd.Flags().String("interviews", "", "Interviews file (overrides config)")
}

func runInterview(cmd *cobra.Command, id string) error {
	path, _ := cmd.Flags().GetString("interviews")
	if path == "" {
		var err error
		path, err = interviewsPath(cmd, nil)
		if err != nil {
			return err
		}
	}

	interviews, err := config.LoadInterviews(path, logic.NewEvaluator(0))
	if err != nil {
		return err
	}
	iv := interviews.Get(id)
	if iv == nil {
		return fmt.Errorf("no interview %q (available: %s)", id, strings.Join(interviews.IDs(), ", "))
	}

	rawContext, _ := cmd.Flags().GetString("context")
	var initialContext map[string]any
	if rawContext != "" {
		if err := json.Unmarshal([]byte(rawContext), &initialContext); err != nil {
			return fmt.Errorf("error parsing --context JSON: %w", err)
		}
	}
	target, _ := cmd.Flags().GetString("target")

	if tui.Interactive() {
		tui.PrintBanner()
	}
	render := tui.NewRenderer()
	reader := bufio.NewReader(os.Stdin)

	state := interview.NewState(target, initialContext, nil)
	ic := interview.NewContext(iv, state, interviews.Evaluator())

	var responses map[string]any
	var pending *interview.AskContent

	for {
		next, content, err := interview.Update(ic, responses)
		if err != nil {
			var verr *input.ValidationError
			if errors.As(err, &verr) && pending != nil {
				// The state is unchanged; re-prompt the same question.
				fmt.Printf("Invalid response: %v\n\n", verr)
				responses, err = promptQuestion(reader, render, pending.Schema)
				if err != nil {
					return err
				}
				continue
			}
			return err
		}
		ic = next

		switch c := content.(type) {
		case nil:
			printMarkdown(render, "**Interview complete.**")
			data, err := json.MarshalIndent(ic.State.Data, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil

		case *interview.ExitContent:
			md := "# " + c.Message
			if c.Description != "" {
				md += "\n\n" + c.Description
			}
			printMarkdown(render, md)
			return nil

		case *interview.AskContent:
			pending = c
			responses, err = promptQuestion(reader, render, c.Schema)
			if err != nil {
				return err
			}
		}
	}
}

func printMarkdown(render func(string) (string, error), md string) {
	out, err := render(md)
	if err != nil {
		out = md + "\n"
	}
	fmt.Print(out)
}

// promptQuestion walks the question schema's synthetic fields in order
// and collects one raw response per field. Validation happens in the
// engine, not here.
func promptQuestion(reader *bufio.Reader, render func(string) (string, error), schema map[string]any) (map[string]any, error) {
	var md strings.Builder
	if title, _ := schema["title"].(string); title != "" {
		md.WriteString("## " + title + "\n")
	}
	if desc, _ := schema["description"].(string); desc != "" {
		md.WriteString("\n" + desc + "\n")
	}
	if md.Len() > 0 {
		printMarkdown(render, md.String())
	}

	properties, _ := schema["properties"].(map[string]any)
	responses := make(map[string]any)
	for i := 0; ; i++ {
		name := input.PropertyName(i)
		fieldSchema, ok := properties[name].(map[string]any)
		if !ok {
			break
		}
		value, present, err := promptField(reader, fieldSchema)
		if err != nil {
			return nil, err
		}
		if present {
			responses[name] = value
		}
	}
	return responses, nil
}

func promptField(reader *bufio.Reader, fs map[string]any) (any, bool, error) {
	label, _ := fs["title"].(string)
	if label == "" {
		label = "Value"
	}

	fieldType, _ := fs["x-type"].(string)
	switch fieldType {
	case "select":
		return promptSelect(reader, fs, label)
	case "number":
		line, err := promptLine(reader, label)
		if err != nil || line == "" {
			return nil, false, err
		}
		n, perr := strconv.ParseFloat(line, 64)
		if perr != nil {
			// Let the engine's validator produce the error message.
			return line, true, nil
		}
		return n, true, nil
	default:
		line, err := promptLine(reader, label)
		if err != nil || line == "" {
			return nil, false, err
		}
		return line, true, nil
	}
}

func promptSelect(reader *bufio.Reader, fs map[string]any, label string) (any, bool, error) {
	multi := false
	choices, _ := fs["oneOf"].([]any)
	if fs["type"] == "array" {
		multi = true
		if items, ok := fs["items"].(map[string]any); ok {
			choices, _ = items["oneOf"].([]any)
		}
	}

	fmt.Println(label + ":")
	for _, raw := range choices {
		choice, _ := raw.(map[string]any)
		fmt.Printf("  [%v] %v\n", choice["const"], choice["title"])
	}

	prompt := "Choose"
	if multi {
		prompt = "Choose (comma-separated)"
	}
	line, err := promptLine(reader, prompt)
	if err != nil || line == "" {
		return nil, false, err
	}

	if !multi {
		return line, true, nil
	}
	parts := strings.Split(line, ",")
	ids := make([]any, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids, true, nil
}

func promptLine(reader *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s > ", label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
