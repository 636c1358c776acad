package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/radha-ai/radha/internal/assistant"
)

func newAskCmd() *cobra.Command {
	var (
		gradeLevel string
		subject    string
		language   string
	)

	cmd := &cobra.Command{
		Use:   "ask <action> <query>",
		Short: "One-shot task without a session",
		Long: `Run a single task and print the answer. The action is any of:
chat, notes, quiz, summary, doubt, curriculum, grade_code, practice, explain,
study_plan.

Examples:
  radha ask doubt "Why is the sky blue?"
  radha ask quiz "photosynthesis" --grade-level "8th grade"
  radha ask grade_code 'print(1+1)' --language python`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := assistant.ParseAction(args[0])
			if err != nil {
				return err
			}
			query := strings.Join(args[1:], " ")

			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}

			res, err := app.assistant.Do(cmd.Context(), assistant.TaskRequest{
				Action:         action,
				Query:          query,
				RequestedModel: modelFlag,
				Params: map[string]string{
					"grade_level": gradeLevel,
					"subject":     subject,
					"language":    language,
				},
			})
			if err != nil {
				return err
			}

			fmt.Println(res.RawText)
			if qa, ok := res.Structured.(*assistant.PracticeQA); ok {
				fmt.Println("\nreference answer:", qa.Answer)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&gradeLevel, "grade-level", "", "target grade level (default: high school)")
	cmd.Flags().StringVar(&subject, "subject", "", "subject for doubt and practice tasks")
	cmd.Flags().StringVar(&language, "language", "", "language for grade_code (default: python)")
	return cmd
}
