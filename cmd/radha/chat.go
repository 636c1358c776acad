package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/radha-ai/radha/internal/assistant"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat with the assistant",
		Long: `Start an interactive conversation. The session lives only for the
lifetime of this command; nothing is stored on disk.

Commands inside the session:
  :model     show which backend answers right now
  :new       start a fresh session (clears context)
  :quit      exit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)

			historyFile := filepath.Join(os.TempDir(), ".radha_history")
			if f, err := os.Open(historyFile); err == nil {
				_, _ = line.ReadHistory(f)
				f.Close()
			}
			defer func() {
				if f, err := os.Create(historyFile); err == nil {
					_, _ = line.WriteHistory(f)
					f.Close()
				}
			}()

			sessionID := uuid.NewString()
			model := app.assistant.CurrentModel()
			if model == "" {
				model = "none"
			}
			fmt.Printf("🎓 RADHA learning assistant (backend: %s). Type :quit to exit.\n", model)

			for {
				input, err := line.Prompt("you> ")
				if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
					fmt.Println("bye!")
					return nil
				}
				if err != nil {
					return err
				}

				input = strings.TrimSpace(input)
				if input == "" {
					continue
				}
				line.AppendHistory(input)

				switch input {
				case ":quit", ":exit":
					fmt.Println("bye!")
					return nil
				case ":model":
					fmt.Println("current backend:", app.assistant.CurrentModel())
					continue
				case ":new":
					sessionID = uuid.NewString()
					fmt.Println("started a fresh session")
					continue
				}

				res, err := app.assistant.Do(cmd.Context(), assistant.TaskRequest{
					Action:         assistant.ActionChat,
					Query:          input,
					SessionID:      sessionID,
					RequestedModel: modelFlag,
				})
				if err != nil {
					fmt.Fprintln(os.Stderr, "error:", err)
					continue
				}
				fmt.Printf("radha [%s]> %s\n\n", res.ModelUsed, res.RawText)
			}
		},
	}
}
