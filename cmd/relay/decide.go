package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"agent-relay/internal/agent"
)

func newDecideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide [file|-]",
		Short: "Ask the model for one decision and print it as JSON",
		Long: `Reads a history from a file or stdin ("-") and prints the next decision.
The input is either {"history": [...]} or a bare array of messages.
--message appends a user message; with no input, it is the whole history.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message, _ := cmd.Flags().GetString("message")

			var history []agent.Message
			if len(args) == 1 {
				raw, err := readInput(args[0], cmd.InOrStdin())
				if err != nil {
					return err
				}
				history, err = parseHistory(raw)
				if err != nil {
					return err
				}
			} else if message == "" {
				return errors.New("provide a history file, - for stdin, or --message")
			}

			if message != "" {
				history = append(history, agent.Message{Role: agent.RoleUser, Content: message})
			}

			cfg, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			r, err := newRelay(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = r.close()
			}()

			decision := r.service.Decide(cmd.Context(), history)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(decision)
		},
	}

	cmd.Flags().StringP("message", "m", "", "user message to append to the history")
	return cmd
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	return raw, nil
}

// parseHistory accepts a decide request body or a bare message array.
func parseHistory(raw []byte) ([]agent.Message, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	if raw[0] == '[' {
		var history []agent.Message
		if err := json.Unmarshal(raw, &history); err != nil {
			return nil, fmt.Errorf("invalid history: %w", err)
		}
		return history, nil
	}

	var req struct {
		History []agent.Message `json:"history"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("invalid history: %w", err)
	}
	return req.History, nil
}
