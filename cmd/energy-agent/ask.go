// cmd/energy-agent/ask.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"energy-agent/internal/agent"
	"energy-agent/internal/common/observability"
	"energy-agent/internal/models"
	processquestion "energy-agent/internal/workers/energy/process-question"

	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	var (
		output    string
		requestID string
	)
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("unknown output format %q", output)
			}
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			zapLog, log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer zapLog.Sync()

			a, err := agent.New(cfg, log, agent.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, processquestion.LoadConfig(cfg).Timeout)
			defer cancel()
			if err := a.Connect(ctx, 3, time.Second); err != nil {
				return err
			}
			if requestID != "" {
				ctx = observability.WithRequestID(ctx, requestID)
			}

			resp, err := a.Pipeline.Process(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	cmd.Flags().StringVar(&requestID, "request-id", "", "request id recorded in the response metadata")
	return cmd
}

func printResponse(w io.Writer, resp *models.StandardResponse, output string) error {
	if output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	fmt.Fprintln(w, resp.Answer)
	if resp.Status == models.StatusSuccess {
		fmt.Fprintf(w, "\n%.2f %s (%s, %s)\n", resp.Value, resp.Unit, resp.Period, resp.Type)
	}
	for _, s := range resp.HelpfulSuggestions {
		fmt.Fprintf(w, "  • %s\n", s)
	}
	return nil
}
