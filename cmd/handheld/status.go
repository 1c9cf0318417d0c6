package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/handheld/internal/presentation/tui"
	httpAdapter "github.com/aretw0/handheld/pkg/adapters/http"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current snapshot of a station",
	Long: `Shows the snapshot of a running kiosk (--server) or, without it, the last
journaled snapshot of the configured station. Output is rendered markdown on a
terminal and plain markdown otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		var (
			state   domain.WorkflowState
			history []string
		)
		if server != "" {
			if state, err = fetchState(cmd.Context(), server); err != nil {
				return err
			}
		} else {
			if a.journal == nil {
				return errors.New("journal is disabled; set journal.driver or use --server")
			}
			record, err := a.journal.Load(cmd.Context(), a.cfg.Station)
			if err != nil {
				return fmt.Errorf("failed to load journal for %s: %w", a.cfg.Station, err)
			}
			state, history = record.State, record.History
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		}

		md := tui.StatusMarkdown(a.cfg.Station, state, history)
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			if rendered, err := tui.NewRenderer()(md); err == nil {
				md = rendered
			}
		}
		_, err = io.WriteString(out, md)
		return err
	},
}

// fetchState reads the snapshot served by a running kiosk.
func fetchState(ctx context.Context, server string) (domain.WorkflowState, error) {
	var state domain.WorkflowState

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	body, err := httpAdapter.NewClient(server).Open(ctx, "/state")
	if err != nil {
		return state, fmt.Errorf("failed to reach kiosk: %w", err)
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(&state); err != nil {
		return state, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return state, nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().String("server", "", "Base URL of a running kiosk server")
	statusCmd.Flags().Bool("json", false, "Print the raw snapshot as JSON")
}
