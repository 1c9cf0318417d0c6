package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/handheld/internal/presentation/graph"
	"github.com/aretw0/handheld/pkg/session"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Manage journaled station snapshots",
	Long:  `List, inspect, graph and remove the snapshots kept by the configured journal driver.`,
}

func journalManager(cmd *cobra.Command) (*app, *session.Manager, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, nil, err
	}
	if a.journal == nil {
		_ = a.Close()
		return nil, nil, errors.New("journal is disabled; set journal.driver")
	}
	return a, a.journal, nil
}

var journalLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List journaled stations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, mgr, err := journalManager(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		stations, err := mgr.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list stations: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(stations) == 0 {
			fmt.Fprintln(out, "No journaled stations found.")
			return nil
		}
		fmt.Fprintln(out, "Journaled Stations:")
		for _, s := range stations {
			fmt.Fprintln(out, "- "+s)
		}
		return nil
	},
}

var journalInspectCmd = &cobra.Command{
	Use:   "inspect <station>",
	Short: "Print the journaled record of a station",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, mgr, err := journalManager(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		record, err := mgr.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load '%s': %w", args[0], err)
		}

		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var journalGraphCmd = &cobra.Command{
	Use:   "graph <station>",
	Short: "Export the visited states of a station as a Mermaid diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, mgr, err := journalManager(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		record, err := mgr.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load '%s': %w", args[0], err)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.RecordMermaid(record))
		return nil
	},
}

var journalRmCmd = &cobra.Command{
	Use:   "rm <station>...",
	Short: "Remove one or more journaled stations",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return errors.New("name at least one station or pass --all")
		}

		a, mgr, err := journalManager(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		if all {
			if args, err = mgr.List(cmd.Context()); err != nil {
				return fmt.Errorf("failed to list stations: %w", err)
			}
		}

		hasError := false
		for _, station := range args {
			if err := mgr.Delete(cmd.Context(), station); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing '%s': %v\n", station, err)
				hasError = true
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed station '%s'\n", station)
		}
		if hasError {
			return errors.New("some stations could not be removed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalLsCmd, journalInspectCmd, journalGraphCmd, journalRmCmd)
	journalRmCmd.Flags().Bool("all", false, "Remove every journaled station")
}
