package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-architect/internal/history"
	"github.com/jonathan/cv-architect/internal/observability"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show or delete saved analyses",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd.Context(), func(store *history.Store) error {
			return listHistory(cmd.Context(), store, cmd.OutOrStdout(), time.Local)
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a saved analysis without contacting the AI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *history.Store) error {
			return showHistory(cmd.Context(), store, cmd.OutOrStdout(), args[0], historyShowJSON, historyShowFull)
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *history.Store) error {
			return deleteHistory(cmd.Context(), store, cmd.OutOrStdout(), args[0])
		})
	},
}

var (
	historyShowJSON bool
	historyShowFull bool
)

func init() {
	historyShowCmd.Flags().BoolVar(&historyShowJSON, "json", false, "Print the history item as JSON")
	historyShowCmd.Flags().BoolVar(&historyShowFull, "full", false, "Do not truncate long lists")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

// withStore opens the configured history for the duration of fn.
func withStore(ctx context.Context, fn func(*history.Store) error) error {
	store, err := openStore(ctx, settings, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}

func listHistory(ctx context.Context, store *history.Store, out io.Writer, loc *time.Location) error {
	observability.NewPrinter(out).PrintHistory(store.LoadAll(ctx), loc)
	return nil
}

func showHistory(ctx context.Context, store *history.Store, out io.Writer, id string, asJSON, full bool) error {
	item, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, item)
	}
	printer := observability.NewPrinter(out)
	printer.Full = full
	printer.PrintAnalysis(&item.Result)
	return nil
}

// deleteHistory removes id. Deleting an unknown id is not an error.
func deleteHistory(ctx context.Context, store *history.Store, out io.Writer, id string) error {
	if err := store.Remove(ctx, id); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Deleted %s\n", id)
	return err
}
