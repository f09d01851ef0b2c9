package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"canvas-ai/internal/adapter/store"
	"canvas-ai/internal/domain"
)

type historyCmd struct {
	Limit int `short:"n" default:"20" help:"Number of entries to show."`
}

func (c *historyCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	h, err := store.NewSQLiteHistoryStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer h.Close()

	entries, err := h.Recent(context.Background(), c.Limit)
	if err != nil {
		return err
	}
	return printHistory(os.Stdout, entries)
}

func printHistory(w io.Writer, entries []domain.HistoryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No prompts recorded yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tSTATUS\tOBJECTS\tMS\tPROVIDER\tPROMPT")
	for _, e := range entries {
		status := e.Status
		if e.Error != "" {
			status += ": " + truncate(e.Error, 40)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			e.ID, e.CreatedAt.Local().Format(time.DateTime), status, e.ObjectCount, e.DurationMs, e.Provider, truncate(e.Prompt, 60))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
