package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/deusflow/trenddigest/internal/digest"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the digest schedule in Beijing time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printSchedule(cmd.OutOrStdout(), time.Now())
		return nil
	},
}

func printSchedule(w io.Writer, now time.Time) {
	bt := now.In(digest.Beijing)
	fmt.Fprintf(w, "Beijing time: %s\n", bt.Format("2006-01-02 15:04"))

	if typ, ok := digest.TypeAt(now); ok {
		fmt.Fprintf(w, "Window open: %s\n", typ.Label())
	} else {
		fmt.Fprintln(w, "Window open: none")
	}

	slot, at := digest.NextSlot(now)
	fmt.Fprintf(w, "Next: %s at %s (in %s)\n", slot.Type.Label(), at.Format("2006-01-02 15:04"), at.Sub(bt).Truncate(time.Minute))

	fmt.Fprintln(w, "Slots:")
	for _, s := range digest.Schedule {
		fmt.Fprintf(w, "  %02d:00-%02d:%02d  %s\n", s.Hour, s.Hour, digest.WindowMinutes-1, s.Type)
	}
}
