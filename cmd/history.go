package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/socratiz/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List recent sessions, or show the turns of one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			turns, err := e.backend.Turns.QueryTurns(ctx, args[0], store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query turns: %w", err)
			}
			if len(turns) == 0 {
				return fmt.Errorf("session %s not found", args[0])
			}
			printTurns(out, turns)
			return nil
		}

		sessions, err := e.backend.Turns.RecentSessions(ctx, limit)
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		printSessions(out, sessions)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of rows to show")
}

func printSessions(w io.Writer, sessions []store.SessionSummary) {
	fmt.Fprintf(w, "%-36s  %-19s  %-12s  %-32s  %s\n",
		"Session", "Last Turn", "Student", "Content", "Turns")
	fmt.Fprintln(w, strings.Repeat("─", 112))
	for _, s := range sessions {
		fmt.Fprintf(w, "%-36s  %-19s  %-12s  %-32s  %d\n",
			s.SessionID,
			s.LastAt.Local().Format("2006-01-02 15:04:05"),
			clip(s.StudentID, 12),
			clip(s.ContentPath, 32),
			s.Turns,
		)
	}
}

func printTurns(w io.Writer, turns []store.Turn) {
	fmt.Fprintf(w, "%-5s  %-8s  %-7s  %-10s  %-11s  %-5s  %s\n",
		"Seq", "Time", "Role", "State", "Event", "Flags", "Text")
	fmt.Fprintln(w, strings.Repeat("─", 100))
	for _, t := range turns {
		fmt.Fprintf(w, "%-5d  %-8s  %-7s  %-10s  %-11s  %-5s  %s\n",
			t.Sequence,
			t.Timestamp.Local().Format("15:04:05"),
			t.Role,
			t.StateID,
			t.Event,
			turnFlags(t),
			clip(t.Text, 60),
		)
	}
}

// turnFlags packs the per-turn markers into a short column: F filtered,
// B fallback, ! frustrated.
func turnFlags(t store.Turn) string {
	var b strings.Builder
	if t.Filtered {
		b.WriteByte('F')
	}
	if t.Fallback {
		b.WriteByte('B')
	}
	if t.Frustrated {
		b.WriteByte('!')
	}
	return b.String()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
