package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/socratiz/internal/curriculum"
	"github.com/abhisek/socratiz/internal/flow"
	"github.com/abhisek/socratiz/internal/seed"
)

var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Build and inspect conversation flows",
}

var flowBuildCmd = &cobra.Command{
	Use:   "build <file>",
	Short: "Compile a curriculum document and print its flow as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := curriculum.LoadFile(args[0])
		if err != nil {
			return err
		}
		f := flow.Build(doc)
		if err := flow.Validate(f); err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), f)
	},
}

var flowShowCmd = &cobra.Command{
	Use:   "show <content-path>",
	Short: "Show the stored flow for a seeded document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		doc, f, err := seed.LoadFlow(cmd.Context(), e.backend.Docs, curriculum.JoinPath(args[0]))
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), f)
		}
		printFlow(cmd.OutOrStdout(), doc, f)
		return nil
	},
}

func init() {
	flowShowCmd.Flags().Bool("json", false, "Print the flow as JSON")

	flowCmd.AddCommand(flowBuildCmd)
	flowCmd.AddCommand(flowShowCmd)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printFlow(w io.Writer, doc *curriculum.Document, f *flow.Flow) {
	fmt.Fprintf(w, "Content:  %s\n", doc.ContentPath())
	fmt.Fprintf(w, "Version:  %s\n", doc.Version())
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-12s  %-11s  %s\n", "State", "Intent", "Prompt")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	for _, s := range f.States {
		prompt := s.Prompt
		if s.CheckpointRef != "" {
			prompt = "[" + s.CheckpointRef + "]"
		}
		if len(prompt) > 45 {
			prompt = prompt[:42] + "..."
		}
		fmt.Fprintf(w, "%-12s  %-11s  %s\n", s.ID, s.Intent, prompt)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-12s  %-12s  %s\n", "From", "On", "To")
	fmt.Fprintln(w, strings.Repeat("─", 40))
	for _, t := range f.Transitions {
		fmt.Fprintf(w, "%-12s  %-12s  %s\n", t.From, t.On, t.To)
	}
}
