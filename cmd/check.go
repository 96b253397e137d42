package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/socratiz/internal/flow"
	"github.com/abhisek/socratiz/internal/safety"
	"github.com/abhisek/socratiz/internal/ui/theme"
)

var checkCmd = &cobra.Command{
	Use:   "check <message>",
	Short: "Run the safety filter over a tutor message",
	Long: "Run the safety filter over a tutor message and report every violation.\n" +
		"With --student the message is treated as student input instead: it is\n" +
		"sanitized and screened for frustration and off-limits topics.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		intent, _ := cmd.Flags().GetString("intent")
		student, _ := cmd.Flags().GetBool("student")
		asJSON, _ := cmd.Flags().GetBool("json")

		out := cmd.OutOrStdout()
		if student {
			return checkStudent(out, args[0], asJSON)
		}

		if !flow.Intent(intent).Valid() {
			return fmt.Errorf("unknown intent %q", intent)
		}
		res := safety.Check(args[0], intent)
		if asJSON {
			return writeJSON(out, res)
		}
		printResult(out, res)
		return nil
	},
}

func init() {
	checkCmd.Flags().String("intent", string(flow.IntentAskProbe), "Flow intent the message was written for")
	checkCmd.Flags().Bool("student", false, "Screen the message as student input")
	checkCmd.Flags().Bool("json", false, "Print the result as JSON")
}

func printResult(w io.Writer, res safety.Result) {
	if res.Passed {
		fmt.Fprintln(w, theme.Pass.Render("✓ passed"))
		return
	}
	fmt.Fprintln(w, theme.Fail.Render(fmt.Sprintf("✗ %d violation(s)", len(res.Violations))))
	for i, v := range res.Violations {
		fmt.Fprintf(w, "  %-20s %s\n", res.Kinds[i], v)
	}
	if res.HasRewrite() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Rewrite.Render("rewrite: ")+res.FilteredText)
	}
}

type studentCheck struct {
	Sanitized   string `json:"sanitized"`
	Frustrated  bool   `json:"frustrated"`
	Appropriate bool   `json:"appropriate"`
	Category    string `json:"category,omitempty"`
}

func checkStudent(w io.Writer, text string, asJSON bool) error {
	clean := safety.Sanitize(text)
	sc := studentCheck{
		Sanitized:   clean,
		Frustrated:  safety.DetectFrustration(clean),
		Appropriate: safety.IsAppropriate(clean),
		Category:    safety.NonEducationalCategory(clean),
	}
	if asJSON {
		return writeJSON(w, sc)
	}

	fmt.Fprintf(w, "sanitized:   %s\n", sc.Sanitized)
	fmt.Fprintf(w, "frustrated:  %s\n", yesNo(sc.Frustrated, theme.Fail, theme.Pass))
	fmt.Fprintf(w, "appropriate: %s\n", yesNo(sc.Appropriate, theme.Pass, theme.Fail))
	if sc.Category != "" {
		fmt.Fprintf(w, "category:    %s\n", theme.Hint.Render(sc.Category))
	}
	return nil
}

type renderer interface {
	Render(strs ...string) string
}

func yesNo(b bool, yes, no renderer) string {
	if b {
		return yes.Render("yes")
	}
	return no.Render("no")
}
