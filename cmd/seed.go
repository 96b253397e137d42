package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/socratiz/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>...",
	Short: "Validate curriculum documents and store them with their flows",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		s := &seed.Seeder{Docs: e.backend.Docs, Log: e.log, Force: force}
		out := cmd.OutOrStdout()

		failed := 0
		for _, path := range args {
			res, err := s.SeedFile(cmd.Context(), path)
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
				if errors.Is(err, seed.ErrStaleVersion) {
					fmt.Fprintln(os.Stderr, "  use --force to overwrite")
				}
				continue
			}
			fmt.Fprintf(out, "✓ %-40s  %-8s  %d states\n", res.ContentPath, res.Version, len(res.Flow.States))
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().Bool("force", false, "Overwrite stored content even if its version is newer")
}
