package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/socratiz/internal/app"
	"github.com/abhisek/socratiz/internal/curriculum"
	"github.com/abhisek/socratiz/internal/seed"
	"github.com/abhisek/socratiz/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play [content-path]",
	Short: "Start a tutoring session for a seeded document",
	Long:  "Start a tutoring session. Without a content path, pick one from the seeded documents.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		studentID, _ := cmd.Flags().GetString("student-id")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		var contentPath string
		if len(args) == 1 {
			contentPath = curriculum.JoinPath(args[0])
		} else {
			paths, err := seed.ContentPaths(ctx, e.backend.Docs)
			if err != nil {
				return fmt.Errorf("list content: %w", err)
			}
			if len(paths) == 0 {
				return errors.New("nothing seeded yet; run socratiz seed <file> first")
			}
			contentPath, err = app.Pick(ctx, "Choose a lesson", paths)
			if err != nil {
				return err
			}
			if contentPath == "" {
				return nil
			}
		}

		doc, f, err := seed.LoadFlow(ctx, e.backend.Docs, contentPath)
		if err != nil {
			return fmt.Errorf("load %s: %w", contentPath, err)
		}

		s, err := session.New(session.Options{
			Flow:        f,
			Document:    doc,
			Turns:       e.backend.Turns,
			Log:         e.log,
			StudentID:   studentID,
			ContentPath: contentPath,
		})
		if err != nil {
			return err
		}
		e.log.Info("play", "session_id", s.ID(), "content_path", contentPath)

		return app.Run(ctx, app.Options{
			Session: s,
			Flow:    f,
			Title:   doc.Topic(),
		})
	},
}

func init() {
	playCmd.Flags().String("student-id", "", "Student identifier recorded with the session")
}
