package cmd

import (
	"errors"
	"io/fs"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"treeterm/internal/document"
	"treeterm/internal/observability"
	"treeterm/internal/tui"
)

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [file]",
		Short: "Open a diagram on the canvas, creating it on first save",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := observability.GetLogger()

			var path string
			if len(args) == 1 {
				path = a.cfg.SavePath(args[0])
			}
			doc, err := openDocument(path)
			if err != nil {
				return err
			}

			m, err := tui.New(tui.Options{
				Config:   a.cfg,
				Document: doc,
				Path:     path,
				Logger:   log,
			})
			if err != nil {
				return err
			}
			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithMouseAllMotion(),
				tea.WithContext(cmd.Context()),
			)
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			log.Info("editor closed", zap.String("path", path))
			return nil
		},
	}
}

// openDocument loads path, or starts an empty document when path is empty
// or does not exist yet. The view is sized on the first window event.
func openDocument(path string) (*document.Document, error) {
	if path == "" {
		return document.New(0, 0), nil
	}
	doc, err := document.Load(path, 0, 0)
	if errors.Is(err, fs.ErrNotExist) {
		observability.GetLogger().Info("starting a new document", zap.String("path", path))
		return document.New(0, 0), nil
	}
	return doc, err
}
