package cmd

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"treeterm/internal/document"
	"treeterm/internal/observability"
	"treeterm/internal/tui"
)

func newExportCmd(a *app) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Render a saved diagram to PNG or plain text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := a.cfg.SavePath(args[0])
			format = strings.ToLower(format)
			if format != "png" && format != "txt" {
				return fmt.Errorf("unknown format %q (want png or txt)", format)
			}
			doc, err := document.Load(src, 0, 0)
			if err != nil {
				return err
			}
			out := output
			if out == "" {
				out = strings.TrimSuffix(src, filepath.Ext(src)) + "." + format
			}

			switch format {
			case "png":
				ex := a.cfg.Export
				err = doc.ExportPNG(out, document.PNGOptions{
					CellWidth:  ex.CellWidth,
					CellHeight: ex.CellHeight,
					Padding:    ex.Padding,
					FontSize:   ex.FontSize,
				})
			case "txt":
				err = exportText(doc, out)
			}
			if err != nil {
				return err
			}
			observability.GetLogger().Info("diagram exported",
				zap.String("source", src),
				zap.String("output", out),
				zap.String("format", format))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", good.Sprint("exported"), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "png", "output format: png or txt")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: the input name with the format's extension)")
	return cmd
}

// exportText fits the view to the whole diagram with a one cell margin and
// writes it as it would appear on screen.
func exportText(doc *document.Document, path string) error {
	minX, minY, maxX, maxY, ok := doc.Bounds()
	if !ok {
		return document.ErrEmptyDocument
	}
	const margin = 1
	w := int(math.Ceil(maxX-minX)) + 2*margin
	h := int(math.Ceil(maxY-minY)) + 2*margin

	doc.Resize(float64(w), float64(h))
	doc.ResetView()
	doc.PanView(minX-margin, minY-margin)

	if err := os.WriteFile(path, []byte(tui.RenderText(doc, w, h)), 0o644); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
