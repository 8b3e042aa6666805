package document

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"treeterm/internal/geom"
)

const fileVersion = 1

type fileFormat struct {
	Version       int            `toml:"version"`
	View          geom.ViewRect  `toml:"view"`
	Nodes         []Node         `toml:"node"`
	Relationships []Relationship `toml:"relationship"`
}

// Save writes the document, including the view, as TOML.
func (d *Document) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer f.Close()

	ff := fileFormat{
		Version:       fileVersion,
		View:          d.view,
		Nodes:         d.nodes,
		Relationships: d.rels,
	}
	if err := toml.NewEncoder(f).Encode(ff); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	d.modified = false
	return nil
}

// Load reads a document written by Save and sizes its view to width by
// height, or to the saved size when either is zero. Relationships whose
// endpoints are missing are dropped.
func Load(path string, width, height float64) (*Document, error) {
	var ff fileFormat
	if _, err := toml.DecodeFile(path, &ff); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if ff.Version > fileVersion {
		return nil, fmt.Errorf("load %s: unsupported version %d", path, ff.Version)
	}

	if width <= 0 || height <= 0 {
		width, height = ff.View.Width, ff.View.Height
	}
	d := New(width, height)
	if ff.View.Scale > 0 {
		d.view = ff.View.Resize(width, height)
	}
	for _, n := range ff.Nodes {
		if n.ID == "" {
			n.ID = d.newID()
		}
		if n.Width <= 0 {
			n.Width = DefaultNodeWidth
		}
		if n.Height <= 0 {
			n.Height = DefaultNodeHeight
		}
		if n.Label == "" {
			n.Label = Label(n.Type)
		}
		d.nodes = append(d.nodes, n)
	}
	for _, r := range ff.Relationships {
		if d.index(r.Source) < 0 || d.index(r.Target) < 0 {
			continue
		}
		if r.ID == "" {
			r.ID = d.newID()
		}
		d.rels = append(d.rels, r)
	}
	return d, nil
}
