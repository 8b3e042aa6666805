// Package tui is the terminal host of the interaction engine: it lays out a
// palette row, the canvas surface and a status line, feeds bubbletea mouse
// and key messages to the engine and renders the document.
package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"treeterm/internal/config"
	"treeterm/internal/document"
	"treeterm/internal/engine"
	"treeterm/internal/geom"
)

const (
	paletteRows = 1
	statusRows  = 1

	defaultFilename = "treeterm.toml"
)

var ErrNoConfig = errors.New("tui: a config is required")

type autopanFrameMsg struct{ gen uint64 }

type Options struct {
	Config   *config.Config
	Document *document.Document
	// Path is where ctrl+s saves. Empty means defaultFilename in the
	// configured save directory.
	Path   string
	Logger *zap.Logger
	// Clipboard receives copied text; nil uses the system clipboard.
	Clipboard func(string) error
}

type Model struct {
	cfg     *config.Config
	doc     *document.Document
	eng     *engine.Engine
	log     *zap.Logger
	path    string
	theme   theme
	notices *noticeBoard
	palette []paletteEntry
	copy    func(string) error

	width, height int
	pointer       geom.Position
	pointerSeen   bool
	pressed       bool
	scheduledGen  uint64
	help          bool
	confirm       pendingAction
}

// pendingAction is a destructive key waiting for a y/n answer.
type pendingAction int

const (
	actionNone pendingAction = iota
	actionQuit
	actionNew
)

func New(opts Options) (*Model, error) {
	if opts.Config == nil {
		return nil, ErrNoConfig
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	doc := opts.Document
	if doc == nil {
		doc = document.New(0, 0)
	}
	path := opts.Path
	if path == "" {
		path = opts.Config.SavePath(defaultFilename)
	}

	ed := opts.Config.Editor
	m := &Model{
		cfg:     opts.Config,
		doc:     doc,
		log:     log.Named("tui"),
		path:    path,
		theme:   defaultTheme(),
		notices: newNoticeBoard(ed.NoticeDuration, log.Named("notice")),
		copy:    opts.Clipboard,
	}
	if m.copy == nil {
		m.copy = writeClipboard
	}
	eng, err := engine.New(engine.Options{
		Document: doc,
		Surface:  m.surface,
		Notifier: m.notices,
		Logger:   log,
		AutoPan: engine.AutoPanConfig{
			EdgeThreshold: opts.Config.AutoPan.EdgeThreshold,
			MaxSpeed:      opts.Config.AutoPan.MaxSpeed,
		},
		NodeKeys:          ed.NodeTypes(),
		ConnectKey:        ed.ConnectKey,
		RelationshipKey:   ed.RelationshipKey,
		RelationshipTypes: ed.RelationshipTypes,
		DuplicateWindow:   ed.DuplicateWindow,
		DuplicateRadius:   ed.DuplicateRadius,
		ZoomStep:          ed.ZoomStep,
	})
	if err != nil {
		return nil, err
	}
	m.eng = eng
	m.palette = buildPalette(ed.NodeTypes(), ed.ConnectKey)
	return m, nil
}

// surface is the canvas area between the palette row and the status line,
// recomputed from the latest window size on every query.
func (m *Model) surface() geom.SurfaceBox {
	h := m.height - paletteRows - statusRows
	if m.width <= 0 || h <= 0 {
		return geom.SurfaceBox{}
	}
	return geom.SurfaceBox{Top: paletteRows, Width: float64(m.width), Height: float64(h)}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		box := m.surface()
		m.doc.Resize(box.Width, box.Height)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		cmd = m.handleKey(msg)

	case autopanFrameMsg:
		if m.eng.Frame(msg.gen) {
			return m, m.frameTick(msg.gen)
		}
		return m, nil

	case noticeExpiredMsg:
		m.notices.expire(msg.id)
		return m, nil
	}
	return m, tea.Batch(cmd, m.autopanCmd(), m.notices.expiry())
}

// autopanCmd schedules the first frame of a loop the engine has just
// started. Later frames are chained from autopanFrameMsg.
func (m *Model) autopanCmd() tea.Cmd {
	ap := m.eng.AutoPan()
	if !ap.Running() || ap.Generation() == m.scheduledGen {
		return nil
	}
	m.scheduledGen = ap.Generation()
	return m.frameTick(m.scheduledGen)
}

func (m *Model) frameTick(gen uint64) tea.Cmd {
	return tea.Tick(m.cfg.AutoPan.FrameInterval, func(time.Time) tea.Msg {
		return autopanFrameMsg{gen: gen}
	})
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := geom.Position{X: float64(msg.X), Y: float64(msg.Y)}
	m.pointer = p
	m.pointerSeen = true

	switch msg.Type {
	case tea.MouseLeft:
		// Terminals report a held button's motion as repeated presses.
		if m.pressed {
			m.eng.PointerMove(p)
			return
		}
		m.pressed = true
		if msg.Y < paletteRows {
			m.pressPalette(msg.X, p)
			return
		}
		m.outcome("pointer down", m.eng.PointerDown(p))
	case tea.MouseMotion:
		m.eng.PointerMove(p)
	case tea.MouseRelease:
		if !m.pressed {
			return
		}
		m.pressed = false
		m.outcome("pointer up", m.eng.PointerUp(p))
	case tea.MouseWheelUp:
		m.eng.Wheel(p, 1)
	case tea.MouseWheelDown:
		m.eng.Wheel(p, -1)
	}
}

func (m *Model) outcome(input string, out engine.Outcome) {
	if out.Kind == engine.OutcomeNone {
		return
	}
	m.log.Debug(input,
		zap.Stringer("outcome", out.Kind),
		zap.String("id", out.ID),
		zap.String("reason", out.Reason),
		zap.Error(out.Err))
}

// hovered returns the node under the last known pointer position.
func (m *Model) hovered() (document.Node, bool) {
	if !m.pointerSeen || !m.surface().Contains(m.pointer) {
		return document.Node{}, false
	}
	p, err := m.eng.ToCanvas(m.pointer)
	if err != nil {
		return document.Node{}, false
	}
	id, ok := m.doc.NodeAt(p)
	if !ok {
		return document.Node{}, false
	}
	return m.doc.Node(id)
}

func (m *Model) save() {
	if err := m.doc.Save(m.path); err != nil {
		m.log.Error("save failed", zap.String("path", m.path), zap.Error(err))
		m.notices.Notify(engine.Notice{Title: "Save failed", Message: err.Error(), Severity: engine.SeverityError})
		return
	}
	m.log.Info("document saved", zap.String("path", m.path))
	m.notices.Notify(engine.Notice{Title: "Saved", Message: m.path, Severity: engine.SeverityInfo})
}

func (m *Model) deleteHovered() {
	n, ok := m.hovered()
	if !ok {
		return
	}
	if m.eng.Mode().Source == n.ID {
		m.eng.Cancel()
	} else {
		m.eng.CancelDrag()
	}
	if err := m.doc.DeleteNode(n.ID); err != nil {
		m.notices.Notify(engine.Notice{Title: "Node not deleted", Message: err.Error(), Severity: engine.SeverityError})
		return
	}
	m.log.Info("node deleted", zap.String("id", n.ID), zap.String("type", n.Type))
}

// guarded reports whether discarding the document needs a confirmation.
func (m *Model) guarded() bool {
	return m.cfg.Editor.Confirmations && m.doc.Modified()
}

// newDocument drops the diagram and returns the view to the origin. The
// file path is kept for the next save.
func (m *Model) newDocument() {
	m.eng.Cancel()
	m.doc.Reset()
	m.log.Info("new document", zap.String("path", m.path))
	m.notices.Notify(engine.Notice{Title: "New document", Severity: engine.SeverityInfo})
}

// detachHovered removes every relationship touching the hovered node.
func (m *Model) detachHovered() {
	n, ok := m.hovered()
	if !ok {
		return
	}
	removed := 0
	for _, r := range m.doc.Relationships() {
		if r.Source != n.ID && r.Target != n.ID {
			continue
		}
		if err := m.doc.DeleteRelationship(r.ID); err != nil {
			m.notices.Notify(engine.Notice{Title: "Relationship not deleted", Message: err.Error(), Severity: engine.SeverityError})
			return
		}
		removed++
	}
	m.log.Info("node detached", zap.String("id", n.ID), zap.Int("relationships", removed))
}

func (m *Model) copyHovered() {
	n, ok := m.hovered()
	if !ok {
		return
	}
	if err := m.copy(nodeSummary(m.doc, n)); err != nil {
		m.log.Warn("clipboard write failed", zap.Error(err))
		m.notices.Notify(engine.Notice{Title: "Copy failed", Message: err.Error(), Severity: engine.SeverityError})
		return
	}
	m.notices.Notify(engine.Notice{Title: "Copied", Message: fmt.Sprintf("%q", n.Label), Severity: engine.SeverityInfo})
}

// Engine exposes the interaction engine, mainly for tests.
func (m *Model) Engine() *engine.Engine { return m.eng }
