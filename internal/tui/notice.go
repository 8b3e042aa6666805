package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"treeterm/internal/engine"
)

type noticeExpiredMsg struct{ id int }

// noticeBoard is the engine's Notifier. It keeps only the latest notice;
// each one is shown until its own expiry tick arrives.
type noticeBoard struct {
	current  engine.Notice
	id       int
	shown    bool
	pending  bool
	duration time.Duration
	log      *zap.Logger
}

func newNoticeBoard(d time.Duration, log *zap.Logger) *noticeBoard {
	if d <= 0 {
		d = 3 * time.Second
	}
	return &noticeBoard{duration: d, log: log}
}

func (b *noticeBoard) Notify(n engine.Notice) {
	b.id++
	b.current = n
	b.shown = true
	b.pending = true
	b.log.Debug("notice",
		zap.String("title", n.Title),
		zap.String("message", n.Message),
		zap.Stringer("severity", n.Severity))
}

// expiry returns the tick that clears the newest notice, once per notice.
func (b *noticeBoard) expiry() tea.Cmd {
	if !b.pending {
		return nil
	}
	b.pending = false
	id := b.id
	return tea.Tick(b.duration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func (b *noticeBoard) expire(id int) {
	if id == b.id {
		b.shown = false
	}
}

func (b *noticeBoard) visible() (engine.Notice, bool) {
	return b.current, b.shown
}
