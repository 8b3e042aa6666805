package engine

import (
	"fmt"

	"go.uber.org/zap"
)

type ModeKind int

const (
	ModeSelect ModeKind = iota
	ModePlaceNode
	ModeConnect
)

func (k ModeKind) String() string {
	switch k {
	case ModeSelect:
		return "SELECT"
	case ModePlaceNode:
		return "PLACE"
	case ModeConnect:
		return "CONNECT"
	default:
		return fmt.Sprintf("ModeKind(%d)", int(k))
	}
}

// Mode is the interpretation applied to subsequent pointer input. NodeType is
// set only for ModePlaceNode; Source only for ModeConnect once a source node
// has been picked.
type Mode struct {
	Kind     ModeKind
	NodeType string
	Source   string
}

func (m Mode) String() string {
	switch m.Kind {
	case ModePlaceNode:
		return "PLACE " + m.NodeType
	case ModeConnect:
		if m.Source != "" {
			return "CONNECT from " + m.Source
		}
		return "CONNECT"
	default:
		return m.Kind.String()
	}
}

// ConnectStep is what a node click means in connect mode.
type ConnectStep int

const (
	StepIgnored ConnectStep = iota
	StepArmed
	StepToggledOff
	StepCommit
)

// Machine tracks the current editing mode. The zero state is Select and no
// state is terminal.
type Machine struct {
	cur Mode
	log *zap.Logger
}

func NewMachine(log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{log: log}
}

func (m *Machine) Current() Mode { return m.cur }

func (m *Machine) set(next Mode, input string) {
	if next == m.cur {
		return
	}
	m.log.Debug("mode transition",
		zap.Stringer("from", m.cur),
		zap.Stringer("to", next),
		zap.String("input", input))
	m.cur = next
}

// SelectNodeType arms the place-node tool from any state.
func (m *Machine) SelectNodeType(nodeType string) {
	m.set(Mode{Kind: ModePlaceNode, NodeType: nodeType}, "select node type")
}

// ActivateConnect enters connect mode with no source, from any state.
func (m *Machine) ActivateConnect() {
	m.set(Mode{Kind: ModeConnect}, "activate connect")
}

// ArmSource handles a click on nodeID while connecting. With no source yet
// the node becomes the source; otherwise it behaves like Target.
func (m *Machine) ArmSource(nodeID string) ConnectStep {
	if m.cur.Kind != ModeConnect {
		return StepIgnored
	}
	if m.cur.Source == "" {
		m.set(Mode{Kind: ModeConnect, Source: nodeID}, "pick source")
		return StepArmed
	}
	return m.Target(nodeID)
}

// Target handles a click or drop on nodeID once a source is armed. The same
// node toggles the source off; a different node asks the caller to commit.
// The mode only returns to Select through Committed.
func (m *Machine) Target(nodeID string) ConnectStep {
	if m.cur.Kind != ModeConnect || m.cur.Source == "" {
		return StepIgnored
	}
	if nodeID == m.cur.Source {
		m.set(Mode{Kind: ModeConnect}, "toggle source off")
		return StepToggledOff
	}
	return StepCommit
}

// Cancel returns to Select from any state.
func (m *Machine) Cancel() {
	m.set(Mode{}, "cancel")
}

// Committed returns to Select after a successful mutation.
func (m *Machine) Committed() {
	m.set(Mode{}, "commit")
}
