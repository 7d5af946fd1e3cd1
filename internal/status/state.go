// Package status tracks the lifecycle of one import or delete operation.
package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/chatvault/internal/bus"
)

// Stage is a literal operation state surfaced to callers.
type Stage string

const (
	Idle     Stage = "idle"
	Reading  Stage = "reading"
	Parsing  Stage = "parsing"
	Storing  Stage = "storing"
	Complete Stage = "complete"
	Error    Stage = "error"
)

// validTransitions defines the allowed stage order. Error is reachable from
// every working stage; Complete only from Storing.
var validTransitions = map[Stage][]Stage{
	Idle:     {Reading, Error},
	Reading:  {Parsing, Error},
	Parsing:  {Storing, Error},
	Storing:  {Complete, Error},
	Complete: {Idle},
	Error:    {Idle},
}

// Machine tracks and enforces stage transitions for a single operation.
type Machine struct {
	mu      sync.RWMutex
	current Stage
	errMsg  string
	bus     *bus.Bus
}

// NewMachine creates a machine in the Idle stage.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{current: Idle, bus: b}
}

// Current returns the current stage.
func (m *Machine) Current() Stage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// ErrorMessage returns the terminal error text, empty outside Error.
func (m *Machine) ErrorMessage() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errMsg
}

// Transition attempts to move to a new stage. Returns an error if the move
// is not allowed.
func (m *Machine) Transition(to Stage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if to != Error {
		m.errMsg = ""
	}
	if m.bus != nil {
		m.bus.Emit("import.stage", StageChange{From: from, To: to})
	}
	return nil
}

// Fail moves to the terminal Error stage carrying the underlying message
// verbatim for diagnostics.
func (m *Machine) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	from := m.current
	m.current = Error
	m.errMsg = err.Error()
	if m.bus != nil {
		m.bus.Emit("import.stage", StageChange{From: from, To: Error, Message: m.errMsg})
	}
}

// StageChange is the payload for stage change events.
type StageChange struct {
	From    Stage
	To      Stage
	Message string // set on transitions into Error
}
