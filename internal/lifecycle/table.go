// Package lifecycle holds the pieces shared by the listing, compliance,
// payment and shipment state machines: exhaustive transition tables, the
// InvalidTransition error, and transition tracing and metrics.
package lifecycle

import (
	"fmt"
	"slices"
)

// Machine names a state machine.
type Machine string

const (
	MachineListing    Machine = "listing"
	MachineCompliance Machine = "compliance"
	MachinePayment    Machine = "payment"
	MachineShipment   Machine = "shipment"
	MachineDocument   Machine = "document"
)

// Table is the closed set of legal edges for a machine. States with no
// outgoing edges are terminal.
type Table[S ~string] struct {
	machine Machine
	states  []S
	edges   map[S][]S
}

// NewTable builds a table. Every state must appear as a key, terminal states
// with an empty slice, so the table doubles as the enumeration. It panics on
// an edge to an undeclared state.
func NewTable[S ~string](machine Machine, edges map[S][]S) *Table[S] {
	t := &Table[S]{machine: machine, edges: make(map[S][]S, len(edges))}
	for from, tos := range edges {
		t.states = append(t.states, from)
		t.edges[from] = slices.Clone(tos)
	}
	for from, tos := range edges {
		for _, to := range tos {
			if _, ok := edges[to]; !ok {
				panic(fmt.Sprintf("lifecycle: %s edge %s->%s targets undeclared state", machine, from, to))
			}
		}
	}
	slices.Sort(t.states)
	return t
}

// Machine returns the machine the table belongs to.
func (t *Table[S]) Machine() Machine {
	return t.machine
}

// Valid reports whether s is a declared state.
func (t *Table[S]) Valid(s S) bool {
	_, ok := t.edges[s]
	return ok
}

// States returns all declared states in sorted order.
func (t *Table[S]) States() []S {
	return slices.Clone(t.states)
}

// Allowed reports whether from -> to is a declared edge.
func (t *Table[S]) Allowed(from, to S) bool {
	return slices.Contains(t.edges[from], to)
}

// Targets returns the legal next states from from.
func (t *Table[S]) Targets(from S) []S {
	return slices.Clone(t.edges[from])
}

// IsTerminal reports whether from has no outgoing edges.
func (t *Table[S]) IsTerminal(s S) bool {
	return t.Valid(s) && len(t.edges[s]) == 0
}

// Check returns an InvalidTransition error when from -> to is not an edge.
func (t *Table[S]) Check(from, to S) error {
	if !t.Valid(to) {
		return Reject(t.machine, string(from), string(to), fmt.Sprintf("unknown %s state %q", t.machine, to))
	}
	if t.IsTerminal(from) {
		return Reject(t.machine, string(from), string(to), fmt.Sprintf("%s is terminal", from))
	}
	if !t.Allowed(from, to) {
		return Reject(t.machine, string(from), string(to), fmt.Sprintf("no transition from %s to %s", from, to))
	}
	return nil
}
