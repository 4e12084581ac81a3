package seatmap

import "strings"

// LastRowMode describes how the final row differs from the others
type LastRowMode int

const (
	LastRowNormal   LastRowMode = iota
	LastRowBench                // an extra seat fills the aisle
	LastRowLeftOnly             // only left-side columns exist
)

// Topology is a named seat layout for one aircraft family
type Topology struct {
	Name        string
	FirstRow    int
	LastRow     int
	SkipRows    []int // row numbers not fitted, e.g. 13
	Left        []string
	Right       []string
	LastRowMode LastRowMode
	BenchColumn string // column letter of the aisle seat in a bench row
	HeadRow     bool   // first row is a single seat in the first left column
}

// Rows returns the fitted row numbers in order
func (t Topology) Rows() []int {
	skip := make(map[int]bool, len(t.SkipRows))
	for _, r := range t.SkipRows {
		skip[r] = true
	}
	rows := make([]int, 0, t.LastRow-t.FirstRow+1)
	for r := t.FirstRow; r <= t.LastRow; r++ {
		if !skip[r] {
			rows = append(rows, r)
		}
	}
	return rows
}

// Capacity returns the number of seats in the layout
func (t Topology) Capacity() int {
	n := 0
	for _, r := range t.Rows() {
		n += len(t.cells(r))
	}
	return n
}

type cell struct {
	column string
	side   Side
}

// cells lists the seats of one row from left to right
func (t Topology) cells(row int) []cell {
	rows := t.Rows()
	if len(rows) == 0 {
		return nil
	}
	first, last := rows[0], rows[len(rows)-1]

	if t.HeadRow && row == first && len(t.Left) > 0 {
		return []cell{{t.Left[0], SideLeft}}
	}

	out := make([]cell, 0, len(t.Left)+len(t.Right)+1)
	for _, c := range t.Left {
		out = append(out, cell{c, SideLeft})
	}
	if row == last {
		switch t.LastRowMode {
		case LastRowLeftOnly:
			return out
		case LastRowBench:
			if t.BenchColumn != "" {
				out = append(out, cell{t.BenchColumn, SideAisle})
			}
		}
	}
	for _, c := range t.Right {
		out = append(out, cell{c, SideRight})
	}
	return out
}

var builtinTopologies = []Topology{
	{Name: "AT72", FirstRow: 1, LastRow: 17, Left: []string{"A", "B"}, Right: []string{"C", "D"}},
	{Name: "AT72-66", FirstRow: 1, LastRow: 17, Left: []string{"A", "B"}, Right: []string{"C", "D"}, LastRowMode: LastRowLeftOnly},
	{Name: "SF34", FirstRow: 1, LastRow: 12, Left: []string{"A"}, Right: []string{"C", "D"}, LastRowMode: LastRowLeftOnly},
	{Name: "CV58", FirstRow: 1, LastRow: 13, Left: []string{"A", "B"}, Right: []string{"C", "D"}, LastRowMode: LastRowBench, BenchColumn: "E"},
	{Name: "SW4", FirstRow: 1, LastRow: 9, Left: []string{"A"}, Right: []string{"B"}, LastRowMode: LastRowBench, BenchColumn: "C"},
	{Name: "C208", FirstRow: 1, LastRow: 4, Left: []string{"A"}, Right: []string{"B", "C"}, HeadRow: true},
}

// ruleKind orders how a rule is matched
type ruleKind int

const (
	matchTail ruleKind = iota
	matchType
	matchRegistrationFragment
)

type rule struct {
	kind     ruleKind
	pattern  string
	topology string
}

// Tail overrides are listed first so they win over the family rule
var builtinRules = []rule{
	{matchTail, "ZK-MCF", "AT72-66"},
	{matchType, "AT7", "AT72"},
	{matchType, "ATR", "AT72"},
	{matchType, "SF34", "SF34"},
	{matchType, "SAAB", "SF34"},
	{matchType, "CV5", "CV58"},
	{matchType, "CONVAIR", "CV58"},
	{matchType, "SW4", "SW4"},
	{matchType, "METRO", "SW4"},
	{matchType, "C208", "C208"},
	{matchType, "CARAVAN", "C208"},
	{matchRegistrationFragment, "ZK-CI", "CV58"},
	{matchRegistrationFragment, "ZK-MC", "AT72"},
}

func normalizeRegistration(reg string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(reg), " ", ""))
}

func (r rule) matches(aircraftType, registration string) bool {
	switch r.kind {
	case matchTail:
		return registration == r.pattern || strings.ReplaceAll(registration, "-", "") == strings.ReplaceAll(r.pattern, "-", "")
	case matchType:
		return aircraftType != "" && strings.Contains(aircraftType, r.pattern)
	case matchRegistrationFragment:
		return strings.Contains(registration, r.pattern)
	}
	return false
}
