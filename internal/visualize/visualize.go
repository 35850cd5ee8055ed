// Package visualize renders state tables as Graphviz DOT, JSON and YAML.
//
// Handlers choose their targets at run time, so a table alone has no edges.
// Edges come from observed activity: pass the records of a run (or a
// journal) through EdgesFromRecords.
package visualize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comalice/fsmx"
)

// Visualizer renders tables using Catalog for event names. A nil Catalog
// falls back to numeric names.
type Visualizer struct {
	Catalog *fsmx.Catalog
}

// Edge is an observed transition.
type Edge struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Label string `json:"label" yaml:"label"`
}

// Table is the serialisable description of a state table.
type Table struct {
	Name   string             `json:"name" yaml:"name"`
	States []StateDescription `json:"states" yaml:"states"`
}

// StateDescription is a StateInfo with event names resolved.
type StateDescription struct {
	ID       fsmx.StateID `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Accepts  []string     `json:"accepts,omitempty" yaml:"accepts,omitempty"`
	Handled  []string     `json:"handled,omitempty" yaml:"handled,omitempty"`
	HasEnter bool         `json:"hasEnter" yaml:"hasEnter"`
	HasExit  bool         `json:"hasExit" yaml:"hasExit"`
}

// Describe resolves the names in states.
func (v *Visualizer) Describe(name string, states []fsmx.StateInfo) Table {
	t := Table{Name: name, States: make([]StateDescription, len(states))}
	for i, s := range states {
		t.States[i] = StateDescription{
			ID:       s.ID,
			Name:     s.Name,
			Accepts:  v.eventNames(s.Accepts),
			Handled:  v.eventNames(s.Handled),
			HasEnter: s.HasEnter,
			HasExit:  s.HasExit,
		}
	}
	return t
}

// ExportJSON serialises t as indented JSON with a trailing newline.
func (v *Visualizer) ExportJSON(t Table) ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ExportYAML serialises t as YAML.
func (v *Visualizer) ExportYAML(t Table) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportDOT generates Graphviz DOT source. current is highlighted unless it
// is fsmx.NoState.
func (v *Visualizer) ExportDOT(name string, states []fsmx.StateInfo, current fsmx.StateID, edges []Edge) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", quote(name))
	buf.WriteString(`  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)

	for _, s := range states {
		label := escape(s.Name)
		if names := v.eventNames(s.Accepts); len(names) > 0 {
			label += `\naccepts: ` + escape(strings.Join(names, ", "))
		}
		style := ""
		if s.ID == current {
			style = ` style="rounded,filled" fillcolor=lightgreen`
		}
		fmt.Fprintf(&buf, "  %s [label=\"%s\"%s];\n", quote(s.Name), label, style)
	}

	for _, e := range edges {
		fmt.Fprintf(&buf, "  %s -> %s [label=%s];\n", quote(e.From), quote(e.To), quote(e.Label))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// EdgesFromRecords collects the distinct transitions and self-transitions
// in recs, sorted by source, target and label.
func EdgesFromRecords(recs []fsmx.Record) []Edge {
	seen := make(map[Edge]bool)
	var edges []Edge
	for _, r := range recs {
		if r.Kind != fsmx.RecordTransition && r.Kind != fsmx.RecordSelf {
			continue
		}
		label := r.EventName
		if label == "" {
			label = "(enter)"
		}
		e := Edge{From: r.FromName, To: r.ToName, Label: label}
		if seen[e] {
			continue
		}
		seen[e] = true
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Label < b.Label
	})
	return edges
}

func (v *Visualizer) eventNames(ids []fsmx.EventID) []string {
	if len(ids) == 0 {
		return nil
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = v.Catalog.Name(id)
	}
	return names
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func quote(s string) string {
	return `"` + escape(s) + `"`
}
