package visualize

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/examples/motor"
	"github.com/comalice/fsmx/testutil"
)

func runMotor(t *testing.T) (*fsmx.Machine[*motor.Control], []fsmx.Record) {
	t.Helper()
	rec := &testutil.Recorder{}
	m, err := motor.New(fsmx.WithObserver(rec))
	require.NoError(t, err)
	require.NoError(t, m.Start(fsmx.SkipEnter()))
	for _, e := range []fsmx.Event{motor.Start{}, motor.Start{}, motor.Stop{}, motor.Stopped{}} {
		require.NoError(t, m.Receive(e))
	}
	return m, rec.Records()
}

func TestExportDOT_Motor(t *testing.T) {
	m, recs := runMotor(t)
	v := &Visualizer{Catalog: motor.Catalog()}

	dot := v.ExportDOT("motor", m.Describe(), m.CurrentStateID(), EdgesFromRecords(recs))

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".dot.golden"))
	g.Assert(t, "motor", []byte(dot))
}

func TestExportDOT_NoCurrentState(t *testing.T) {
	m, err := motor.New()
	require.NoError(t, err)
	v := &Visualizer{Catalog: motor.Catalog()}

	dot := v.ExportDOT("motor", m.Describe(), fsmx.NoState, nil)
	assert.NotContains(t, dot, "fillcolor")
	assert.NotContains(t, dot, "->")
	assert.True(t, strings.HasPrefix(dot, `digraph "motor" {`))
}

func TestExportDOT_EscapesQuotes(t *testing.T) {
	v := &Visualizer{}
	states := []fsmx.StateInfo{{ID: 0, Name: `say "hi"`, Accepts: []fsmx.EventID{7}}}

	dot := v.ExportDOT(`m"x`, states, 0, []Edge{{From: `say "hi"`, To: `say "hi"`, Label: "e"}})
	assert.Contains(t, dot, `digraph "m\"x" {`)
	assert.Contains(t, dot, `"say \"hi\"" [label="say \"hi\"\naccepts: event(7)" style="rounded,filled" fillcolor=lightgreen];`)
	assert.Contains(t, dot, `"say \"hi\"" -> "say \"hi\"" [label="e"];`)
}

func TestEdgesFromRecords(t *testing.T) {
	recs := []fsmx.Record{
		{Kind: fsmx.RecordDispatch, FromName: "A", ToName: "A", EventName: "go"},
		{Kind: fsmx.RecordTransition, FromName: "B", ToName: "A", EventName: "back"},
		{Kind: fsmx.RecordTransition, FromName: "A", ToName: "B", EventName: "go"},
		{Kind: fsmx.RecordTransition, FromName: "A", ToName: "B", EventName: "go"},
		{Kind: fsmx.RecordSelf, FromName: "A", ToName: "A", EventName: "again"},
		{Kind: fsmx.RecordTransition, FromName: "A", ToName: "C"},
	}

	assert.Equal(t, []Edge{
		{From: "A", To: "A", Label: "again"},
		{From: "A", To: "B", Label: "go"},
		{From: "A", To: "C", Label: "(enter)"},
		{From: "B", To: "A", Label: "back"},
	}, EdgesFromRecords(recs))
	assert.Empty(t, EdgesFromRecords(nil))
}

func TestExportJSON_Motor(t *testing.T) {
	m, err := motor.New()
	require.NoError(t, err)
	v := &Visualizer{Catalog: motor.Catalog()}

	data, err := v.ExportJSON(v.Describe("motor", m.Describe()))
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".json.golden"))
	g.Assert(t, "motor", data)
}

func TestExportYAML_RoundTrip(t *testing.T) {
	m, err := motor.New()
	require.NoError(t, err)
	v := &Visualizer{Catalog: motor.Catalog()}
	table := v.Describe("motor", m.Describe())

	data, err := v.ExportYAML(table)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: motor\n")

	var back Table
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, table, back)
}

func TestDescribe_NilCatalog(t *testing.T) {
	v := &Visualizer{}
	table := v.Describe("t", []fsmx.StateInfo{{ID: 0, Name: "only", Accepts: []fsmx.EventID{2}}})

	require.Len(t, table.States, 1)
	assert.Equal(t, []string{"event(2)"}, table.States[0].Accepts)
	assert.Nil(t, table.States[0].Handled)
}
