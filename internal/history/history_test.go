package history

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/garyjia/ar-reminder/internal/invoice"
	"github.com/garyjia/ar-reminder/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWithID(id string) report.Run {
	return report.Run{RunID: id, TopCustomers: []report.CustomerRisk{}}
}

func TestNew(t *testing.T) {
	h := New()

	assert.Equal(t, DefaultMaxEntries, h.Meta.MaxEntries)
	assert.Equal(t, "1.0", h.Meta.SchemaVersion)
	assert.Equal(t, "AR run history using sliding window", h.Meta.Description)
	assert.Equal(t, 0, h.Len())
	assert.Nil(t, CurrentRun(h))
	assert.Nil(t, PreviousRun(h))
	assert.Equal(t, h, Initialize())
}

func TestAddRun_SlidingWindow(t *testing.T) {
	h := New()
	for i := 1; i <= 25; i++ {
		h = AddRun(h, runWithID(fmt.Sprintf("run-%02d", i)))
	}

	require.Equal(t, 20, h.Len())
	assert.Equal(t, "run-06", h.Runs[0].RunID)
	assert.Equal(t, "run-25", CurrentRun(h).RunID)
	assert.Equal(t, "run-24", PreviousRun(h).RunID)
}

func TestAddRun_CopyOnWrite(t *testing.T) {
	original := AddRun(New(), runWithID("a"))

	next := AddRun(original, runWithID("b"))

	assert.Equal(t, 1, original.Len())
	assert.Equal(t, 2, next.Len())
	next.Runs[0].RunID = "changed"
	assert.Equal(t, "a", original.Runs[0].RunID)
}

func TestAddRun_DoesNotShareTopCustomers(t *testing.T) {
	run := runWithID("a")
	run.TopCustomers = []report.CustomerRisk{{Name: "Acme"}}
	original := AddRun(New(), run)

	next := AddRun(original, runWithID("b"))
	next.Runs[0].TopCustomers[0].Name = "changed"
	assert.Equal(t, "Acme", original.Runs[0].TopCustomers[0].Name)

	run.TopCustomers[0].Name = "caller"
	assert.Equal(t, "Acme", original.Runs[0].TopCustomers[0].Name)

	current := CurrentRun(original)
	current.TopCustomers[0].Name = "reader"
	assert.Equal(t, "Acme", original.Runs[0].TopCustomers[0].Name)
}

func TestAddRun_MaxEntriesFallback(t *testing.T) {
	h := &History{Meta: Meta{MaxEntries: 0}}
	for i := 0; i < 22; i++ {
		h = AddRun(h, runWithID(fmt.Sprint(i)))
	}
	assert.Equal(t, DefaultMaxEntries, h.Len())

	small := &History{Meta: Meta{MaxEntries: 2}}
	small = AddRun(AddRun(AddRun(small, runWithID("1")), runWithID("2")), runWithID("3"))
	assert.Equal(t, []string{"2", "3"}, []string{small.Runs[0].RunID, small.Runs[1].RunID})
}

func TestAddRun_NilHistory(t *testing.T) {
	h := AddRun(nil, runWithID("first"))

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, DefaultMaxEntries, h.Meta.MaxEntries)
}

func sampleHistory(t *testing.T) *History {
	t.Helper()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []invoice.Row{
		{"Customer": "Acme", "Amount": "100.25", "Due date": "2024-01-01"},
		{"Customer": "Globex", "Amount": "50", "Due date": "2023-11-01"},
		{"Customer": "Acme", "Amount": "50", "Due date": "2024-04-01"},
	}
	run, err := report.CalculateARMetrics(invoice.NormalizeRows(rows, now), now)
	require.NoError(t, err)

	h := AddRun(New(), runWithID("2024-02-01"))
	return AddRun(h, *run)
}

func TestMarshal_RoundTrip(t *testing.T) {
	h := sampleHistory(t)

	data, err := Marshal(h)
	require.NoError(t, err)
	parsed, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, h, parsed)
}

func TestWrite_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleHistory(t)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{\n  \"meta\": {\n    \"max_entries\": 20,"))
	assert.Contains(t, out, `"90_plus"`)
	assert.Contains(t, out, `"run_timestamp": "2024-03-01T00:00:00.000Z"`)
}

func TestUnmarshal_Validation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  error
	}{
		{name: "not json", doc: "not json", err: ErrMalformed},
		{name: "missing meta", doc: `{"runs": []}`, err: ErrInvalidStructure},
		{name: "null meta", doc: `{"meta": null, "runs": []}`, err: ErrInvalidStructure},
		{name: "missing runs", doc: `{"meta": {"max_entries": 20}}`, err: ErrInvalidStructure},
		{name: "runs not array", doc: `{"meta": {"max_entries": 20}, "runs": {}}`, err: ErrInvalidStructure},
		{name: "bad run", doc: `{"meta": {"max_entries": 20}, "runs": [1]}`, err: ErrInvalidStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestUnmarshal_EmptyRuns(t *testing.T) {
	h, err := Read(strings.NewReader(`{"meta": {"max_entries": 5, "schema_version": "1.0", "description": "x"}, "runs": []}`))
	require.NoError(t, err)

	assert.Equal(t, 5, h.Meta.MaxEntries)
	assert.NotNil(t, h.Runs)
	assert.Nil(t, CurrentRun(h))
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", ExportFilename(time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)))
	h := sampleHistory(t)

	require.NoError(t, Save(path, h))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ar-history-2024-03-01.json", filepath.Base(path))
	assert.Equal(t, h, loaded)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestNewWithMaxEntries(t *testing.T) {
	h := NewWithMaxEntries(3)
	for i := 1; i <= 5; i++ {
		h = AddRun(h, runWithID(fmt.Sprintf("run-%d", i)))
	}

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, "run-3", h.Runs[0].RunID)
	assert.Equal(t, DefaultMaxEntries, NewWithMaxEntries(0).Meta.MaxEntries)
}

func TestRecord(t *testing.T) {
	h := sampleHistory(t)
	latest := *CurrentRun(h)

	first := Record(nil, latest)
	assert.Equal(t, 1, first.History.Len())
	assert.Nil(t, first.Previous)
	require.Len(t, first.KPIs, 6)
	assert.Nil(t, first.KPIs[0].Delta)
	require.NotEmpty(t, first.Insights)
	assert.Contains(t, first.Insights[len(first.Insights)-1], "Overall AR health is")

	second := Record(first.History, latest)
	assert.Equal(t, 2, second.History.Len())
	assert.Equal(t, 1, first.History.Len())
	require.NotNil(t, second.Previous)
	require.NotNil(t, second.KPIs[0].Delta)
	assert.Equal(t, 0.0, second.KPIs[0].Delta.Absolute)
	assert.Equal(t, latest, second.Current)
}
