package delay

import (
	_ "embed"
	"fmt"
	"io"
	"sort"

	"flight_gantt/internal/models"

	"github.com/jszwec/csvutil"
)

//go:embed codes.csv
var defaultCodesCSV []byte

// CodeTable is the delay code reference data. It is built once at startup and
// only read afterwards.
type CodeTable struct {
	entries map[string]models.DelayCodeEntry
}

// NewCodeTable builds a table, normalizing each code
func NewCodeTable(entries []models.DelayCodeEntry) *CodeTable {
	t := &CodeTable{entries: make(map[string]models.DelayCodeEntry, len(entries))}
	for _, e := range entries {
		code := NormalizeCode(e.Code)
		if code == "" {
			continue
		}
		e.Code = code
		t.entries[code] = e
	}
	return t
}

// DefaultCodeTable returns the built-in IATA delay code table
func DefaultCodeTable() *CodeTable {
	t, err := ParseCodeTable(defaultCodesCSV)
	if err != nil {
		panic(fmt.Sprintf("embedded delay codes are invalid: %v", err))
	}
	return t
}

// LoadCodeTable reads a CSV with code,external_id,description headers
func LoadCodeTable(r io.Reader) (*CodeTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read delay code table: %w", err)
	}
	return ParseCodeTable(data)
}

// ParseCodeTable decodes CSV bytes into a table
func ParseCodeTable(data []byte) (*CodeTable, error) {
	var entries []models.DelayCodeEntry
	if err := csvutil.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode delay code table: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("delay code table is empty")
	}
	return NewCodeTable(entries), nil
}

// Lookup returns the entry for a code in any accepted spelling ("1", "01")
func (t *CodeTable) Lookup(code string) (models.DelayCodeEntry, bool) {
	e, ok := t.entries[NormalizeCode(code)]
	return e, ok
}

// Len returns the number of codes
func (t *CodeTable) Len() int {
	return len(t.entries)
}

// Entries returns all entries ordered by code
func (t *CodeTable) Entries() []models.DelayCodeEntry {
	out := make([]models.DelayCodeEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
