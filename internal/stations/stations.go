package stations

import (
	"fmt"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
)

// Station is one row of the aerodrome code table
type Station struct {
	IATA string `csv:"iata"`
	ICAO string `csv:"icao"`
	Name string `csv:"name,omitempty"`
}

// Table maps between IATA and ICAO aerodrome codes. It is read-only once built.
type Table struct {
	toICAO map[string]string
	toIATA map[string]string
	names  map[string]string
}

var defaultStations = []Station{
	{"AKL", "NZAA", "Auckland"},
	{"WLG", "NZWN", "Wellington"},
	{"CHC", "NZCH", "Christchurch"},
	{"PPQ", "NZPP", "Paraparaumu"},
	{"WHK", "NZWK", "Whakatane"},
	{"WAG", "NZWU", "Whanganui"},
	{"CHT", "NZCI", "Chatham Islands"},
	{"HLZ", "NZHN", "Hamilton"},
	{"ROT", "NZRO", "Rotorua"},
	{"NSN", "NZNS", "Nelson"},
	{"ZQN", "NZQN", "Queenstown"},
	{"DUD", "NZDN", "Dunedin"},
	{"IVC", "NZNV", "Invercargill"},
	{"GIS", "NZGS", "Gisborne"},
	{"NPE", "NZNR", "Napier"},
	{"TRG", "NZTG", "Tauranga"},
	{"BHE", "NZWB", "Woodbourne"},
	{"VAV", "NFTV", "Vava'u"},
	{"TBU", "NFTF", "Tongatapu"},
	{"HAP", "NFTL", "Ha'apai"},
}

// Default returns the built-in aerodrome table
func Default() *Table {
	return New(defaultStations)
}

// New builds a table from station rows, skipping rows without both codes
func New(rows []Station) *Table {
	t := &Table{
		toICAO: make(map[string]string, len(rows)),
		toIATA: make(map[string]string, len(rows)),
		names:  make(map[string]string, len(rows)),
	}
	for _, r := range rows {
		iata := strings.ToUpper(strings.TrimSpace(r.IATA))
		icao := strings.ToUpper(strings.TrimSpace(r.ICAO))
		if iata == "" || icao == "" {
			continue
		}
		t.toICAO[iata] = icao
		t.toIATA[icao] = iata
		if r.Name != "" {
			t.names[iata] = r.Name
		}
	}
	return t
}

// Load reads a CSV with iata,icao[,name] headers and merges it over the built-in table
func Load(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read station table: %w", err)
	}

	var rows []Station
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode station table: %w", err)
	}
	return New(append(append([]Station{}, defaultStations...), rows...)), nil
}

// Len returns the number of mapped stations
func (t *Table) Len() int {
	return len(t.toICAO)
}

// ToICAO returns the ICAO code for an IATA or ICAO input, or "" when unknown
func (t *Table) ToICAO(code string) string {
	c := Clean(code)
	if len(c) == 4 {
		return c
	}
	return t.toICAO[c]
}

// ToIATA returns the IATA code for an IATA or ICAO input, or "" when unknown
func (t *Table) ToIATA(code string) string {
	c := Clean(code)
	if len(c) == 3 {
		return c
	}
	return t.toIATA[c]
}

// Name returns the station name for a code, falling back to the code itself
func (t *Table) Name(code string) string {
	if n, ok := t.names[t.ToIATA(code)]; ok {
		return n
	}
	return Clean(code)
}

// Equivalent reports whether two codes name the same aerodrome
func (t *Table) Equivalent(a, b string) bool {
	ca, cb := Clean(a), Clean(b)
	if ca == "" || cb == "" {
		return false
	}
	if ca == cb {
		return true
	}
	if ia, ib := t.ToICAO(ca), t.ToICAO(cb); ia != "" && ia == ib {
		return true
	}
	return false
}

// Clean extracts a code from free text such as "Auckland (AKL)" and uppercases it
func Clean(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if open := strings.Index(s, "("); open >= 0 {
		if end := strings.Index(s[open:], ")"); end > 1 {
			return strings.TrimSpace(s[open+1 : open+end])
		}
	}
	return s
}
