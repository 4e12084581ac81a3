package delay

import (
	"fmt"
	"strings"
	"unicode"

	"flight_gantt/internal/models"
)

// Row is one delay line as entered by the operator
type Row struct {
	Code    string
	Minutes int
	Remark  string
	Leg     models.Leg
}

// ValidationError rejects a whole batch of rows
type ValidationError struct {
	Unknown []string // normalized codes not in the table, in entry order
	Uncoded int      // rows with minutes but no code
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("unknown delay codes: %s", strings.Join(e.Unknown, ", ")))
	}
	if e.Uncoded > 0 {
		parts = append(parts, fmt.Sprintf("%d delay rows without a code", e.Uncoded))
	}
	return strings.Join(parts, "; ")
}

// NormalizeCode keeps only digits and left-pads single digits: "1" becomes "01"
func NormalizeCode(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	code := b.String()
	if len(code) == 1 {
		return "0" + code
	}
	return code
}

// Validate normalizes the rows of one edit session and enriches them from the
// table. Rows with neither a code nor positive minutes are discarded. If any
// remaining row fails, nothing is returned and the error lists every offender.
func (t *CodeTable) Validate(rows []Row) ([]models.DelayEntry, error) {
	entries := make([]models.DelayEntry, 0, len(rows))
	verr := &ValidationError{}
	seen := make(map[string]bool)

	for _, r := range rows {
		code := NormalizeCode(r.Code)
		if code == "" && r.Minutes <= 0 {
			continue
		}
		if code == "" {
			verr.Uncoded++
			continue
		}

		ref, ok := t.entries[code]
		if !ok {
			if !seen[code] {
				verr.Unknown = append(verr.Unknown, code)
				seen[code] = true
			}
			continue
		}

		minutes := r.Minutes
		if minutes < 0 {
			minutes = 0
		}
		entries = append(entries, models.DelayEntry{
			Code:        code,
			ExternalID:  ref.ExternalID,
			Minutes:     minutes,
			Description: ref.Description,
			Remark:      strings.TrimSpace(r.Remark),
			Leg:         r.Leg,
		})
	}

	if len(verr.Unknown) > 0 || verr.Uncoded > 0 {
		return nil, verr
	}
	return entries, nil
}
