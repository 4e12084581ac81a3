package flight

import (
	"strings"

	"flight_gantt/internal/models"
)

type statusRule struct {
	keyword string
	status  models.Status
}

// Evaluated in order; the first keyword found wins
var statusRules = []statusRule{
	{"planning", models.StatusPlanning},
	{"on blocks", models.StatusOnBlocks},
	{"off blocks", models.StatusOffBlocks},
	{"take off", models.StatusTakeOff},
	{"landed", models.StatusLanded},
	{"return to stand", models.StatusReturnToStand},
	{"divert", models.StatusDiverted},
}

// NormalizeStatus maps free-text operational status onto a lifecycle state
func NormalizeStatus(raw string) models.Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return models.StatusUnknown
	}
	// Already-normalized values map onto themselves
	for _, st := range models.AllStatuses {
		if s == string(st) {
			return st
		}
	}
	for _, r := range statusRules {
		if strings.Contains(s, r.keyword) {
			return r.status
		}
	}
	return models.StatusUnknown
}
