package models

// Status is the normalized operational state of a flight
type Status string

const (
	StatusPlanning      Status = "planning"
	StatusOnBlocks      Status = "onblocks"
	StatusOffBlocks     Status = "offblocks"
	StatusTakeOff       Status = "takeoff"
	StatusLanded        Status = "landed"
	StatusReturnToStand Status = "returntostand"
	StatusDiverted      Status = "diverted"
	StatusUnknown       Status = "unknown"
)

// AllStatuses lists every state a status string can normalize to
var AllStatuses = []Status{
	StatusPlanning,
	StatusOnBlocks,
	StatusOffBlocks,
	StatusTakeOff,
	StatusLanded,
	StatusReturnToStand,
	StatusDiverted,
	StatusUnknown,
}
