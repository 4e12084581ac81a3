package models

// DelayCodeEntry is one row of the delay code reference table
type DelayCodeEntry struct {
	Code        string `csv:"code"`
	ExternalID  string `csv:"external_id"`
	Description string `csv:"description"`
}

// DelayEntry is a delay allocation attached to a flight
type DelayEntry struct {
	Code        string `json:"code"`
	ExternalID  string `json:"external_id,omitempty"`
	Minutes     int    `json:"minutes"`
	Description string `json:"description,omitempty"`
	Remark      string `json:"remark,omitempty"`
	Leg         Leg    `json:"leg,omitempty"`
}
