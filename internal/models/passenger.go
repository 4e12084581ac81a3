package models

// PassengerRecord is an opaque key/value bag as received from the
// departure control system. Field names vary between sources, so values are
// only ever read through the alias lists in the passenger package.
type PassengerRecord map[string]any
