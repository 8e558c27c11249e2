package model

// ClockTime is a 12-hour wall-clock instant as operators enter it.
// Meridiem is "AM" or "PM"; 12 AM means midnight and 12 PM means noon.
type ClockTime struct {
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Meridiem string `json:"meridiem"`
}

// StopTimeEntry is transient operator input: an explicit wall-clock time
// for one location of a route.  Entries are only consumed while building
// a run's segment array; their effect is baked into each descriptor's
// time fields and the entries themselves are not persisted.
type StopTimeEntry struct {
	Location string    `json:"location"`
	Time     ClockTime `json:"time"`
}

// TariffEntry is an optional operator override for one origin/destination
// pair.  Price always applies when the entry matches a pair; the time
// fields are optional and, when both are present, take precedence over
// every other schedule source for that pair.
type TariffEntry struct {
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	Price       float64    `json:"price"`
	Departure   *ClockTime `json:"departure,omitempty"`
	Arrival     *ClockTime `json:"arrival,omitempty"`
}
