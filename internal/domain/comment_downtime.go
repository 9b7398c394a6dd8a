package domain

// Comment is a free-text annotation attached to a Checkable. Unlike Host
// and Service, comments are not independently-registered configurable
// objects in this implementation — they travel as plain values inside
// their owning Checkable's Comments map, matching how apievents.cpp
// serializes/deserializes them inline as part of AddComment's payload
// rather than looking them up by type+name.
type Comment struct {
	ID         string  `json:"id"`
	EntryType  int     `json:"entry_type"`
	Author     string  `json:"author"`
	Text       string  `json:"text"`
	ExpireTime float64 `json:"expire_time,omitempty"`
}

// Downtime is a scheduled maintenance window attached to a Checkable.
type Downtime struct {
	ID          string  `json:"id"`
	Author      string  `json:"author"`
	Comment     string  `json:"comment"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	Fixed       bool    `json:"fixed"`
	TriggeredBy string  `json:"triggered_by,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	ScheduledBy string  `json:"scheduled_by,omitempty"`
}
