package models

// MaintenanceInfo mirrors the flags stored next to the global metadata
// version. UpdateType is free text set by whoever published last
// ("semester_start", "minor_fix").
type MaintenanceInfo struct {
	MaintenanceMode bool   `json:"maintenance_mode"`
	Message         string `json:"maintenance_message,omitempty"`
	SemesterBreak   bool   `json:"semester_break"`
	UpdateType      string `json:"update_type,omitempty"`
	Version         int64  `json:"version"`
}

// Blocking reports whether the client should show a notice instead of a routine.
func (m MaintenanceInfo) Blocking() bool {
	return m.MaintenanceMode || m.SemesterBreak
}
