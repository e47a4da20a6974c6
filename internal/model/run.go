package model

import "time"

// RunStatus represents the current state of a pipeline run.
type RunStatus string

const (
	RunStatusDiscovering RunStatus = "discovering_industries"
	RunStatusEnumerating RunStatus = "enumerating_leads"
	RunStatusEvaluating  RunStatus = "evaluating"
	RunStatusPersisting  RunStatus = "persisting"
	RunStatusAlerting    RunStatus = "alerting"
	RunStatusDone        RunStatus = "done"
	RunStatusNoData      RunStatus = "no_data"
	RunStatusFailed      RunStatus = "failed"
)

// Terminal reports whether no further transitions follow this status.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusDone, RunStatusNoData, RunStatusFailed:
		return true
	default:
		return false
	}
}

// Run is the persisted record of one pipeline execution.
type Run struct {
	ID         string    `json:"id"`
	Geo        string    `json:"geo"`
	Industries []string  `json:"industries"`
	Status     RunStatus `json:"status"`
	RowCount   int       `json:"row_count"`
	HotCount   int       `json:"hot_count"`
	ReportRef  string    `json:"report_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
