package domain

import "time"

// RunState is the lifecycle state of a pool build run.
type RunState string

const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunSucceeded RunState = "succeeded"
	RunFailed    RunState = "failed"
)

// Trigger identifies what started a run.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
	TriggerCLI       Trigger = "cli"
)

// RunRecord describes a single run.
type RunRecord struct {
	RunID       string     `json:"runId"`
	Trigger     Trigger    `json:"trigger"`
	State       RunState   `json:"state"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
	PoolCount   int        `json:"poolCount"`
	MemberCount int        `json:"memberCount"`
	Scanned     int        `json:"scanned"`
	Error       string     `json:"error,omitempty"`
}

// RunStatus is what the status endpoint reports.
type RunStatus struct {
	State    RunState   `json:"state"`
	InFlight int        `json:"inFlight"`
	LastRun  *RunRecord `json:"lastRun,omitempty"`
}
