package domain

// JobStatus tracks a job through queued -> running -> terminal.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusPartial   JobStatus = "partial"
)

// Terminal reports whether no further transitions are expected.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed || s == JobStatusPartial
}

// JobType names the kind of work a job performs.
type JobType string

const (
	JobTypeGenerate     JobType = "generate"
	JobTypeScore        JobType = "score"
	JobTypeAvailability JobType = "availability"
	JobTypeResearch     JobType = "research"
)

// Progress keys recorded by pipeline stages.
const (
	ProgressGenerated           = "generated"
	ProgressFiltered            = "filtered"
	ProgressScored              = "scored"
	ProgressAvailabilityChecked = "availability_checked"
	ProgressPersisted           = "persisted"
)
