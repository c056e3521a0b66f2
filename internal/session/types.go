// Package session provides file-backed persistence for memoria sessions:
// one JSON document per session, a bounded index for listing, and the
// checkpoint/merge engine that mutates them.
package session

import "time"

// Status is the lifecycle state of a session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// WorkPhase describes what kind of work a session is currently doing.
type WorkPhase string

const (
	PhasePlanning       WorkPhase = "planning"
	PhaseImplementation WorkPhase = "implementation"
	PhaseTesting        WorkPhase = "testing"
	PhaseDebugging      WorkPhase = "debugging"
	PhaseReview         WorkPhase = "review"
	PhaseCompleted      WorkPhase = "completed"
)

// TaskStatus is the state of an incomplete task.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not_started"
	TaskInProgress TaskStatus = "in_progress"
	TaskBlocked    TaskStatus = "blocked"
)

// Priority ranks tool outputs.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Effort is a rough size estimate for a task.
type Effort string

const (
	EffortSmall  Effort = "small"
	EffortMedium Effort = "medium"
	EffortLarge  Effort = "large"
)

// Session is one unit of tracked work, stored as .memoria/sessions/<id>.json.
type Session struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Project string `json:"project"`
	Status  Status `json:"status"`
	Summary string `json:"summary"`

	FilesModified []string `json:"filesModified"`
	FilesRead     []string `json:"filesRead"`

	Decisions          []Decision          `json:"decisions"`
	CompletedTasks     []string            `json:"completedTasks"`
	IncompleteTasks    []IncompleteTask    `json:"incompleteTasks"`
	Blockers           []Blocker           `json:"blockers"`
	Dependencies       []Dependency        `json:"dependencies"`
	AttemptedSolutions []AttemptedSolution `json:"attemptedSolutions"`
	RejectedApproaches []RejectedApproach  `json:"rejectedApproaches"`
	ToolOutputs        []ToolOutput        `json:"toolOutputs"`

	ContextState     *ContextState `json:"contextState,omitempty"`
	ConversationText string        `json:"conversationText,omitempty"`

	Checkpoints []Checkpoint `json:"checkpoints"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Duration    string     `json:"duration,omitempty"`

	GitBranch string `json:"gitBranch,omitempty"`
	GitCommit string `json:"gitCommit,omitempty"`
}

// Checkpoint is an immutable, numbered snapshot appended to a session.
type Checkpoint struct {
	ID              string    `json:"id"`
	Number          int       `json:"number"`
	Summary         string    `json:"summary"`
	IncrementalNote string    `json:"incrementalNote,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// IncompleteTask is a task left open at the time of a checkpoint.
type IncompleteTask struct {
	Task            string     `json:"task"`
	ActiveForm      string     `json:"activeForm,omitempty"`
	Status          TaskStatus `json:"status"`
	Priority        float64    `json:"priority"`
	Reason          string     `json:"reason,omitempty"`
	NextAction      string     `json:"nextAction,omitempty"`
	RelatedFiles    []string   `json:"relatedFiles,omitempty"`
	EstimatedEffort Effort     `json:"estimatedEffort,omitempty"`
}

// AttemptedSolution records a fix that was tried and how it went.
type AttemptedSolution struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
	Outcome  string `json:"outcome"`
}

// RejectedApproach records an approach that was ruled out.
type RejectedApproach struct {
	Approach string `json:"approach"`
	Reason   string `json:"reason"`
}

// ToolOutput keeps a notable piece of tool output.
type ToolOutput struct {
	ToolName string   `json:"toolName"`
	Command  string   `json:"command,omitempty"`
	Output   string   `json:"output,omitempty"`
	Priority Priority `json:"priority,omitempty"`
}

// ContextState captures where the work stood.
type ContextState struct {
	CurrentFocus       string    `json:"currentFocus,omitempty"`
	WorkPhase          WorkPhase `json:"workPhase,omitempty"`
	LastAction         string    `json:"lastAction,omitempty"`
	ProgressPercentage *float64  `json:"progressPercentage,omitempty"`
}

// IndexEntry is the lightweight projection of a session kept in index.json.
type IndexEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	Project   string    `json:"project"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Entry projects s into its index entry.
func (s *Session) Entry() IndexEntry {
	return IndexEntry{
		ID:        s.ID,
		Title:     s.Title,
		Status:    s.Status,
		Project:   s.Project,
		UpdatedAt: s.UpdatedAt,
	}
}

// IsCompleted reports whether the session has been completed.
func (s *Session) IsCompleted() bool {
	return s.Status == StatusCompleted
}
