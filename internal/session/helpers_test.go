package session

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/memoria-dev/memoria/internal/config"
	"github.com/memoria-dev/memoria/internal/testutil"
)

// newTestRecorder initializes a store in a temp dir and returns a Recorder
// whose clock advances one second per write.
func newTestRecorder(t *testing.T) (*Recorder, *testutil.Clock) {
	t.Helper()
	root := t.TempDir()
	_, err := config.Initialize(root, "proj", testutil.Epoch)
	require.NoError(t, err)

	clock := testutil.NewClock(testutil.Epoch)
	ids := NewIDGenerator(clock.Now, rand.New(rand.NewSource(1)))
	return NewRecorder(NewStore(root), ids, clock.Tick), clock
}

// sampleSession returns a fully populated session for round-trip tests.
func sampleSession(id string, updated time.Time) *Session {
	progress := 40.0
	completed := updated.Add(time.Minute)
	return &Session{
		ID:            id,
		Title:         "Wire the exporter",
		Project:       "proj",
		Status:        StatusCompleted,
		Summary:       "# Work\nWire the exporter",
		FilesModified: []string{"internal/export/export.go"},
		FilesRead:     []string{"go.mod"},
		Decisions: []Decision{
			PlainDecision("keep JSON on disk"),
			{Form: Structured, Decision: "sqlite export", Rationale: "queryable", Category: "storage"},
		},
		CompletedTasks: []string{"schema"},
		IncompleteTasks: []IncompleteTask{{
			Task: "docs", Status: TaskBlocked, Priority: 2, Reason: "waiting",
			RelatedFiles: []string{"README.md"}, EstimatedEffort: EffortSmall,
		}},
		Blockers:           []Blocker{PlainBlocker("none"), {Form: Structured, Blocker: "cgo", Resolution: "enable"}},
		Dependencies:       []Dependency{{Form: Structured, Dependency: "go-sqlite3", Type: "go", Version: "1.14"}},
		AttemptedSolutions: []AttemptedSolution{{Problem: "p", Solution: "s", Outcome: "failed"}},
		RejectedApproaches: []RejectedApproach{{Approach: "csv", Reason: "lossy"}},
		ToolOutputs:        []ToolOutput{{ToolName: "go test", Output: "ok", Priority: PriorityHigh}},
		ContextState: &ContextState{
			CurrentFocus: "export", WorkPhase: PhaseTesting, ProgressPercentage: &progress,
		},
		ConversationText: "long text",
		Checkpoints: []Checkpoint{
			{ID: "chk_1_aaaa", Number: 1, Summary: "start", CreatedAt: updated},
		},
		CreatedAt:   updated,
		UpdatedAt:   updated,
		CompletedAt: &completed,
		Duration:    "1h",
		GitBranch:   "main",
		GitCommit:   "abc123",
	}
}
