package session

import (
	"fmt"
	"time"

	"github.com/memoria-dev/memoria/internal/log"
)

// Fields holds the optional session fields a caller may supply on any write.
// A nil slice or pointer means the caller did not supply the field and the
// previous value is kept. A non-nil slice replaces the previous value, even
// when empty.
type Fields struct {
	FilesModified      []string            `json:"filesModified"`
	FilesRead          []string            `json:"filesRead"`
	Decisions          []Decision          `json:"keyDecisions"`
	CompletedTasks     []string            `json:"completedTasks"`
	IncompleteTasks    []IncompleteTask    `json:"incompleteTasks"`
	Blockers           []Blocker           `json:"blockers"`
	Dependencies       []Dependency        `json:"dependencies"`
	AttemptedSolutions []AttemptedSolution `json:"attemptedSolutions"`
	RejectedApproaches []RejectedApproach  `json:"rejectedApproaches"`
	ToolOutputs        []ToolOutput        `json:"toolOutputs"`
	ContextState       *ContextState       `json:"contextState"`
	ConversationText   *string             `json:"conversationText"`
}

// mergeInto applies every supplied field to s, leaving the rest untouched.
func (f *Fields) mergeInto(s *Session) {
	s.FilesModified = replaceIfPresent(f.FilesModified, s.FilesModified)
	s.FilesRead = replaceIfPresent(f.FilesRead, s.FilesRead)
	s.Decisions = replaceIfPresent(f.Decisions, s.Decisions)
	s.CompletedTasks = replaceIfPresent(f.CompletedTasks, s.CompletedTasks)
	s.IncompleteTasks = replaceIfPresent(f.IncompleteTasks, s.IncompleteTasks)
	s.Blockers = replaceIfPresent(f.Blockers, s.Blockers)
	s.Dependencies = replaceIfPresent(f.Dependencies, s.Dependencies)
	s.AttemptedSolutions = replaceIfPresent(f.AttemptedSolutions, s.AttemptedSolutions)
	s.RejectedApproaches = replaceIfPresent(f.RejectedApproaches, s.RejectedApproaches)
	s.ToolOutputs = replaceIfPresent(f.ToolOutputs, s.ToolOutputs)
	if f.ContextState != nil {
		s.ContextState = f.ContextState
	}
	if f.ConversationText != nil && *f.ConversationText != "" {
		s.ConversationText = *f.ConversationText
	}
}

func replaceIfPresent[T any](supplied, existing []T) []T {
	if supplied != nil {
		return supplied
	}
	return existing
}

// orEmpty keeps JSON output as [] rather than null for unsupplied lists.
func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// newSession builds a session with every list defaulted to empty.
func (f *Fields) newSession(id, summary, project string, status Status, now time.Time) *Session {
	s := &Session{
		ID:                 id,
		Title:              Title(summary),
		Project:            project,
		Status:             status,
		Summary:            summary,
		FilesModified:      orEmpty(f.FilesModified),
		FilesRead:          orEmpty(f.FilesRead),
		Decisions:          orEmpty(f.Decisions),
		CompletedTasks:     orEmpty(f.CompletedTasks),
		IncompleteTasks:    orEmpty(f.IncompleteTasks),
		Blockers:           orEmpty(f.Blockers),
		Dependencies:       orEmpty(f.Dependencies),
		AttemptedSolutions: orEmpty(f.AttemptedSolutions),
		RejectedApproaches: orEmpty(f.RejectedApproaches),
		ToolOutputs:        orEmpty(f.ToolOutputs),
		ContextState:       f.ContextState,
		Checkpoints:        []Checkpoint{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if f.ConversationText != nil {
		s.ConversationText = *f.ConversationText
	}
	return s
}

// CheckpointInput is the argument to SaveCheckpoint. An empty SessionID
// starts a new session.
type CheckpointInput struct {
	SessionID       string
	Summary         string
	IncrementalNote string
	Fields
}

// SessionInput is the argument to SaveSession.
type SessionInput struct {
	Summary  string
	Duration string
	Fields
}

// CompleteInput is the argument to Complete. With an empty SessionID the
// call saves a new, already completed session from Summary (or
// FinalSummary when Summary is empty).
type CompleteInput struct {
	SessionID    string
	Summary      string
	FinalSummary string
	Duration     string
	Fields
}

// Recorder implements the checkpoint/merge engine on top of a Store.
type Recorder struct {
	store *Store
	ids   *IDGenerator
	now   Clock
	probe GitProbe
}

// GitProbe reports the branch and commit of the project at root.
type GitProbe func(root string) (branch, commit string)

// SetGitProbe makes new sessions record the repository state at creation.
func (r *Recorder) SetGitProbe(p GitProbe) {
	r.probe = p
}

func (r *Recorder) stampGit(sess *Session) {
	if r.probe == nil {
		return
	}
	sess.GitBranch, sess.GitCommit = r.probe(r.store.Root())
}

// NewRecorder returns a Recorder writing through store. Nil ids or now
// select the real clock and crypto/rand.
func NewRecorder(store *Store, ids *IDGenerator, now Clock) *Recorder {
	if now == nil {
		now = time.Now
	}
	if ids == nil {
		ids = NewIDGenerator(now, nil)
	}
	return &Recorder{store: store, ids: ids, now: now}
}

// Store returns the underlying store.
func (r *Recorder) Store() *Store {
	return r.store
}

func (r *Recorder) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

// project checks the store is initialized and returns the configured
// project name.
func (r *Recorder) project() (string, error) {
	if !r.store.IsInitialized() {
		return "", ErrNotInitialized
	}
	cfg, err := r.store.Config()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if cfg == nil {
		return "", ErrConfig
	}
	return cfg.Project, nil
}

// SaveCheckpoint appends a checkpoint to the session named by in.SessionID,
// or starts a new session with checkpoint #1 when SessionID is empty.
//
// On an existing session the summary is always replaced, the title is left
// alone, and every other field follows the Fields presence rule.
func (r *Recorder) SaveCheckpoint(in CheckpointInput) (*Session, *Checkpoint, error) {
	project, err := r.project()
	if err != nil {
		return nil, nil, err
	}
	now := r.timestamp()

	if in.SessionID == "" {
		cp := Checkpoint{
			ID:              r.ids.CheckpointID(),
			Number:          1,
			Summary:         in.Summary,
			IncrementalNote: in.IncrementalNote,
			CreatedAt:       now,
		}
		sess := in.newSession(r.ids.SessionID(), in.Summary, project, StatusInProgress, now)
		sess.Checkpoints = []Checkpoint{cp}
		r.stampGit(sess)
		if err := r.store.Save(sess); err != nil {
			return nil, nil, err
		}
		r.store.record(log.LogEvent{
			Time: now, Event: log.EventSessionCreated,
			SessionID: sess.ID, Title: sess.Title, Checkpoint: 1, Status: string(sess.Status),
		})
		return sess, &cp, nil
	}

	sess, err := r.existing(in.SessionID)
	if err != nil {
		return nil, nil, err
	}
	cp := Checkpoint{
		ID:              r.ids.CheckpointID(),
		Number:          len(sess.Checkpoints) + 1,
		Summary:         in.Summary,
		IncrementalNote: in.IncrementalNote,
		CreatedAt:       now,
	}
	sess.Summary = in.Summary
	in.mergeInto(sess)
	sess.Checkpoints = append(sess.Checkpoints, cp)
	sess.UpdatedAt = now

	if err := r.store.Save(sess); err != nil {
		return nil, nil, err
	}
	r.store.record(log.LogEvent{
		Time: now, Event: log.EventCheckpointSaved,
		SessionID: sess.ID, Title: sess.Title, Checkpoint: cp.Number, Status: string(sess.Status),
	})
	return sess, &cp, nil
}

// SaveSession stores a finished session directly, with no checkpoints.
func (r *Recorder) SaveSession(in SessionInput) (*Session, error) {
	project, err := r.project()
	if err != nil {
		return nil, err
	}
	now := r.timestamp()

	sess := in.newSession(r.ids.SessionID(), in.Summary, project, StatusCompleted, now)
	sess.CompletedAt = &now
	sess.Duration = in.Duration
	r.stampGit(sess)
	if err := r.store.Save(sess); err != nil {
		return nil, err
	}
	r.store.record(log.LogEvent{
		Time: now, Event: log.EventSessionCompleted,
		SessionID: sess.ID, Title: sess.Title, Status: string(sess.Status),
	})
	return sess, nil
}

// Complete marks an existing session completed. A non-empty FinalSummary
// replaces the summary and re-derives the title; a non-empty Duration
// replaces the duration. Without a SessionID it behaves like SaveSession.
func (r *Recorder) Complete(in CompleteInput) (*Session, error) {
	if in.SessionID == "" {
		summary := in.Summary
		if summary == "" {
			summary = in.FinalSummary
		}
		return r.SaveSession(SessionInput{Summary: summary, Duration: in.Duration, Fields: in.Fields})
	}

	if !r.store.IsInitialized() {
		return nil, ErrNotInitialized
	}
	sess, err := r.existing(in.SessionID)
	if err != nil {
		return nil, err
	}
	now := r.timestamp()

	sess.Status = StatusCompleted
	if in.FinalSummary != "" {
		sess.Summary = in.FinalSummary
		sess.Title = Title(in.FinalSummary)
	}
	if in.Duration != "" {
		sess.Duration = in.Duration
	}
	in.mergeInto(sess)
	sess.UpdatedAt = now
	sess.CompletedAt = &now

	if err := r.store.Save(sess); err != nil {
		return nil, err
	}
	r.store.record(log.LogEvent{
		Time: now, Event: log.EventSessionCompleted,
		SessionID: sess.ID, Title: sess.Title, Checkpoint: len(sess.Checkpoints), Status: string(sess.Status),
	})
	return sess, nil
}

// existing loads id or returns a *NotFoundError. Invalid ids are reported
// as not found since no file could hold them.
func (r *Recorder) existing(id string) (*Session, error) {
	sess, err := r.store.Load(id)
	if err != nil && !isInvalidID(err) {
		return nil, err
	}
	if sess == nil {
		return nil, &NotFoundError{ID: id}
	}
	return sess, nil
}
