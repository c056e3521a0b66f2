package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/memoria-dev/memoria/internal/session"
)

// Tool names.
const (
	SaveCheckpoint      = "save_checkpoint"
	SaveSession         = "save_session"
	CompleteSession     = "complete_session"
	ContinueContext     = "continue_context"
	GetSession          = "get_session"
	SemanticSearch      = "semantic_search"
	FindRelatedSessions = "find_related_sessions"
)

// Handler dispatches tool calls to the session recorder.
type Handler struct {
	rec *session.Recorder
}

// NewHandler returns a Handler backed by rec.
func NewHandler(rec *session.Recorder) *Handler {
	return &Handler{rec: rec}
}

// Call runs the named tool with its JSON arguments. Expected failures
// (uninitialized store, unknown session, missing license) come back as a
// failed Response with a nil error. Unexpected failures such as I/O errors
// or malformed arguments are returned as errors for the adapter to report.
func (h *Handler) Call(name string, args json.RawMessage) (Response, error) {
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage(`{}`)
	}
	switch name {
	case SaveCheckpoint:
		return h.saveCheckpoint(args)
	case SaveSession:
		return h.saveSession(args)
	case CompleteSession:
		return h.completeSession(args)
	case ContinueContext:
		return h.continueContext(args)
	case GetSession:
		return h.getSession(args)
	case SemanticSearch:
		return h.licensed("Search", "Search API not yet implemented. Coming soon!")
	case FindRelatedSessions:
		return h.licensed("Find related sessions", "Related sessions API not yet implemented. Coming soon!")
	default:
		return fail(ErrUnknownTool, "Unknown tool: "+name), nil
	}
}

type checkpointArgs struct {
	SessionID       string `json:"session_id"`
	Summary         string `json:"summary"`
	IncrementalNote string `json:"incremental_note"`
	session.Fields
}

type sessionArgs struct {
	Summary  string `json:"summary"`
	Duration string `json:"duration"`
	session.Fields
}

type completeArgs struct {
	SessionID    string `json:"session_id"`
	FinalSummary string `json:"final_summary"`
	Summary      string `json:"summary"`
	Duration     string `json:"duration"`
	session.Fields
}

type continueArgs struct {
	Project string `json:"project"`
}

type getArgs struct {
	SessionID string `json:"session_id"`
}

func decode(name string, args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", name, err)
	}
	return nil
}

// classify turns the recorder's sentinel errors into failed responses.
// Anything it does not recognize is returned unchanged.
func classify(err error) (Response, error) {
	var nf *session.NotFoundError
	switch {
	case errors.Is(err, session.ErrNotInitialized):
		return fail(ErrNotInitialized, notInitializedMessage), nil
	case errors.Is(err, session.ErrConfig):
		return fail(ErrConfigError, "Failed to load config."), nil
	case errors.As(err, &nf):
		return fail(ErrSessionNotFound, nf.Error()), nil
	default:
		return Response{}, err
	}
}

func (h *Handler) saveCheckpoint(raw json.RawMessage) (Response, error) {
	var args checkpointArgs
	if err := decode(SaveCheckpoint, raw, &args); err != nil {
		return Response{}, err
	}
	sess, cp, err := h.rec.SaveCheckpoint(session.CheckpointInput{
		SessionID:       args.SessionID,
		Summary:         args.Summary,
		IncrementalNote: args.IncrementalNote,
		Fields:          args.Fields,
	})
	if err != nil {
		return classify(err)
	}
	return ok(fmt.Sprintf("Checkpoint #%d saved successfully.", cp.Number), map[string]any{
		"session_id":        sess.ID,
		"checkpoint_number": cp.Number,
		"title":             sess.Title,
	}), nil
}

func (h *Handler) saveSession(raw json.RawMessage) (Response, error) {
	var args sessionArgs
	if err := decode(SaveSession, raw, &args); err != nil {
		return Response{}, err
	}
	sess, err := h.rec.SaveSession(session.SessionInput{
		Summary:  args.Summary,
		Duration: args.Duration,
		Fields:   args.Fields,
	})
	if err != nil {
		return classify(err)
	}
	return ok("Session saved successfully.", map[string]any{
		"session_id": sess.ID,
		"title":      sess.Title,
	}), nil
}

func (h *Handler) completeSession(raw json.RawMessage) (Response, error) {
	var args completeArgs
	if err := decode(CompleteSession, raw, &args); err != nil {
		return Response{}, err
	}
	sess, err := h.rec.Complete(session.CompleteInput{
		SessionID:    args.SessionID,
		FinalSummary: args.FinalSummary,
		Summary:      args.Summary,
		Duration:     args.Duration,
		Fields:       args.Fields,
	})
	if err != nil {
		return classify(err)
	}
	if args.SessionID == "" {
		return ok("Session saved successfully.", map[string]any{
			"session_id": sess.ID,
			"title":      sess.Title,
		}), nil
	}
	return ok("Session completed successfully.", map[string]any{
		"session_id":  sess.ID,
		"title":       sess.Title,
		"checkpoints": len(sess.Checkpoints),
	}), nil
}

// ContextEntry is the lightweight projection returned by continue_context.
type ContextEntry struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Project     string         `json:"project"`
	Status      session.Status `json:"status"`
	Checkpoints int            `json:"checkpoints"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (h *Handler) continueContext(raw json.RawMessage) (Response, error) {
	var args continueArgs
	if err := decode(ContinueContext, raw, &args); err != nil {
		return Response{}, err
	}
	store := h.rec.Store()
	if !store.IsInitialized() {
		return fail(ErrNotInitialized, notInitializedMessage), nil
	}

	sessions, err := store.LoadInProgress()
	if err != nil {
		return Response{}, err
	}
	entries := make([]ContextEntry, 0, len(sessions))
	for _, s := range sessions {
		if args.Project != "" && s.Project != args.Project {
			continue
		}
		entries = append(entries, ContextEntry{
			ID:          s.ID,
			Title:       s.Title,
			Project:     s.Project,
			Status:      s.Status,
			Checkpoints: len(s.Checkpoints),
			UpdatedAt:   s.UpdatedAt,
			CreatedAt:   s.CreatedAt,
		})
	}
	return ok(fmt.Sprintf("Found %d in-progress session(s).", len(entries)), map[string]any{
		"sessions": entries,
	}), nil
}

func (h *Handler) getSession(raw json.RawMessage) (Response, error) {
	var args getArgs
	if err := decode(GetSession, raw, &args); err != nil {
		return Response{}, err
	}
	store := h.rec.Store()
	if !store.IsInitialized() {
		return fail(ErrNotInitialized, notInitializedMessage), nil
	}
	if args.SessionID == "" {
		return fail(ErrMissingSessionID, "session_id is required."), nil
	}

	sess, err := store.Load(args.SessionID)
	if err != nil && !errors.Is(err, session.ErrInvalidID) {
		return Response{}, err
	}
	if sess == nil {
		return classify(&session.NotFoundError{ID: args.SessionID})
	}
	return ok("Session retrieved successfully.", map[string]any{
		"session": sess,
	}), nil
}

// licensed gates a paid feature on the presence of a license key.
func (h *Handler) licensed(feature, pending string) (Response, error) {
	store := h.rec.Store()
	if !store.IsInitialized() {
		return fail(ErrNotInitialized, notInitializedMessage), nil
	}
	cfg, err := store.Config()
	if err != nil {
		return Response{}, err
	}
	if !cfg.HasLicense() {
		return fail(ErrLicenseRequired, licenseMessage(feature)), nil
	}
	return fail(ErrNotImplemented, pending), nil
}
