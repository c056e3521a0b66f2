package tools

import "maps"

// Definition describes one tool for tools/list.
type Definition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema is the JSON schema of a tool's arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property is a JSON-schema property, recursive for arrays and objects.
type Property struct {
	Type        string              `json:"type,omitempty"`
	Description string              `json:"description,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
	OneOf       []Property          `json:"oneOf,omitempty"`
}

var (
	str = Property{Type: "string"}
	num = Property{Type: "number"}
)

func strDesc(desc string) Property {
	return Property{Type: "string", Description: desc}
}

func arrayOf(item Property, desc string) Property {
	return Property{Type: "array", Description: desc, Items: &item}
}

func object(props map[string]Property, required ...string) Property {
	return Property{Type: "object", Properties: props, Required: required}
}

// stringOr is an entry that may be a bare string or a structured object.
func stringOr(props map[string]Property, required string) Property {
	return Property{OneOf: []Property{str, object(props, required)}}
}

// sessionFields are the optional fields shared by every write tool.
func sessionFields() map[string]Property {
	return map[string]Property{
		"filesModified": arrayOf(str, "All files modified (cumulative)"),
		"filesRead":     arrayOf(str, "Files read during session"),
		"keyDecisions": arrayOf(stringOr(map[string]Property{
			"decision":  str,
			"rationale": str,
			"category":  str,
		}, "decision"), "Key decisions made"),
		"conversationText": strDesc("Complete conversation history for search indexing."),
		"completedTasks":   arrayOf(str, ""),
		"incompleteTasks": arrayOf(object(map[string]Property{
			"task":            str,
			"activeForm":      str,
			"status":          {Type: "string", Enum: []string{"not_started", "in_progress", "blocked"}},
			"priority":        num,
			"reason":          str,
			"nextAction":      str,
			"relatedFiles":    arrayOf(str, ""),
			"estimatedEffort": {Type: "string", Enum: []string{"small", "medium", "large"}},
		}, "task", "status", "priority"), ""),
		"blockers": arrayOf(stringOr(map[string]Property{
			"blocker":    str,
			"resolution": str,
		}, "blocker"), ""),
		"dependencies": arrayOf(stringOr(map[string]Property{
			"dependency": str,
			"type":       str,
			"version":    str,
		}, "dependency"), ""),
		"attemptedSolutions": arrayOf(object(map[string]Property{
			"problem":  str,
			"solution": str,
			"outcome":  str,
		}, "problem", "solution", "outcome"), "Solutions attempted (success/failed). CRITICAL for avoiding repeated debugging."),
		"rejectedApproaches": arrayOf(object(map[string]Property{
			"approach": str,
			"reason":   str,
		}, "approach", "reason"), "Approaches rejected and why. Prevents repeating mistakes."),
		"toolOutputs": arrayOf(object(map[string]Property{
			"toolName": str,
			"command":  str,
			"output":   str,
			"priority": {Type: "string", Enum: []string{"high", "medium", "low"}},
		}, "toolName"), ""),
		"contextState": object(map[string]Property{
			"currentFocus":       str,
			"workPhase":          {Type: "string", Enum: []string{"planning", "implementation", "testing", "debugging", "review", "completed"}},
			"lastAction":         str,
			"progressPercentage": num,
		}),
	}
}

func with(props map[string]Property, extra map[string]Property) map[string]Property {
	maps.Copy(props, extra)
	return props
}

// Definitions returns the tool list served by tools/list.
func Definitions() []Definition {
	return []Definition{
		{
			Name: SaveCheckpoint,
			Description: `Save a checkpoint for the current session. Use this to save work in progress.

**Workflow:**
- First checkpoint: Creates new Session + Checkpoint #1
- Subsequent checkpoints: Adds Checkpoint #2, #3, etc. to existing Session

**Summary:** the first non-heading line becomes the session title (max 100 chars).

Fields you omit keep their previous value; fields you send replace it.`,
			InputSchema: InputSchema{
				Type: "object",
				Properties: with(sessionFields(), map[string]Property{
					"session_id":       strDesc("Session ID for existing session. Leave empty for first checkpoint."),
					"summary":          strDesc("Comprehensive summary. First line becomes session title."),
					"incremental_note": strDesc("Note describing what was added since last checkpoint."),
				}),
				Required: []string{"summary"},
			},
		},
		{
			Name: SaveSession,
			Description: `Save a complete session without checkpoints. Use for small, straightforward tasks.

For larger tasks, use save_checkpoint instead.`,
			InputSchema: InputSchema{
				Type: "object",
				Properties: with(sessionFields(), map[string]Property{
					"summary":  strDesc("Complete summary. First line = session title."),
					"duration": str,
				}),
				Required: []string{"summary"},
			},
		},
		{
			Name: CompleteSession,
			Description: `Complete work. With session_id, marks that session completed (final_summary optionally
replaces the summary and title). Without session_id, acts like save_session.`,
			InputSchema: InputSchema{
				Type: "object",
				Properties: with(sessionFields(), map[string]Property{
					"session_id":    strDesc("Session ID from previous checkpoint. Leave empty for new work."),
					"final_summary": strDesc("Final summary to override existing (optional if session_id provided)."),
					"summary":       str,
					"duration":      str,
				}),
			},
		},
		{
			Name: ContinueContext,
			Description: `Load incomplete sessions to continue work. Step 1 of 2-step recovery:
continue_context() lists in-progress sessions, then get_session(id) returns full details.`,
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"project": strDesc("Optional project filter"),
				},
			},
		},
		{
			Name:        GetSession,
			Description: "Retrieve complete session details by ID. Returns all checkpoints and structured data.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"session_id": strDesc("Session ID"),
				},
				Required: []string{"session_id"},
			},
		},
		{
			Name:        SemanticSearch,
			Description: "Search sessions using natural language queries. Requires a license key (memoria activate <key>).",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"query":   strDesc("Natural language query"),
					"limit":   {Type: "number", Description: "Number of results (default: 10)"},
					"project": strDesc("Filter by project name"),
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        FindRelatedSessions,
			Description: "Find sessions related to current work by file overlap or keywords. Requires a license key.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"files":      arrayOf(str, "Find sessions that modified these files"),
					"keywords":   arrayOf(str, "Find sessions matching these keywords"),
					"sessionId":  strDesc("Find sessions related to this session"),
					"maxResults": {Type: "number", Description: "Max results (default: 5)"},
				},
			},
		},
	}
}
