// variants.go implements the "bare string or structured object" list entries.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Form tags which shape a polymorphic entry was written in.
type Form int

const (
	// Plain entries serialize as a bare JSON string.
	Plain Form = iota
	// Structured entries serialize as a JSON object.
	Structured
)

// Decision is either a bare string or {decision, rationale?, category?}.
type Decision struct {
	Form      Form
	Decision  string
	Rationale string
	Category  string
}

// PlainDecision returns a bare-string decision.
func PlainDecision(text string) Decision {
	return Decision{Form: Plain, Decision: text}
}

type decisionObject struct {
	Decision  string `json:"decision"`
	Rationale string `json:"rationale,omitempty"`
	Category  string `json:"category,omitempty"`
}

// MarshalJSON writes the entry in the form it was created with.
func (d Decision) MarshalJSON() ([]byte, error) {
	if d.Form == Plain {
		return json.Marshal(d.Decision)
	}
	return json.Marshal(decisionObject{Decision: d.Decision, Rationale: d.Rationale, Category: d.Category})
}

// UnmarshalJSON accepts either a string or an object.
func (d *Decision) UnmarshalJSON(data []byte) error {
	if text, ok, err := unmarshalPlain(data); ok || err != nil {
		*d = PlainDecision(text)
		return err
	}
	var obj decisionObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decision: %w", err)
	}
	*d = Decision{Form: Structured, Decision: obj.Decision, Rationale: obj.Rationale, Category: obj.Category}
	return nil
}

// Blocker is either a bare string or {blocker, resolution?}.
type Blocker struct {
	Form       Form
	Blocker    string
	Resolution string
}

// PlainBlocker returns a bare-string blocker.
func PlainBlocker(text string) Blocker {
	return Blocker{Form: Plain, Blocker: text}
}

type blockerObject struct {
	Blocker    string `json:"blocker"`
	Resolution string `json:"resolution,omitempty"`
}

// MarshalJSON writes the entry in the form it was created with.
func (b Blocker) MarshalJSON() ([]byte, error) {
	if b.Form == Plain {
		return json.Marshal(b.Blocker)
	}
	return json.Marshal(blockerObject{Blocker: b.Blocker, Resolution: b.Resolution})
}

// UnmarshalJSON accepts either a string or an object.
func (b *Blocker) UnmarshalJSON(data []byte) error {
	if text, ok, err := unmarshalPlain(data); ok || err != nil {
		*b = PlainBlocker(text)
		return err
	}
	var obj blockerObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("blocker: %w", err)
	}
	*b = Blocker{Form: Structured, Blocker: obj.Blocker, Resolution: obj.Resolution}
	return nil
}

// Dependency is either a bare string or {dependency, type?, version?}.
type Dependency struct {
	Form       Form
	Dependency string
	Type       string
	Version    string
}

// PlainDependency returns a bare-string dependency.
func PlainDependency(text string) Dependency {
	return Dependency{Form: Plain, Dependency: text}
}

type dependencyObject struct {
	Dependency string `json:"dependency"`
	Type       string `json:"type,omitempty"`
	Version    string `json:"version,omitempty"`
}

// MarshalJSON writes the entry in the form it was created with.
func (d Dependency) MarshalJSON() ([]byte, error) {
	if d.Form == Plain {
		return json.Marshal(d.Dependency)
	}
	return json.Marshal(dependencyObject{Dependency: d.Dependency, Type: d.Type, Version: d.Version})
}

// UnmarshalJSON accepts either a string or an object.
func (d *Dependency) UnmarshalJSON(data []byte) error {
	if text, ok, err := unmarshalPlain(data); ok || err != nil {
		*d = PlainDependency(text)
		return err
	}
	var obj dependencyObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("dependency: %w", err)
	}
	*d = Dependency{Form: Structured, Dependency: obj.Dependency, Type: obj.Type, Version: obj.Version}
	return nil
}

// unmarshalPlain decodes data as a string when it is a JSON string literal.
// A JSON null is an empty plain entry. ok is false for any other value.
func unmarshalPlain(data []byte) (text string, ok bool, err error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return "", true, nil
	}
	if len(data) == 0 || data[0] != '"' {
		return "", false, nil
	}
	if err := json.Unmarshal(data, &text); err != nil {
		return "", false, err
	}
	return text, true, nil
}
