package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JSONPayload is a JSONB column holding an arbitrary JSON document
type JSONPayload json.RawMessage

// Value implements driver.Valuer interface
func (p JSONPayload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return []byte(p), nil
}

// Scan implements sql.Scanner interface
func (p *JSONPayload) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = nil
	case []byte:
		*p = append(JSONPayload(nil), v...)
	case string:
		*p = JSONPayload(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONPayload", value)
	}
	return nil
}

// MarshalJSON emits the document as-is, or null when empty
func (p JSONPayload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

// UnmarshalJSON keeps a copy of the raw document
func (p *JSONPayload) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = nil
		return nil
	}
	*p = append((*p)[0:0], data...)
	return nil
}

// Record is a saved elicitation result: the participant's choices and fitted priors
type Record struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	TaskID    string      `json:"task_id" db:"task_id"`
	Space     string      `json:"space" db:"space"`
	Feedback  string      `json:"feedback" db:"feedback"`
	Payload   JSONPayload `json:"payload" db:"payload"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// Validate checks the fields a record needs before it is stored
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("record name is required")
	}
	if len(r.Payload) > 0 && !json.Valid(r.Payload) {
		return fmt.Errorf("record payload is not valid JSON")
	}
	return nil
}

// Elicitation spaces a study can present
const (
	SpaceParameter = "parameter"
	SpaceData      = "data"
)

// Feedback modes shown to the participant
const (
	FeedbackNone        = "none"
	FeedbackPredictive  = "predictive"
	FeedbackDistributed = "distributed"
)

// StudySettings is the administrator-controlled study configuration
type StudySettings struct {
	TaskID           string    `json:"task_id" db:"task_id"`
	ElicitationSpace string    `json:"elicitation_space" db:"elicitation_space"`
	FeedbackMode     string    `json:"feedback_mode" db:"feedback_mode"`
	LoadRecord       bool      `json:"load_record" db:"load_record"`
	RecordName       string    `json:"record_name" db:"record_name"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultStudySettings is served before an administrator saves anything
func DefaultStudySettings() StudySettings {
	return StudySettings{
		TaskID:           "default",
		ElicitationSpace: SpaceParameter,
		FeedbackMode:     FeedbackPredictive,
	}
}

// Validate checks the settings against the known spaces and feedback modes
func (s *StudySettings) Validate() error {
	if strings.TrimSpace(s.TaskID) == "" {
		return fmt.Errorf("task_id is required")
	}
	switch s.ElicitationSpace {
	case SpaceParameter, SpaceData:
	default:
		return fmt.Errorf("unknown elicitation_space %q", s.ElicitationSpace)
	}
	switch s.FeedbackMode {
	case FeedbackNone, FeedbackPredictive, FeedbackDistributed:
	default:
		return fmt.Errorf("unknown feedback_mode %q", s.FeedbackMode)
	}
	if s.LoadRecord && strings.TrimSpace(s.RecordName) == "" {
		return fmt.Errorf("record_name is required when load_record is set")
	}
	return nil
}
