package store

import (
	"strings"
	"time"
)

// Step is the conversation position of an inspector session.
type Step string

const (
	StepNeedWorkOrder     Step = "NEED_WORK_ORDER"
	StepNeedLocation      Step = "NEED_LOCATION"
	StepNeedChecklistTask Step = "NEED_CHECKLIST_TASK"
	StepCollecting        Step = "COLLECTING_MEDIA_OR_NOTES"
	StepTaskComplete      Step = "TASK_COMPLETE"
)

// Hash field names. Both session backends persist a session as a flat
// field -> string map using these names; metadata keys carry MetadataPrefix.
const (
	FieldStep                   = "step"
	FieldInspectorID            = "inspector_id"
	FieldInspectorName          = "inspector_name"
	FieldInspectorPhone         = "inspector_phone"
	FieldWorkOrderID            = "work_order_id"
	FieldCurrentLocation        = "current_location"
	FieldCurrentLocationID      = "current_location_id"
	FieldCurrentChecklistItemID = "current_checklist_item_id"
	FieldCurrentTaskID          = "current_task_id"
	FieldLastMessageID          = "last_message_id"
	FieldUpdatedAt              = "updated_at"

	MetadataPrefix = "meta:"
)

// Session represents the conversation state of one inspector phone number.
type Session struct {
	Key  string `json:"key"` // derived from the inbound phone number
	Step Step   `json:"step"`

	// Identity, resolved lazily and authoritative once set
	InspectorID    string `json:"inspector_id,omitempty"`
	InspectorName  string `json:"inspector_name,omitempty"`
	InspectorPhone string `json:"inspector_phone,omitempty"`

	// Work context
	WorkOrderID            string `json:"work_order_id,omitempty"`
	CurrentLocation        string `json:"current_location,omitempty"`
	CurrentLocationID      string `json:"current_location_id,omitempty"`
	CurrentChecklistItemID string `json:"current_checklist_item_id,omitempty"`
	CurrentTaskID          string `json:"current_task_id,omitempty"`

	LastMessageID string            `json:"last_message_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// SessionUpdate is a partial update. Nil pointers leave the stored field
// untouched; Clear lists fields to unset before the provided values are written.
type SessionUpdate struct {
	Step *Step

	InspectorID    *string
	InspectorName  *string
	InspectorPhone *string

	WorkOrderID            *string
	CurrentLocation        *string
	CurrentLocationID      *string
	CurrentChecklistItemID *string
	CurrentTaskID          *string

	LastMessageID *string
	Metadata      map[string]string

	Clear []string
}

// Ptr returns a pointer to v. Handy for building SessionUpdate literals.
func Ptr[T any](v T) *T {
	return &v
}

// NewSession returns an empty session positioned at the first step.
func NewSession(key string) *Session {
	return &Session{
		Key:      key,
		Step:     StepNeedWorkOrder,
		Metadata: map[string]string{},
	}
}

// Values flattens the provided fields into hash form.
func (u SessionUpdate) Values() map[string]string {
	values := make(map[string]string)

	if u.Step != nil {
		values[FieldStep] = string(*u.Step)
	}
	setIf(values, FieldInspectorID, u.InspectorID)
	setIf(values, FieldInspectorName, u.InspectorName)
	setIf(values, FieldInspectorPhone, u.InspectorPhone)
	setIf(values, FieldWorkOrderID, u.WorkOrderID)
	setIf(values, FieldCurrentLocation, u.CurrentLocation)
	setIf(values, FieldCurrentLocationID, u.CurrentLocationID)
	setIf(values, FieldCurrentChecklistItemID, u.CurrentChecklistItemID)
	setIf(values, FieldCurrentTaskID, u.CurrentTaskID)
	setIf(values, FieldLastMessageID, u.LastMessageID)

	for k, v := range u.Metadata {
		values[MetadataPrefix+k] = v
	}

	return values
}

// IsEmpty reports whether the update would change nothing.
func (u SessionUpdate) IsEmpty() bool {
	return len(u.Values()) == 0 && len(u.Clear) == 0
}

func setIf(values map[string]string, field string, v *string) {
	if v != nil {
		values[field] = *v
	}
}

// Apply merges the update into the session: clears first, then field values,
// last write wins per field.
func (s *Session) Apply(u SessionUpdate) {
	for _, field := range u.Clear {
		s.Set(field, "")
	}
	for field, value := range u.Values() {
		s.Set(field, value)
	}
}

// Set writes a single hash field onto the session. Unknown fields are ignored.
func (s *Session) Set(field, value string) {
	if strings.HasPrefix(field, MetadataPrefix) {
		key := strings.TrimPrefix(field, MetadataPrefix)
		if s.Metadata == nil {
			s.Metadata = map[string]string{}
		}
		if value == "" {
			delete(s.Metadata, key)
		} else {
			s.Metadata[key] = value
		}
		return
	}

	switch field {
	case FieldStep:
		s.Step = Step(value)
	case FieldInspectorID:
		s.InspectorID = value
	case FieldInspectorName:
		s.InspectorName = value
	case FieldInspectorPhone:
		s.InspectorPhone = value
	case FieldWorkOrderID:
		s.WorkOrderID = value
	case FieldCurrentLocation:
		s.CurrentLocation = value
	case FieldCurrentLocationID:
		s.CurrentLocationID = value
	case FieldCurrentChecklistItemID:
		s.CurrentChecklistItemID = value
	case FieldCurrentTaskID:
		s.CurrentTaskID = value
	case FieldLastMessageID:
		s.LastMessageID = value
	case FieldUpdatedAt:
		if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
			s.UpdatedAt = t
		}
	}
}

// FromHash rebuilds a session from its flattened hash form.
func FromHash(key string, hash map[string]string) *Session {
	s := NewSession(key)
	for field, value := range hash {
		s.Set(field, value)
	}
	if s.Step == "" {
		s.Step = StepNeedWorkOrder
	}
	return s
}

// Clone returns a deep copy so callers never share the stored metadata map.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Metadata = make(map[string]string, len(s.Metadata))
	for k, v := range s.Metadata {
		c.Metadata[k] = v
	}
	return &c
}
