// FILE: internal/entity/progress_entity.go
package entity

import "github.com/google/uuid"

// LocationProgress is a location annotated with its derived completion.
// ChecklistItemId is nil when no checklist item matches the location name.
type LocationProgress struct {
	Location        *Location
	ChecklistItemId *uuid.UUID
	Done            bool
}

type TaskProgress struct {
	Task *ChecklistTask
	Done bool
}
