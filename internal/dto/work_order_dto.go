// FILE: internal/dto/work_order_dto.go
package dto

import "github.com/google/uuid"

type LocationStatusResponse struct {
	WorkOrderId uuid.UUID        `json:"work_order_id"`
	Lines       []string         `json:"lines"` // as sent over WhatsApp
	Locations   []LocationStatus `json:"locations"`
	Completed   int              `json:"completed_tasks"`
	Total       int              `json:"total_tasks"`
}

type LocationStatus struct {
	Id              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	OrderIndex      int        `json:"order_index"`
	ChecklistItemId *uuid.UUID `json:"checklist_item_id,omitempty"`
	Done            bool       `json:"done"`
}
