// FILE: internal/dto/whatsapp_dto.go
package dto

import (
	"time"
)

// Inbound handling outcomes, also used as the metrics label.
const (
	OutcomeProcessed    = "processed"
	OutcomeDuplicate    = "duplicate"
	OutcomeUnidentified = "unidentified"
	OutcomeIgnored      = "ignored"
	OutcomeFailed       = "failed"
)

// --- Webhook ---

type InboundResult struct {
	Outcome    string `json:"outcome"`
	MessageId  string `json:"message_id,omitempty"`
	SessionKey string `json:"session_key,omitempty"`
	FromStep   string `json:"from_step,omitempty"`
	Step       string `json:"step,omitempty"`
	Reply      string `json:"reply,omitempty"`
	Delivered  bool   `json:"delivered"`
}

type WebhookAcceptedResponse struct {
	Queued bool           `json:"queued"`
	Result *InboundResult `json:"result,omitempty"`
}

// --- Session admin ---

type SessionResponse struct {
	Key                    string            `json:"key"`
	Step                   string            `json:"step"`
	InspectorId            string            `json:"inspector_id,omitempty"`
	InspectorName          string            `json:"inspector_name,omitempty"`
	InspectorPhone         string            `json:"inspector_phone,omitempty"`
	WorkOrderId            string            `json:"work_order_id,omitempty"`
	CurrentLocation        string            `json:"current_location,omitempty"`
	CurrentChecklistItemId string            `json:"current_checklist_item_id,omitempty"`
	CurrentTaskId          string            `json:"current_task_id,omitempty"`
	Metadata               map[string]string `json:"metadata,omitempty"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

type SendMessageRequest struct {
	Phone   string `json:"phone" validate:"required,min=6,max=20"`
	Message string `json:"message" validate:"required,max=4000"`
}
