// FILE: internal/dto/audit_log_dto.go
package dto

import "time"

type AuditLogListRequest struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit" validate:"omitempty,max=200"`
	Module string `query:"module"`
	Level  string `query:"level" validate:"omitempty,oneof=debug info warn error"`
}

type AuditLogResponse struct {
	Id        string                 `json:"id"`
	Level     string                 `json:"level"`
	Module    string                 `json:"module"`
	Message   string                 `json:"message"`
	CreatedAt time.Time              `json:"created_at"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
