// FILE: internal/service/errors.go
package service

import "errors"

var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrInvalidWebhookPayload = errors.New("invalid webhook payload")
	ErrWorkOrderNotFound     = errors.New("work order not found")
)
