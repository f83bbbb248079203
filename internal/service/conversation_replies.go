// FILE: internal/service/conversation_replies.go
package service

import (
	"fmt"
	"strings"

	"inspection-be/internal/entity"
)

// Commands recognized in any step, compared after NormalizeName.
const (
	commandReset     = "reset"
	commandLocations = "locations"
	commandBack      = "back"
	commandDone      = "done"
)

const (
	replyUnidentified     = "Sorry, this number is not registered to an inspector. Please contact your coordinator."
	replyReset            = "Your inspection session has been cleared. Send any message to start again."
	replyNoWorkOrders     = "You have no open work orders right now."
	replyNoLocations      = "This work order has no locations yet. Please contact your coordinator."
	replyLocationNotFound = "I couldn't find a matching location, please reply with the number shown."
	replyTaskNotFound     = "I couldn't find a matching task, please reply with the number shown."
)

func withList(header string, lines []string, footer string) string {
	var b strings.Builder
	b.WriteString(header)
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(line)
	}
	if footer != "" {
		b.WriteString("\n")
		b.WriteString(footer)
	}
	return b.String()
}

func workOrderPrompt(orders []*entity.WorkOrder) string {
	lines := make([]string, len(orders))
	for i, wo := range orders {
		lines[i] = fmt.Sprintf("%d. %s", i+1, wo.Title)
	}
	return withList("Which work order are you inspecting?", lines, "Reply with the number.")
}

func locationPrompt(header string, locations []*entity.LocationProgress) string {
	return withList(header, LocationLines(locations), "Reply with the location number.")
}

func taskPrompt(header string, tasks []*entity.TaskProgress) string {
	return withList(header, TaskLines(tasks), "Reply with the task number, or LOCATIONS to pick another location.")
}

func collectingPrompt(taskName string) string {
	return fmt.Sprintf("Send photos or notes for %s, then reply DONE when finished.", taskName)
}
