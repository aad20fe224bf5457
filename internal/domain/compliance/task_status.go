package compliance

import (
	"fmt"
	"slices"
	"strings"
)

var taskStatusAliases = map[string]string{
	TaskStatusPending:    TaskStatusPending,
	"todo":               TaskStatusPending,
	TaskStatusInProgress: TaskStatusInProgress,
	"doing":              TaskStatusInProgress,
	TaskStatusCompleted:  TaskStatusCompleted,
	"done":               TaskStatusCompleted,
}

// NormalizeTaskStatus maps user input such as "In Progress" or "done" to a stored status.
func NormalizeTaskStatus(status string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(status))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)

	normalized, ok := taskStatusAliases[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTaskStatus, status)
	}
	return normalized, nil
}

func IsOpenTaskStatus(status string) bool {
	return slices.Contains(OpenTaskStatuses, status)
}
