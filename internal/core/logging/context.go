package logging

import "context"

type contextKey string

const taskIDKey contextKey = "task_id"

// WithTaskID adds a task ID to the context so store and backend calls
// log which record they were acting on.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskIDKey, taskID)
}

// GetTaskID retrieves the task ID from the context.
// Returns empty string if not present.
func GetTaskID(ctx context.Context) string {
	if id, ok := ctx.Value(taskIDKey).(string); ok {
		return id
	}
	return ""
}
