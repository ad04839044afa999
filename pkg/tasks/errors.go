package tasks

// Operation names a repository call
type Operation string

const (
	OpList   Operation = "list"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

var defaultMessages = map[Operation]string{
	OpList:   "Failed to fetch tasks",
	OpCreate: "Failed to create task",
	OpUpdate: "Failed to update task",
	OpDelete: "Failed to delete task",
}

// DefaultMessage is the generic failure text for op
func DefaultMessage(op Operation) string {
	return defaultMessages[op]
}

// RequestError is a non-success response to a task operation
type RequestError struct {
	Op         Operation
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

// ValidationError blocks a submission before any request is made
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
