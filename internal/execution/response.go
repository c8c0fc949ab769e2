// File: internal/execution/response.go
package execution

// Status is the state reported back to BigID for an execution.
type Status string

const (
	StatusError      Status = "ERROR"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Response is the envelope returned from the execute endpoint and pushed to
// BigID as a progress update.
type Response struct {
	ExecutionID string  `json:"executionId"`
	Status      Status  `json:"status"`
	Progress    float64 `json:"progress"`
	Message     string  `json:"message"`
}

func Completed(executionID, message string) Response {
	return Response{ExecutionID: executionID, Status: StatusCompleted, Progress: 1, Message: message}
}

func InProgress(executionID string, progress float64, message string) Response {
	return Response{ExecutionID: executionID, Status: StatusInProgress, Progress: progress, Message: message}
}

func Failed(executionID, message string) Response {
	return Response{ExecutionID: executionID, Status: StatusError, Progress: 0, Message: message}
}
