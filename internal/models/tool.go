package models

// ToolStatus is the outcome of a tool execution.
type ToolStatus string

const (
	ToolSuccess ToolStatus = "success"
	ToolError   ToolStatus = "error"
)

// OutputFile is one file produced by a tool run.
type OutputFile struct {
	DisplayName string `json:"displayName"`
	StoredName  string `json:"storedName"`
	OutputPath  string `json:"-"`
}

// ToolResult is the uniform result shape every tool invocation is
// normalized into. A failed run has an empty OutputFiles list and a
// human-readable Message; it is never reported as a Go error to callers.
type ToolResult struct {
	Status      ToolStatus   `json:"status"`
	OutputFiles []OutputFile `json:"outputFiles"`
	Message     string       `json:"message"`
}

// ErrorResult builds a failed ToolResult with the given message.
func ErrorResult(message string) ToolResult {
	return ToolResult{Status: ToolError, OutputFiles: []OutputFile{}, Message: message}
}

// SuccessResult builds a successful ToolResult.
func SuccessResult(files []OutputFile, message string) ToolResult {
	if files == nil {
		files = []OutputFile{}
	}
	return ToolResult{Status: ToolSuccess, OutputFiles: files, Message: message}
}
