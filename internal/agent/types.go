package agent

// Message roles accepted in a conversation history.
// RoleTool is sent by the editor client for tool observations; roles are not validated.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Tool names the model may propose. Execution happens in the editor, never here.
const (
	ToolWriteFile       = "write_file"
	ToolRunShellCommand = "run_shell_command"
	ToolFinish          = "finish"
)

// Message represents a single message in a conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolCall is the action a Decision proposes the external executor perform.
// Parameters are opaque and passed through as returned by the model.
type ToolCall struct {
	ToolName   string            `json:"tool_name"`
	Parameters map[string]string `json:"parameters"`
}

// Decision is the structured {thought, action} object returned for every decide call.
type Decision struct {
	Thought string   `json:"thought"`
	Action  ToolCall `json:"action"`
}

// IsFinish reports whether the decision ends the agent loop.
func (d Decision) IsFinish() bool {
	return d.Action.ToolName == ToolFinish
}
