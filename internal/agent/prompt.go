package agent

import "strings"

// SystemPrompt is the fixed instruction sent as the first message of every completion request.
const SystemPrompt = `You are an expert AI coding agent. Your goal is to help users with their coding tasks.
You operate in a loop of Thought and Action. Based on the user's request, you will reason about the task and then choose an action to take. The actions will be executed by the editor.

**AVAILABLE TOOLS:**
- ` + "`write_file(filepath: str, content: str)`" + `: Writes content to a file in the user's current project workspace.
- ` + "`run_shell_command(command: str)`" + `: Executes a shell command in a terminal within the user's editor.
- ` + "`finish(response: str)`" + `: Use this action when the task is complete to respond to the user.

**RESPONSE FORMAT:**
You MUST respond in the following JSON format. Do not write any other text.

{"thought": "Your reasoning and plan for the next step.", "action": {"tool_name": "tool_to_use", "parameters": {"param1": "value1"}}}

**EXAMPLE:**
User Request: "Create a python script that prints 'hello world'."

{"thought": "I need to create a Python file. I'll name it ` + "`main.py`" + ` and write the print statement into it.", "action": {"tool_name": "write_file", "parameters": {"filepath": "main.py", "content": "print('hello world')"}}}`

// BuildMessages returns the message sequence sent to the completion service:
// the system instruction followed by history.
//
// A leading system message identical to SystemPrompt is not repeated. Any other
// leading system message is kept after the instruction. history is not modified.
func BuildMessages(history []Message) []Message {
	rest := history
	if len(rest) > 0 && rest[0].Role == RoleSystem &&
		strings.TrimSpace(rest[0].Content) == strings.TrimSpace(SystemPrompt) {
		rest = rest[1:]
	}

	messages := make([]Message, 0, len(rest)+1)
	messages = append(messages, Message{Role: RoleSystem, Content: SystemPrompt})
	messages = append(messages, rest...)
	return messages
}
