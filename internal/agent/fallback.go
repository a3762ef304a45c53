package agent

import "fmt"

const (
	parseFailureThought  = "Error: Model did not return valid JSON."
	parseFailureResponse = "I apologize, but I had a formatting error. Please try again."
)

// ParseFailureDecision is returned when the model reply is not a valid decision.
func ParseFailureDecision() Decision {
	return finish(parseFailureThought, parseFailureResponse)
}

// RemoteFailureDecision is returned when the completion service could not be reached
// or answered with an error. The error text is embedded for the user.
func RemoteFailureDecision(err error) Decision {
	return finish(
		fmt.Sprintf("An error occurred: %v", err),
		fmt.Sprintf("An error occurred while contacting the AI model: %v", err),
	)
}

func finish(thought, response string) Decision {
	return Decision{
		Thought: thought,
		Action: ToolCall{
			ToolName:   ToolFinish,
			Parameters: map[string]string{"response": response},
		},
	}
}
