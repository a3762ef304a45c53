package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrInvalidDecision is returned when a reply decodes as JSON but does not have the decision shape.
var ErrInvalidDecision = errors.New("invalid decision")

// ParseOptions controls how a model reply is decoded.
type ParseOptions struct {
	// UnwrapFences decodes the body of the first ```json (or untagged) fenced
	// code block when the reply contains one.
	UnwrapFences bool
}

type rawDecision struct {
	Thought *string    `json:"thought"`
	Action  *rawAction `json:"action"`
}

type rawAction struct {
	ToolName   *string                    `json:"tool_name"`
	Parameters map[string]json.RawMessage `json:"parameters"`
}

// ParseDecision decodes a model reply into a Decision.
// The reply must be a single JSON object with a string "thought" and an "action"
// object carrying a non-empty "tool_name". Extra fields are ignored.
// Parameter values that are not strings are kept as their compact JSON text,
// so {"timeout":30} becomes {"timeout":"30"}. A null value becomes "".
func ParseDecision(reply string, opts ParseOptions) (Decision, error) {
	body := []byte(strings.TrimSpace(reply))
	if opts.UnwrapFences {
		if fenced, ok := extractFencedJSON(body); ok {
			body = bytes.TrimSpace(fenced)
		}
	}
	if len(body) == 0 {
		return Decision{}, fmt.Errorf("empty reply: %w", ErrInvalidDecision)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	var raw rawDecision
	if err := dec.Decode(&raw); err != nil {
		return Decision{}, fmt.Errorf("failed to decode reply: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Decision{}, fmt.Errorf("unexpected data after decision object: %w", ErrInvalidDecision)
	}

	if raw.Thought == nil {
		return Decision{}, fmt.Errorf("missing thought: %w", ErrInvalidDecision)
	}
	if raw.Action == nil {
		return Decision{}, fmt.Errorf("missing action: %w", ErrInvalidDecision)
	}
	if raw.Action.ToolName == nil || *raw.Action.ToolName == "" {
		return Decision{}, fmt.Errorf("missing action.tool_name: %w", ErrInvalidDecision)
	}

	params, err := stringParams(raw.Action.Parameters)
	if err != nil {
		return Decision{}, err
	}

	return Decision{
		Thought: *raw.Thought,
		Action: ToolCall{
			ToolName:   *raw.Action.ToolName,
			Parameters: params,
		},
	}, nil
}

// stringParams flattens parameter values to strings without judging their content.
func stringParams(raw map[string]json.RawMessage) (map[string]string, error) {
	params := make(map[string]string, len(raw))
	for key, value := range raw {
		value = bytes.TrimSpace(value)
		switch {
		case len(value) == 0 || bytes.Equal(value, []byte("null")):
			params[key] = ""
		case value[0] == '"':
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, fmt.Errorf("failed to decode parameter %q: %w", key, err)
			}
			params[key] = s
		default:
			var buf bytes.Buffer
			if err := json.Compact(&buf, value); err != nil {
				return nil, fmt.Errorf("failed to decode parameter %q: %w", key, err)
			}
			params[key] = buf.String()
		}
	}
	return params, nil
}

var markdown = goldmark.New()

// extractFencedJSON returns the content of the first fenced code block tagged
// json or left untagged.
func extractFencedJSON(src []byte) ([]byte, bool) {
	doc := markdown.Parser().Parse(text.NewReader(src))

	var (
		out   []byte
		found bool
	)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := string(block.Language(src))
		if lang != "" && !strings.EqualFold(lang, "json") {
			return ast.WalkSkipChildren, nil
		}

		var buf bytes.Buffer
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			buf.Write(segment.Value(src))
		}
		out = buf.Bytes()
		found = true
		return ast.WalkStop, nil
	})

	return out, found
}
