package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseResponse finds the reply text inside the service's JSON envelope and
// parses it.
func ParseResponse(body []byte) (Report, error) {
	text, err := ReplyText(body)
	if err != nil {
		return Report{}, err
	}
	return Parse(text)
}

// ReplyText returns the textual payload of a JSON reply envelope. The
// envelope layout is owned by the remote service, so several known shapes
// are tried in turn.
func ReplyText(body []byte) (string, error) {
	var env any
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if s, ok := env.(string); ok && strings.TrimSpace(s) != "" {
		return s, nil
	}
	obj, ok := env.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: unexpected %T envelope", ErrMalformedResponse, env)
	}
	for _, read := range envelopeReaders {
		if s, ok := read(obj); ok && strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: no text content in reply", ErrMalformedResponse)
}

var envelopeReaders = []func(map[string]any) (string, bool){
	// Messages API: {"content":[{"type":"text","text":"..."}]} or a plain string.
	func(o map[string]any) (string, bool) { return contentText(o["content"]) },
	// Legacy text completions: {"completion":"..."}.
	func(o map[string]any) (string, bool) {
		s, ok := o["completion"].(string)
		return s, ok
	},
	// {"messages":[{"content":...}]}
	func(o map[string]any) (string, bool) {
		first, ok := firstObject(o["messages"])
		if !ok {
			return "", false
		}
		return contentText(first["content"])
	},
	// Chat completions: {"choices":[{"message":{"content":"..."}}]} or {"choices":[{"text":"..."}]}.
	func(o map[string]any) (string, bool) {
		first, ok := firstObject(o["choices"])
		if !ok {
			return "", false
		}
		if msg, ok := first["message"].(map[string]any); ok {
			return contentText(msg["content"])
		}
		s, ok := first["text"].(string)
		return s, ok
	},
}

// contentText accepts either a string or a list of content blocks and joins
// the text of every text block.
func contentText(v any) (string, bool) {
	switch c := v.(type) {
	case string:
		return c, true
	case []any:
		var parts []string
		for _, item := range c {
			block, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if typ, ok := block["type"].(string); ok && typ != "text" {
				continue
			}
			if s, ok := block["text"].(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n"), len(parts) > 0
	}
	return "", false
}

func firstObject(v any) (map[string]any, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	obj, ok := list[0].(map[string]any)
	return obj, ok
}
