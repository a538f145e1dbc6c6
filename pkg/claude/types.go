package claude

import "encoding/json"

// StreamRequest describes one prompt sent to the CLI.
type StreamRequest struct {
	Prompt          string
	WorkingDir      string
	SystemPrompt    string
	PermissionMode  string
	ResumeSessionID string
	AllowedTools    []string
	DisallowedTools []string
}

// ModelUsage is the per-model usage block found on result chunks. Cumulative
// counters are pointers so that absence is distinguishable from zero.
type ModelUsage struct {
	InputTokens              int64 `json:"inputTokens"`
	OutputTokens             int64 `json:"outputTokens"`
	CacheReadInputTokens     int64 `json:"cacheReadInputTokens"`
	CacheCreationInputTokens int64 `json:"cacheCreationInputTokens"`

	CumulativeInputTokens              *int64 `json:"cumulativeInputTokens"`
	CumulativeOutputTokens             *int64 `json:"cumulativeOutputTokens"`
	CumulativeCacheReadInputTokens     *int64 `json:"cumulativeCacheReadInputTokens"`
	CumulativeCacheCreationInputTokens *int64 `json:"cumulativeCacheCreationInputTokens"`

	ContextWindow int64 `json:"contextWindow"`
}

// TurnUsage is the API-shaped usage block carried on assistant chunks.
type TurnUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
}

// Total is the token count accumulated so far within one turn.
func (u TurnUsage) Total() int64 {
	return u.InputTokens + u.OutputTokens + u.CacheReadInputTokens + u.CacheCreationInputTokens
}

// Message is one chunk of CLI output. Chunks are forwarded verbatim through
// Raw; only the handful of fields the orchestrator inspects are decoded.
type Message struct {
	Type       string
	Subtype    string
	SessionID  string
	IsError    bool
	ModelUsage map[string]ModelUsage
	Usage      *TurnUsage
	Raw        json.RawMessage
}

type messageEnvelope struct {
	Type       string                `json:"type"`
	Subtype    string                `json:"subtype"`
	SessionID  string                `json:"session_id"`
	IsError    bool                  `json:"is_error"`
	ModelUsage map[string]ModelUsage `json:"modelUsage"`
	Usage      *TurnUsage            `json:"usage"`
	Message    *struct {
		Usage *TurnUsage `json:"usage"`
	} `json:"message"`
}

// UnmarshalJSON decodes the inspected fields and keeps the original bytes.
func (m *Message) UnmarshalJSON(data []byte) error {
	var env messageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	m.Type = env.Type
	m.Subtype = env.Subtype
	m.SessionID = env.SessionID
	m.IsError = env.IsError
	m.ModelUsage = env.ModelUsage
	m.Usage = env.Usage
	if m.Usage == nil && env.Message != nil {
		m.Usage = env.Message.Usage
	}
	m.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// IsResult reports whether the chunk is the terminal result of a turn.
func (m *Message) IsResult() bool {
	return m.Type == MessageTypeResult
}
