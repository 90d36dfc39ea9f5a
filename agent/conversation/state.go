package conversation

import (
	"errors"
	"strings"
)

// Role identifies who authored a message in the conversation transcript.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleWorker    Role = "worker"
)

// Message is one entry in the append-only conversation transcript.
// Worker is set only when a worker agent authored the message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Worker  string `json:"worker,omitempty"`
}

var (
	ErrEmptyRequest     = errors.New("request text is empty")
	ErrInvalidPatientID = errors.New("patient id must be positive")
)

// State carries everything one in-flight request accumulates across hops.
// It is owned by exactly one request and never shared; no locking here.
//
// History is append-only. HopCount is incremented only by the supervisor.
// LastUserQuery is captured once on the first hop and never overwritten.
type State struct {
	History       []Message
	PatientID     int
	PendingRoute  string
	LastUserQuery string
	Rationale     string
	HopCount      int
}

// NewState seeds a fresh request state with the initiating user message.
func NewState(patientID int, requestText string) (*State, error) {
	if patientID <= 0 {
		return nil, ErrInvalidPatientID
	}
	text := strings.TrimSpace(requestText)
	if text == "" {
		return nil, ErrEmptyRequest
	}
	return &State{
		History:   []Message{{Role: RoleUser, Content: text}},
		PatientID: patientID,
	}, nil
}

// Append adds a message to the transcript. Empty content is dropped so the
// transcript never gains blank entries.
func (s *State) Append(msg Message) {
	if strings.TrimSpace(msg.Content) == "" {
		return
	}
	s.History = append(s.History, msg)
}

// NextHop advances the hop counter and returns the new value. Only the
// supervisor calls this; everyone else treats HopCount as read-only.
func (s *State) NextHop() int {
	s.HopCount++
	return s.HopCount
}

// CaptureQuery records the original user utterance exactly once.
func (s *State) CaptureQuery() {
	if s.LastUserQuery != "" {
		return
	}
	if len(s.History) > 0 && s.History[0].Role == RoleUser {
		s.LastUserQuery = s.History[0].Content
	}
}

// Transcript renders a history as role-prefixed lines for prompt payloads.
// A worker label, when present, replaces the bare role.
func Transcript(history []Message) string {
	var b strings.Builder
	for i, msg := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		label := string(msg.Role)
		if msg.Worker != "" {
			label = msg.Worker
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return b.String()
}

// Transcript renders the accumulated history.
func (s *State) Transcript() string {
	return Transcript(s.History)
}

// Response concatenates every accumulated message in insertion order.
// This is the user-facing result, even for budget- or failure-terminated
// requests: whatever explanation text was produced along the way.
func (s *State) Response() string {
	parts := make([]string, 0, len(s.History))
	for _, msg := range s.History {
		parts = append(parts, msg.Content)
	}
	return strings.Join(parts, "\n")
}
