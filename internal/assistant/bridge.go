// Package assistant implements the advisory triage assistant: a per-session
// chat transcript whose replies come from an external text-generation call.
// The suggestion is advisory free text; nothing here parses it or validates
// it against the specialty catalog.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"

	"github.com/healpointhq/clinic-platform/internal/domain"
	"github.com/healpointhq/clinic-platform/internal/observability/metrics"
	"github.com/healpointhq/clinic-platform/internal/state"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

var tracer = otel.Tracer("healpoint.internal.assistant")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// greeting seeds every new transcript.
	greeting = "Hello! I am your HealPoint Assistant. Describe your symptoms, and I can suggest the right specialist for you."
	// emptyFallback replaces a blank completion.
	emptyFallback = "I'm sorry, I couldn't process that. Please try again."
	// errorFallback replaces any transport or service failure.
	errorFallback = "Connection error. Please check your network."
)

var (
	// ErrEmptyMessage rejects a whitespace-only send.
	ErrEmptyMessage = errors.New("assistant: message is empty")
	// ErrBusy rejects a send while a request is already in flight for the
	// session. The second send is dropped, not queued.
	ErrBusy = errors.New("assistant: a request is already in flight")
)

// Message is one transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator is the external text-generation capability: one prompt in, one
// free-text completion out. A single attempt per send; no retry policy.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type transcript struct {
	messages []Message
	inFlight bool
}

// Bridge maintains per-session transcripts and relays symptom descriptions to
// the generator.
type Bridge struct {
	gen       Generator
	container *state.Container
	logger    *logging.Logger
	metrics   *metrics.ClinicMetrics

	mu       sync.Mutex
	sessions map[string]*transcript
}

// NewBridge constructs an assistant bridge. The generator may be nil, in
// which case every send resolves to the fixed fallback reply.
func NewBridge(gen Generator, container *state.Container, logger *logging.Logger, m *metrics.ClinicMetrics) *Bridge {
	if container == nil {
		panic("assistant: container required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Bridge{
		gen:       gen,
		container: container,
		logger:    logger,
		metrics:   m,
		sessions:  make(map[string]*transcript),
	}
}

// Transcript returns the session's messages, seeding the greeting on first
// access.
func (b *Bridge) Transcript(sessionID string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.session(sessionID)
	return append([]Message(nil), t.messages...)
}

// Send appends the user message, issues one generation request, and appends
// exactly one assistant reply: the completion, the empty-completion fallback,
// or the connection-error fallback. Failures never propagate to the caller.
func (b *Bridge) Send(ctx context.Context, sessionID, text string) ([]Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	b.mu.Lock()
	t := b.session(sessionID)
	if t.inFlight {
		b.mu.Unlock()
		b.metrics.ObserveAssistant("dropped")
		return nil, ErrBusy
	}
	t.inFlight = true
	t.messages = append(t.messages, Message{Role: RoleUser, Content: text})
	b.mu.Unlock()

	reply, status := b.generate(ctx, text)

	b.mu.Lock()
	t.messages = append(t.messages, Message{Role: RoleAssistant, Content: reply})
	t.inFlight = false
	out := append([]Message(nil), t.messages...)
	b.mu.Unlock()

	b.metrics.ObserveAssistant(status)
	return out, nil
}

// ApplySuggestion records the user's chosen specialty as the session's active
// doctor filter. The value is not checked against the catalog; the HTTP layer
// offers the fixed candidate list.
func (b *Bridge) ApplySuggestion(sessionID string, specialty string) state.Filter {
	filter := state.Filter{Specialty: specialty}
	b.container.SetSessionFilter(sessionID, filter)
	b.logger.Info("assistant suggestion applied", "session_id", sessionID, "specialty", specialty)
	return b.container.SessionFilter(sessionID)
}

func (b *Bridge) generate(ctx context.Context, text string) (reply, status string) {
	ctx, span := tracer.Start(ctx, "assistant.generate")
	defer span.End()

	if b.gen == nil {
		return errorFallback, "disabled"
	}

	completion, err := b.gen.Generate(ctx, TriagePrompt(text))
	if err != nil {
		span.RecordError(err)
		b.logger.Error("assistant generation failed", "error", err)
		return errorFallback, "error"
	}
	if strings.TrimSpace(completion) == "" {
		return emptyFallback, "empty"
	}
	return completion, "ok"
}

// session returns the transcript for a session, creating and seeding it when
// absent. Callers must hold b.mu.
func (b *Bridge) session(sessionID string) *transcript {
	t, ok := b.sessions[sessionID]
	if !ok {
		t = &transcript{messages: []Message{{Role: RoleAssistant, Content: greeting}}}
		b.sessions[sessionID] = t
	}
	return t
}

// TriagePrompt builds the fixed triage instruction around the literal patient
// text and the six-item candidate enumeration.
func TriagePrompt(userText string) string {
	return fmt.Sprintf(
		"You are a helpful hospital triage assistant.\n"+
			"A patient says: %q.\n"+
			"Based on these symptoms, identify which medical specialty they likely need.\n"+
			"Available specialties are: %s.\n"+
			"Respond with a friendly recommendation and EXPLICITLY mention the name of the specialty in your response.\n"+
			"Keep it concise (max 2 sentences). Include a disclaimer that you are an AI and not a doctor.",
		userText,
		strings.Join(domain.DefaultSpecialties(), ", "),
	)
}
