// Package assistant routes high-level learning tasks to a model backend.
//
// Each action maps to a prompt template and a post-processor. The assistant
// resolves the requested model through the selector, sends the windowed
// conversation history ahead of the new query, and records the exchange in
// the session store. It never logs; errors carry everything the caller needs.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/radha-ai/radha/internal/llm/provider"
	"github.com/radha-ai/radha/internal/llm/selector"
	"github.com/radha-ai/radha/pkg/session"
)

// Action identifies a learning task.
type Action string

const (
	ActionChat            Action = "chat"
	ActionNotes           Action = "notes"
	ActionQuiz            Action = "quiz"
	ActionSummary         Action = "summary"
	ActionDoubt           Action = "doubt"
	ActionCurriculum      Action = "curriculum"
	ActionGradeCode       Action = "grade_code"
	ActionPractice        Action = "practice"
	ActionCheckAnswer     Action = "check_answer"
	ActionTeacherFeedback Action = "teacher_feedback"
	ActionStudyPlan       Action = "study_plan"
	ActionExplain         Action = "explain"
)

var (
	// ErrUnsupportedAction is returned for an action the router does not
	// know. Unknown actions never fall back to chat.
	ErrUnsupportedAction = errors.New("unsupported action")

	// ErrUnsupportedLanguage is returned by grade_code for a language
	// outside the supported set, before any model call.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// ParseAction validates a wire-level action string.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionChat, ActionNotes, ActionQuiz, ActionSummary, ActionDoubt,
		ActionCurriculum, ActionGradeCode, ActionPractice, ActionCheckAnswer,
		ActionTeacherFeedback, ActionStudyPlan, ActionExplain:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAction, s)
	}
}

// TaskRequest is one unit of work for the assistant.
type TaskRequest struct {
	Action    Action
	Query     string
	SessionID string
	// RequestedModel is "local", "cloud", "auto", or empty (auto).
	RequestedModel string
	// Params carries action-specific inputs such as grade_level, language,
	// or count. Missing keys fall back to per-action defaults.
	Params map[string]string
}

// Param returns a request parameter or the given default.
func (r TaskRequest) Param(key, def string) string {
	if v, ok := r.Params[key]; ok && v != "" {
		return v
	}
	return def
}

// TaskResult is the outcome of a completed task.
type TaskResult struct {
	Action  Action
	RawText string
	// Structured holds the action's parsed payload when one exists:
	// []QA for quiz, *CodeGrade for grade_code, *PracticeQA for practice,
	// *AnswerCheck for check_answer. Nil for pass-through actions and for
	// degraded parses.
	Structured any
	// ModelUsed is the backend name that produced the text.
	ModelUsed string
}

// Options tunes the assistant.
type Options struct {
	// HistoryTurns bounds the conversation window sent to the backend.
	// Non-positive keeps the full history.
	HistoryTurns int
	// MaxTokens is a ceiling on every generation request. Actions with a
	// smaller budget keep it; non-positive leaves all budgets unchanged.
	MaxTokens int
	// Temperature is passed to every generation.
	Temperature float32
}

// DefaultOptions mirror the runtime defaults of the backends.
func DefaultOptions() Options {
	return Options{HistoryTurns: 20, Temperature: 0.7}
}

// Assistant executes tasks against whichever backend the selector resolves.
type Assistant struct {
	selector *selector.Selector
	store    *session.Store
	opts     Options
}

// New creates an assistant over the given selector and session store.
func New(sel *selector.Selector, store *session.Store, opts Options) *Assistant {
	if opts.Temperature == 0 {
		opts.Temperature = DefaultOptions().Temperature
	}
	return &Assistant{selector: sel, store: store, opts: opts}
}

// Do runs one task end to end: build the prompt, resolve a backend, generate,
// post-process, and append the exchange to the session. Selection happens per
// call, so consecutive turns of one session may be served by different
// backends.
func (a *Assistant) Do(ctx context.Context, req TaskRequest) (TaskResult, error) {
	mode, err := selector.ParseMode(req.RequestedModel)
	if err != nil {
		return TaskResult{}, err
	}

	task, err := buildTask(req)
	if err != nil {
		return TaskResult{}, err
	}

	adapter, err := a.selector.Resolve(mode)
	if err != nil {
		return TaskResult{}, err
	}

	history := a.history(req.SessionID, adapter.Name())

	raw, err := adapter.Generate(ctx, provider.Request{
		System:      task.system,
		History:     history,
		Prompt:      task.prompt,
		MaxTokens:   a.capTokens(task.maxTokens),
		Temperature: a.opts.Temperature,
	})
	if err != nil {
		return TaskResult{}, err
	}

	result := TaskResult{
		Action:    req.Action,
		RawText:   raw,
		ModelUsed: adapter.Name(),
	}
	if task.post != nil {
		result.RawText, result.Structured = task.post(raw)
	}

	// Practice runs a second generation for the reference answer. The
	// question stays the user-visible text either way.
	if req.Action == ActionPractice {
		if err := a.completePractice(ctx, adapter, req, &result); err != nil {
			return TaskResult{}, err
		}
	}

	a.record(req, result)
	return result, nil
}

// CurrentModel reports which backend an auto-mode request would use right
// now, or an empty string when none is available.
func (a *Assistant) CurrentModel() string {
	adapter, err := a.selector.Resolve(selector.ModeAuto)
	if err != nil {
		return ""
	}
	return adapter.Name()
}

// History returns the stored turns for a session, oldest first.
func (a *Assistant) History(sessionID string) []session.Turn {
	return a.store.History(sessionID)
}

// localHistoryTokens bounds the transcript sent to the local model. Its
// context window is token-denominated and far smaller than the cloud
// backends', so the turn window alone can overflow it.
const localHistoryTokens = 2048

// history converts the windowed session transcript into backend messages.
// The local backend gets an additional token-budget window on top of the
// turn-count one.
func (a *Assistant) history(sessionID, backend string) []provider.Message {
	if sessionID == "" {
		return nil
	}
	turns := session.Window(a.store.History(sessionID), a.opts.HistoryTurns)
	if backend == provider.LocalName {
		turns = session.WindowTokens(turns, localHistoryTokens)
	}
	msgs := make([]provider.Message, 0, len(turns))
	for _, t := range turns {
		role := provider.RoleUser
		if t.Role == session.RoleAssistant {
			role = provider.RoleAssistant
		}
		msgs = append(msgs, provider.Message{Role: role, Content: t.Text})
	}
	return msgs
}

// capTokens applies the configured generation ceiling to an action's budget.
func (a *Assistant) capTokens(budget int) int {
	if a.opts.MaxTokens > 0 && budget > a.opts.MaxTokens {
		return a.opts.MaxTokens
	}
	return budget
}

// record appends the exchange. Requests without a session id are stateless
// and leave no trace.
func (a *Assistant) record(req TaskRequest, res TaskResult) {
	if req.SessionID == "" {
		return
	}
	query := req.Query
	if query == "" {
		query = string(req.Action)
	}
	a.store.Append(req.SessionID, session.RoleUser, query)
	a.store.Append(req.SessionID, session.RoleAssistant, res.RawText)
}
