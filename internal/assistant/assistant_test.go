package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radha-ai/radha/internal/llm/provider"
	"github.com/radha-ai/radha/internal/llm/selector"
	"github.com/radha-ai/radha/pkg/session"
)

// scriptedAdapter replays canned responses and records every request.
type scriptedAdapter struct {
	name      string
	available bool
	responses []string
	err       error
	requests  []provider.Request
}

func (s *scriptedAdapter) Name() string    { return s.name }
func (s *scriptedAdapter) Available() bool { return s.available }

func (s *scriptedAdapter) Generate(_ context.Context, req provider.Request) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	if len(s.requests) <= len(s.responses) {
		return s.responses[len(s.requests)-1], nil
	}
	return "ok", nil
}

func newTestAssistant(local, cloud *scriptedAdapter) (*Assistant, *session.Store) {
	store := session.NewStore()
	a := New(selector.New(local, cloud), store, DefaultOptions())
	return a, store
}

func localOnly(responses ...string) *scriptedAdapter {
	return &scriptedAdapter{name: "local", available: true, responses: responses}
}

func TestChatIncludesPriorTurnsBeforeQuery(t *testing.T) {
	local := localOnly("12")
	a, store := newTestAssistant(local, &scriptedAdapter{name: "cloud"})

	store.Append("s1", session.RoleUser, "What is 2+2?")
	store.Append("s1", session.RoleAssistant, "4")

	res, err := a.Do(context.Background(), TaskRequest{
		Action:    ActionChat,
		Query:     "And times 3?",
		SessionID: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "12", res.RawText)
	assert.Equal(t, "local", res.ModelUsed)

	require.Len(t, local.requests, 1)
	req := local.requests[0]
	require.Len(t, req.History, 2)
	assert.Equal(t, "What is 2+2?", req.History[0].Content)
	assert.Equal(t, "4", req.History[1].Content)
	assert.Equal(t, "And times 3?", req.Prompt)
}

func TestExchangeIsRecordedAfterGeneration(t *testing.T) {
	a, store := newTestAssistant(localOnly("blue"), &scriptedAdapter{name: "cloud"})

	_, err := a.Do(context.Background(), TaskRequest{
		Action:    ActionChat,
		Query:     "Favorite color?",
		SessionID: "s1",
	})
	require.NoError(t, err)

	turns := store.History("s1")
	require.Len(t, turns, 2)
	assert.Equal(t, session.RoleUser, turns[0].Role)
	assert.Equal(t, "Favorite color?", turns[0].Text)
	assert.Equal(t, session.RoleAssistant, turns[1].Role)
	assert.Equal(t, "blue", turns[1].Text)
}

func TestUnknownActionNeverReachesBackend(t *testing.T) {
	local := localOnly()
	a, _ := newTestAssistant(local, &scriptedAdapter{name: "cloud"})

	_, err := a.Do(context.Background(), TaskRequest{Action: Action("translate"), Query: "hola"})
	assert.ErrorIs(t, err, ErrUnsupportedAction)
	assert.Empty(t, local.requests)
}

func TestExplicitCloudWithoutKey(t *testing.T) {
	local := localOnly()
	cloud := &scriptedAdapter{name: "cloud", available: false}
	a, _ := newTestAssistant(local, cloud)

	_, err := a.Do(context.Background(), TaskRequest{
		Action:         ActionChat,
		Query:          "hi",
		RequestedModel: "cloud",
	})
	assert.ErrorIs(t, err, selector.ErrModelUnavailable)
	assert.Empty(t, cloud.requests, "unavailable backend must not be called")
	assert.Empty(t, local.requests, "explicit mode must not fall back")
}

func TestGradeCodeRejectsUnsupportedLanguage(t *testing.T) {
	local := localOnly()
	a, _ := newTestAssistant(local, &scriptedAdapter{name: "cloud"})

	_, err := a.Do(context.Background(), TaskRequest{
		Action: ActionGradeCode,
		Query:  `puts "hello"`,
		Params: map[string]string{"language": "ruby"},
	})
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Empty(t, local.requests)
}

func TestGradeCodeParsesScore(t *testing.T) {
	tests := []struct {
		name   string
		review string
		score  int
		passed bool
	}{
		{"labeled total", "Nice work.\nTotal Score: 85/100\nKeep it up.", 85, true},
		{"short label", "Score: 42/100. Needs another pass.", 42, false},
		{"grade label with bold", "**Grade:** 60/100", 60, true},
		{"no score line", "Looks reasonable overall.", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestAssistant(localOnly(tt.review), &scriptedAdapter{name: "cloud"})

			res, err := a.Do(context.Background(), TaskRequest{
				Action: ActionGradeCode,
				Query:  "def add(a, b): return a + b",
				Params: map[string]string{"language": "python"},
			})
			require.NoError(t, err)

			grade, ok := res.Structured.(*CodeGrade)
			require.True(t, ok)
			assert.Equal(t, tt.score, grade.Score)
			assert.Equal(t, tt.passed, grade.Passed)
			assert.Equal(t, tt.review, grade.Feedback)
		})
	}
}

func TestQuizDegradesToRawText(t *testing.T) {
	prose := "Photosynthesis is how plants turn light into sugar. It happens in chloroplasts."
	a, _ := newTestAssistant(localOnly(prose), &scriptedAdapter{name: "cloud"})

	res, err := a.Do(context.Background(), TaskRequest{
		Action: ActionQuiz,
		Query:  "photosynthesis",
	})
	require.NoError(t, err)
	assert.Equal(t, prose, res.RawText)
	assert.Nil(t, res.Structured)
}

func TestQuizStructuredPayload(t *testing.T) {
	quiz := `1. What gas do plants absorb?
2. Where does photosynthesis occur?

Answers:
1. Carbon dioxide
2. In the chloroplasts`
	a, _ := newTestAssistant(localOnly(quiz), &scriptedAdapter{name: "cloud"})

	res, err := a.Do(context.Background(), TaskRequest{Action: ActionQuiz, Query: "photosynthesis"})
	require.NoError(t, err)

	qas, ok := res.Structured.([]QA)
	require.True(t, ok)
	require.Len(t, qas, 2)
	assert.Equal(t, "What gas do plants absorb?", qas[0].Question)
	assert.Equal(t, "Carbon dioxide", qas[0].Answer)
}

func TestPracticeGeneratesQuestionThenAnswer(t *testing.T) {
	local := localOnly("What is the powerhouse of the cell?", "The mitochondrion.")
	a, _ := newTestAssistant(local, &scriptedAdapter{name: "cloud"})

	res, err := a.Do(context.Background(), TaskRequest{
		Action: ActionPractice,
		Params: map[string]string{"subject": "biology", "grade_level": "9th grade"},
	})
	require.NoError(t, err)

	require.Len(t, local.requests, 2)
	assert.Equal(t, 200, local.requests[0].MaxTokens)
	assert.Equal(t, 300, local.requests[1].MaxTokens)
	assert.Contains(t, local.requests[1].Prompt, "What is the powerhouse of the cell?")

	qa, ok := res.Structured.(*PracticeQA)
	require.True(t, ok)
	assert.Equal(t, "What is the powerhouse of the cell?", qa.Question)
	assert.Equal(t, "The mitochondrion.", qa.Answer)
	assert.Equal(t, "biology", qa.Subject)
	assert.Equal(t, "What is the powerhouse of the cell?", res.RawText)
}

func TestCheckAnswerVerdicts(t *testing.T) {
	tests := []struct {
		name     string
		response string
		correct  bool
		feedback string
	}{
		{"correct", "CORRECT: Well reasoned, 4 times 3 is 12.", true, "Well reasoned, 4 times 3 is 12."},
		{"lowercase prefix", "correct: Nicely done.", true, "Nicely done."},
		{"incorrect", "INCORRECT: The answer is 12, not 14.", false, "The answer is 12, not 14."},
		{"missing prefix", "That seems fine.", false, "That seems fine."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestAssistant(localOnly(tt.response), &scriptedAdapter{name: "cloud"})

			res, err := a.Do(context.Background(), TaskRequest{
				Action: ActionCheckAnswer,
				Query:  "14",
				Params: map[string]string{"question": "What is 4*3?", "correct_answer": "12"},
			})
			require.NoError(t, err)

			check, ok := res.Structured.(*AnswerCheck)
			require.True(t, ok)
			assert.Equal(t, tt.correct, check.Correct)
			assert.Equal(t, tt.feedback, check.Feedback)
			assert.Equal(t, tt.feedback, res.RawText)
			if tt.correct {
				assert.Contains(t, rewards, check.Reward)
			} else {
				assert.Equal(t, consolation, check.Reward)
			}
		})
	}
}

func TestBackendErrorPropagates(t *testing.T) {
	boom := provider.NewBackendError("local", provider.KindTimeout, "deadline", nil)
	local := &scriptedAdapter{name: "local", available: true, err: boom}
	a, store := newTestAssistant(local, &scriptedAdapter{name: "cloud"})

	_, err := a.Do(context.Background(), TaskRequest{
		Action:    ActionChat,
		Query:     "hi",
		SessionID: "s1",
	})
	assert.True(t, provider.IsKind(err, provider.KindTimeout))
	assert.Empty(t, store.History("s1"), "failed exchanges are not recorded")
}

func TestUnknownRequestedModel(t *testing.T) {
	a, _ := newTestAssistant(localOnly(), &scriptedAdapter{name: "cloud"})

	_, err := a.Do(context.Background(), TaskRequest{
		Action:         ActionChat,
		Query:          "hi",
		RequestedModel: "mainframe",
	})
	assert.ErrorIs(t, err, selector.ErrUnknownMode)
}

func TestParseAction(t *testing.T) {
	for _, s := range []string{"chat", "quiz", "grade_code", "check_answer", "study_plan"} {
		_, err := ParseAction(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseAction("juggle")
	assert.ErrorIs(t, err, ErrUnsupportedAction)
}

func TestTemplatesInterpolateParams(t *testing.T) {
	local := localOnly()
	a, _ := newTestAssistant(local, &scriptedAdapter{name: "cloud"})

	_, err := a.Do(context.Background(), TaskRequest{
		Action: ActionQuiz,
		Query:  "fractions",
		Params: map[string]string{"count": "3", "grade_level": "5th grade"},
	})
	require.NoError(t, err)

	prompt := local.requests[0].Prompt
	assert.Contains(t, prompt, "3-question quiz")
	assert.Contains(t, prompt, "'fractions'")
	assert.Contains(t, prompt, "5th grade")
	assert.True(t, strings.Contains(local.requests[0].System, "5th grade"))
}

func TestStatelessRequestLeavesNoSession(t *testing.T) {
	a, store := newTestAssistant(localOnly("hi"), &scriptedAdapter{name: "cloud"})

	_, err := a.Do(context.Background(), TaskRequest{Action: ActionChat, Query: "hello"})
	require.NoError(t, err)
	assert.Zero(t, store.Sessions())
}

func TestMaxTokensCapsActionBudgets(t *testing.T) {
	local := localOnly("a plan")
	a := New(selector.New(local, &scriptedAdapter{name: "cloud"}), session.NewStore(),
		Options{MaxTokens: 512, Temperature: 0.7})

	_, err := a.Do(context.Background(), TaskRequest{Action: ActionCurriculum, Query: "algebra"})
	require.NoError(t, err)
	require.Len(t, local.requests, 1)
	assert.Equal(t, 512, local.requests[0].MaxTokens)

	// Budgets already under the ceiling are kept as-is.
	local = localOnly("hi")
	a = New(selector.New(local, &scriptedAdapter{name: "cloud"}), session.NewStore(),
		Options{MaxTokens: 4096, Temperature: 0.7})

	_, err = a.Do(context.Background(), TaskRequest{Action: ActionChat, Query: "hello"})
	require.NoError(t, err)
	require.Len(t, local.requests, 1)
	assert.Equal(t, 1024, local.requests[0].MaxTokens)
}

func TestMaxTokensCapsPracticeAnswer(t *testing.T) {
	local := localOnly("What is 7*8?", "56")
	a := New(selector.New(local, &scriptedAdapter{name: "cloud"}), session.NewStore(),
		Options{MaxTokens: 250, Temperature: 0.7})

	_, err := a.Do(context.Background(), TaskRequest{Action: ActionPractice})
	require.NoError(t, err)
	require.Len(t, local.requests, 2)
	assert.Equal(t, 200, local.requests[0].MaxTokens)
	assert.Equal(t, 250, local.requests[1].MaxTokens)
}

func TestLocalHistoryIsTokenBounded(t *testing.T) {
	local := localOnly("ok")
	a, store := newTestAssistant(local, &scriptedAdapter{name: "cloud"})

	// Four turns of roughly 1500 estimated tokens each. Only the newest
	// fits the local context budget.
	long := strings.Repeat("x", 6000)
	for i := 0; i < 4; i++ {
		store.Append("s1", session.RoleUser, long)
	}

	_, err := a.Do(context.Background(), TaskRequest{Action: ActionChat, Query: "hi", SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, local.requests, 1)
	assert.Len(t, local.requests[0].History, 1)

	// The cloud backend keeps the full turn window.
	cloud := &scriptedAdapter{name: "cloud", available: true, responses: []string{"ok"}}
	a, store = newTestAssistant(&scriptedAdapter{name: "local"}, cloud)
	for i := 0; i < 4; i++ {
		store.Append("s1", session.RoleUser, long)
	}

	_, err = a.Do(context.Background(), TaskRequest{Action: ActionChat, Query: "hi", SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, cloud.requests, 1)
	assert.Len(t, cloud.requests[0].History, 4)
}

func TestCurrentModel(t *testing.T) {
	a, _ := newTestAssistant(localOnly(), &scriptedAdapter{name: "cloud", available: true})
	assert.Equal(t, "local", a.CurrentModel())

	none, _ := newTestAssistant(
		&scriptedAdapter{name: "local"},
		&scriptedAdapter{name: "cloud"},
	)
	assert.Equal(t, "", none.CurrentModel())
}
