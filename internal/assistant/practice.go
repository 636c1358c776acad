package assistant

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/radha-ai/radha/internal/llm/provider"
)

// PracticeQA is a generated practice question with its reference answer.
type PracticeQA struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Subject    string `json:"subject"`
	GradeLevel string `json:"grade_level"`
}

// AnswerCheck is the verdict on a student's submitted answer.
type AnswerCheck struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
	Reward   string `json:"reward"`
}

var rewards = []string{
	"🌟 Excellent!",
	"🎯 Great job!",
	"✨ Fantastic!",
	"🏆 Outstanding!",
	"💫 Brilliant!",
}

const consolation = "Keep trying! 💪"

// completePractice runs the second generation of a practice task: the
// reference answer to the question produced by the first. The question stays
// the task's raw text; the pair lands in the structured payload.
func (a *Assistant) completePractice(ctx context.Context, adapter provider.Adapter, req TaskRequest, res *TaskResult) error {
	answer, err := adapter.Generate(ctx, provider.Request{
		System: defaultSystem,
		Prompt: fmt.Sprintf("What is the correct answer to this question: %s\nProvide a clear, educational answer.",
			res.RawText),
		MaxTokens:   a.capTokens(300),
		Temperature: a.opts.Temperature,
	})
	if err != nil {
		return err
	}

	res.Structured = &PracticeQA{
		Question:   res.RawText,
		Answer:     answer,
		Subject:    req.Param("subject", "general knowledge"),
		GradeLevel: req.Param("grade_level", "high school"),
	}
	return nil
}

var verdictPrefixRe = regexp.MustCompile(`(?i)^(correct|incorrect)\s*:\s*`)

func buildCheckAnswerTask(req TaskRequest) (task, error) {
	student := req.Param("student_answer", req.Query)

	return task{
		system: "You are a fair and encouraging teacher. Be honest in evaluation - don't mark wrong answers as correct. Provide constructive feedback.",
		prompt: fmt.Sprintf(`Question: %s
Correct Answer: %s
Student's Answer: %s

Evaluate if the student's answer is correct. Be strict but fair in your evaluation.
- If the answer is completely wrong or nonsensical, mark it as incorrect
- Only mark as correct if the student demonstrates understanding of the concept
- Consider partial credit only for answers that show some correct understanding
- For mathematical problems, the approach and final answer both matter

Provide encouraging but honest feedback. If wrong, explain what the correct approach should be.

Start your response with either "CORRECT:" or "INCORRECT:" followed by your feedback.`,
			req.Param("question", ""), req.Param("correct_answer", ""), student),
		maxTokens: 500,
		post: func(raw string) (string, any) {
			check := parseVerdict(raw)
			return check.Feedback, check
		},
	}, nil
}

// parseVerdict reads the CORRECT:/INCORRECT: protocol. A missing prefix
// counts as incorrect; the model was told to emit one.
func parseVerdict(raw string) *AnswerCheck {
	trimmed := strings.TrimSpace(raw)
	correct := strings.HasPrefix(strings.ToUpper(trimmed), "CORRECT:")
	feedback := strings.TrimSpace(verdictPrefixRe.ReplaceAllString(trimmed, ""))

	reward := consolation
	if correct {
		reward = rewards[rand.IntN(len(rewards))]
	}
	return &AnswerCheck{Correct: correct, Feedback: feedback, Reward: reward}
}
