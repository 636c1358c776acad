package assistant

import (
	"fmt"
	"strconv"
	"strings"
)

const defaultSystem = "You are an expert teaching assistant. Respond clearly and accurately. Use simple language for younger students."

// task is a fully built unit of generation: the transcript framing, the
// token budget, and an optional post-processor that may replace the raw
// text and attach a structured payload.
type task struct {
	system    string
	prompt    string
	maxTokens int
	post      func(raw string) (text string, structured any)
}

// buildTask interpolates the action's template. Validation that must happen
// before any backend call (unknown actions, unsupported grading languages)
// lives here.
func buildTask(req TaskRequest) (task, error) {
	grade := req.Param("grade_level", "high school")

	switch req.Action {
	case ActionChat:
		return task{
			system:    defaultSystem,
			prompt:    req.Query,
			maxTokens: 1024,
		}, nil

	case ActionNotes:
		topic := req.Param("topic", req.Query)
		return task{
			system: fmt.Sprintf("You are an expert educator creating content for %s students. Make it engaging and age-appropriate.", grade),
			prompt: fmt.Sprintf("Generate comprehensive class notes on '%s' for %s students. Include key concepts, definitions, and examples. Format with clear headings.",
				topic, grade),
			maxTokens: 1500,
		}, nil

	case ActionQuiz:
		topic := req.Param("topic", req.Query)
		count, err := strconv.Atoi(req.Param("count", "5"))
		if err != nil || count < 1 {
			count = 5
		}
		return task{
			system: fmt.Sprintf("You are an expert educator creating content for %s students. Make it engaging and age-appropriate.", grade),
			prompt: fmt.Sprintf("Create a %d-question quiz on '%s' for %s students. Include multiple choice and short answer questions with answers at the end.",
				count, topic, grade),
			maxTokens: 1500,
			post: func(raw string) (string, any) {
				if qas := ParseQuiz(raw); len(qas) > 0 {
					return raw, qas
				}
				return raw, nil
			},
		}, nil

	case ActionSummary:
		topic := req.Param("topic", req.Query)
		return task{
			system: fmt.Sprintf("You are an expert educator creating content for %s students. Make it engaging and age-appropriate.", grade),
			prompt: fmt.Sprintf("Summarize '%s' for %s students in simple terms. Include the most important points and real-world applications.",
				topic, grade),
			maxTokens: 1500,
		}, nil

	case ActionDoubt:
		subject := req.Param("subject", "general")
		return task{
			system: fmt.Sprintf("You are a patient teacher explaining concepts to %s students. Break down complex ideas into simple parts.", grade),
			prompt: fmt.Sprintf("Student question (%s, %s): %s\n\nProvide a clear, detailed explanation with examples if helpful.",
				grade, subject, req.Query),
			maxTokens: 1024,
		}, nil

	case ActionCurriculum:
		subject := req.Param("subject", req.Query)
		return task{
			system: "You are an expert curriculum designer. Create comprehensive, modern curriculum plans that balance theory and practice.",
			prompt: fmt.Sprintf(`Create a detailed curriculum plan for:
Subject: %s
Duration: %s
Study Type: %s (theory/practical/both)

Include:
1. Week-by-week or month-by-month breakdown
2. Learning objectives for each period
3. Practical exercises if applicable
4. Assessment methods
5. Current industry trends and emerging topics
6. Resources and materials needed`,
				subject, req.Param("duration", "3 months"), req.Param("study_type", "both")),
			maxTokens: 2000,
		}, nil

	case ActionGradeCode:
		return buildGradeTask(req)

	case ActionPractice:
		subject := req.Param("subject", "general knowledge")
		topicClause := ""
		if topic := req.Param("topic", ""); topic != "" {
			topicClause = fmt.Sprintf(" on %s", topic)
		}
		return task{
			system: defaultSystem,
			prompt: fmt.Sprintf("Generate one educational question for %s %s class%s. Make it thought-provoking but appropriate for the level.",
				grade, subject, topicClause),
			maxTokens: 200,
		}, nil

	case ActionCheckAnswer:
		return buildCheckAnswerTask(req)

	case ActionTeacherFeedback:
		challenges := req.Param("challenges", "None specified")
		return task{
			system: "You are an experienced educational consultant helping teachers improve their practice. Be supportive and practical.",
			prompt: fmt.Sprintf(`As an educational consultant, provide feedback on:

Teaching Method: %s
Curriculum Details: %s
Challenges Faced: %s

Provide:
1. Strengths of current approach
2. Areas for improvement
3. Specific suggestions and best practices
4. Resources or techniques to try
5. Ways to increase student engagement`,
				req.Param("teaching_method", req.Query), req.Param("curriculum_details", ""), challenges),
			maxTokens: 1500,
		}, nil

	case ActionStudyPlan:
		subjects := req.Param("subjects", req.Query)
		return task{
			system: "You are an expert study coach. Create realistic, effective study plans that balance all subjects.",
			prompt: fmt.Sprintf(`Create a detailed study plan for:
Subjects: %s
Exam Date: %s
Available Study Hours per Day: %s

Include:
1. Daily schedule with time allocation
2. Subject rotation strategy
3. Review sessions
4. Practice test schedule
5. Tips for effective studying
6. Break times and wellness reminders`,
				subjects, req.Param("exam_date", "not specified"), req.Param("study_hours_per_day", "4")),
			maxTokens: 2000,
		}, nil

	case ActionExplain:
		concept := req.Param("concept", req.Query)
		prompt := fmt.Sprintf("Explain '%s' for %s students in simple, clear terms.", concept, grade)
		if strings.EqualFold(req.Param("use_analogy", "true"), "true") {
			prompt += " Include a relatable analogy or real-world example."
		}
		return task{
			system: fmt.Sprintf("You are an expert at explaining complex concepts to %s students. Make it engaging and easy to understand.",
				grade),
			prompt:    prompt,
			maxTokens: 1024,
		}, nil

	default:
		return task{}, fmt.Errorf("%w: %q", ErrUnsupportedAction, req.Action)
	}
}
