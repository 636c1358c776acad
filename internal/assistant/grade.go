package assistant

import (
	"fmt"
	"regexp"
	"strconv"
)

// CodeGrade is the parsed result of a grade_code task.
type CodeGrade struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Passed   bool   `json:"passed"`
}

// passingScore is the threshold below which a submission fails.
const passingScore = 60

// gradableLanguages is the closed set grade_code accepts. Anything else is
// rejected before a backend call rather than silently reviewed.
var gradableLanguages = map[string]bool{
	"python":     true,
	"java":       true,
	"javascript": true,
	"cpp":        true,
	"c":          true,
}

var scoreRe = regexp.MustCompile(`(?i)(?:total\s+score|score|grade):\s*\**\s*(\d+)\s*/\s*100`)

func buildGradeTask(req TaskRequest) (task, error) {
	lang := req.Param("language", "python")
	if !gradableLanguages[lang] {
		return task{}, fmt.Errorf("%w: %q (supported: python, java, javascript, cpp, c)", ErrUnsupportedLanguage, lang)
	}

	code := req.Param("code", req.Query)
	problem := req.Param("problem", "General code review")

	return task{
		system: "You are an expert code reviewer and educator. Be encouraging while providing constructive feedback.",
		prompt: fmt.Sprintf(`Grade this %s code submission:

Problem: %s

Code:
`+"```%s\n%s\n```"+`

Evaluate based on:
1. Correctness (40 points) - Does it solve the problem? Consider partial credit
2. Readability (20 points) - Clear variable names, comments, structure
3. Efficiency (20 points) - Time/space complexity
4. Code Quality (20 points) - Best practices, error handling

Provide:
- Total score out of 100 after adding scores for each criterion
- Detailed feedback for each criterion
- Suggestions for improvement
- Recognition of alternative approaches`,
			lang, problem, lang, code),
		maxTokens: 1500,
		post: func(raw string) (string, any) {
			return raw, parseGrade(raw)
		},
	}, nil
}

// parseGrade extracts the numeric score from free-form review text. A review
// without a recognizable score line grades as 0 rather than failing the task.
func parseGrade(raw string) *CodeGrade {
	score := 0
	if m := scoreRe.FindStringSubmatch(raw); m != nil {
		score, _ = strconv.Atoi(m[1])
	}
	return &CodeGrade{
		Score:    score,
		Feedback: raw,
		Passed:   score >= passingScore,
	}
}
