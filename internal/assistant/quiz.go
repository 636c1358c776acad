package assistant

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// QA is one quiz item.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var (
	numberedItemRe = regexp.MustCompile(`(?i)^\s*\**(?:q(?:uestion)?\s*)?(\d+)[.):]\s*(.*)`)
	answerBlockRe  = regexp.MustCompile(`(?i)^\s*\**answer(?:s|\s*key)?\**\s*:?\s*$|^\s*\**answers\**\s*:`)
	inlineAnswerRe = regexp.MustCompile(`(?i)^\s*\**answer\**\s*[:\-]\s*(.*)`)
)

// ParseQuiz segments generated quiz text into ordered question/answer pairs.
// It is deliberately tolerant: quizzes arrive either with inline "Answer:"
// lines or with a trailing answer-key section, numbered in several styles.
// Anything it cannot segment yields nil so the caller keeps the raw text.
func ParseQuiz(raw string) []QA {
	lines := strings.Split(raw, "\n")

	// A trailing answer section splits the text in two; otherwise answers
	// are expected inline under each question.
	for i, line := range lines {
		if answerBlockRe.MatchString(line) {
			return pairByNumber(collectNumbered(lines[:i]), collectNumbered(lines[i+1:]))
		}
	}
	return pairInline(lines)
}

// collectNumbered gathers "1. text" style items, folding continuation lines
// (answer options and the like) into the current item.
func collectNumbered(lines []string) map[int]string {
	items := make(map[int]string)
	current := 0
	for _, line := range lines {
		if m := numberedItemRe.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			current = n
			items[n] = strings.TrimSpace(m[2])
			continue
		}
		text := strings.TrimSpace(line)
		if current != 0 && text != "" {
			items[current] += "\n" + text
		}
	}
	return items
}

func pairByNumber(questions, answers map[int]string) []QA {
	nums := make([]int, 0, len(questions))
	for n := range questions {
		if _, ok := answers[n]; ok {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)

	var qas []QA
	for _, n := range nums {
		q := strings.TrimSpace(questions[n])
		a := strings.TrimSpace(answers[n])
		if q != "" && a != "" {
			qas = append(qas, QA{Question: q, Answer: a})
		}
	}
	return qas
}

func pairInline(lines []string) []QA {
	var qas []QA
	var question strings.Builder
	inQuestion := false

	flushWith := func(answer string) {
		q := strings.TrimSpace(question.String())
		if q != "" && answer != "" {
			qas = append(qas, QA{Question: q, Answer: answer})
		}
		question.Reset()
		inQuestion = false
	}

	for _, line := range lines {
		if m := inlineAnswerRe.FindStringSubmatch(line); m != nil {
			flushWith(strings.TrimSpace(m[1]))
			continue
		}
		if m := numberedItemRe.FindStringSubmatch(line); m != nil {
			question.Reset()
			question.WriteString(strings.TrimSpace(m[2]))
			inQuestion = true
			continue
		}
		if text := strings.TrimSpace(line); inQuestion && text != "" {
			question.WriteString("\n")
			question.WriteString(text)
		}
	}
	return qas
}
