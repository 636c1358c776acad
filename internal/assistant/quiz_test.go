package assistant

import "testing"

func TestParseQuizAnswerKey(t *testing.T) {
	raw := `Here is your quiz!

1. What gas do plants absorb during photosynthesis?
   a) Oxygen
   b) Carbon dioxide
2. Question 2: where does photosynthesis take place?
3. Name the green pigment in leaves.

**Answers**
1. b) Carbon dioxide
2. In the chloroplasts
3. Chlorophyll`

	qas := ParseQuiz(raw)
	if len(qas) != 3 {
		t.Fatalf("expected 3 pairs, got %d: %+v", len(qas), qas)
	}
	if qas[0].Answer != "b) Carbon dioxide" {
		t.Errorf("unexpected first answer %q", qas[0].Answer)
	}
	if qas[2].Question != "Name the green pigment in leaves." {
		t.Errorf("unexpected third question %q", qas[2].Question)
	}
}

func TestParseQuizInlineAnswers(t *testing.T) {
	raw := `Q1. What is 7 x 8?
Answer: 56

Q2) Which planet is closest to the sun?
Answer: Mercury`

	qas := ParseQuiz(raw)
	if len(qas) != 2 {
		t.Fatalf("expected 2 pairs, got %d: %+v", len(qas), qas)
	}
	if qas[0].Question != "What is 7 x 8?" || qas[0].Answer != "56" {
		t.Errorf("unexpected first pair %+v", qas[0])
	}
	if qas[1].Answer != "Mercury" {
		t.Errorf("unexpected second answer %q", qas[1].Answer)
	}
}

func TestParseQuizOptionsFoldIntoQuestion(t *testing.T) {
	raw := `1. Pick the prime number.
a) 4
b) 7
Answer: b) 7`

	qas := ParseQuiz(raw)
	if len(qas) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(qas))
	}
	want := "Pick the prime number.\na) 4\nb) 7"
	if qas[0].Question != want {
		t.Errorf("options not folded: %q", qas[0].Question)
	}
}

func TestParseQuizMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain prose", "Photosynthesis converts light into chemical energy."},
		{"questions without answers", "1. What is gravity?\n2. What is mass?"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if qas := ParseQuiz(tt.raw); qas != nil {
				t.Errorf("expected degraded nil, got %+v", qas)
			}
		})
	}
}

func TestParseQuizMismatchedKey(t *testing.T) {
	raw := `1. First question?
2. Second question?

Answers:
1. Only the first is answered`

	qas := ParseQuiz(raw)
	if len(qas) != 1 {
		t.Fatalf("expected the single answered pair, got %d", len(qas))
	}
	if qas[0].Question != "First question?" {
		t.Errorf("paired the wrong question: %q", qas[0].Question)
	}
}
