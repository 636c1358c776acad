package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/radha-ai/radha/internal/assistant"
	"github.com/radha-ai/radha/pkg/observability"
)

// routeOptions are fields every task route accepts alongside its own.
type routeOptions struct {
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
}

// run executes a task, records metrics and a span, and writes the error
// response on failure. The caller only renders the success payload.
func (s *Server) run(w http.ResponseWriter, r *http.Request, req assistant.TaskRequest) (assistant.TaskResult, bool) {
	ctx, span := observability.StartSpan(r.Context(), "assistant.task",
		trace.WithAttributes(attribute.String("task.action", string(req.Action))))
	defer span.End()

	start := time.Now()
	res, err := s.assistant.Do(ctx, req)

	model := res.ModelUsed
	if model == "" {
		model = "none"
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.RecordTask(string(req.Action), model, status, time.Since(start))

	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return assistant.TaskResult{}, false
	}
	return res, true
}

// handleTask is the generic endpoint: a raw TaskRequest in, a raw TaskResult
// out. The action-specific routes below are sugar over the same core.
func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		routeOptions
		Action string            `json:"action"`
		Query  string            `json:"query"`
		Params map[string]string `json:"params"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	action, err := assistant.ParseAction(body.Action)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, ok := s.run(w, r, assistant.TaskRequest{
		Action:         action,
		Query:          body.Query,
		SessionID:      body.SessionID,
		RequestedModel: body.Model,
		Params:         body.Params,
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"action":     res.Action,
		"text":       res.RawText,
		"structured": res.Structured,
		"model":      res.ModelUsed,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		routeOptions
		Message string `json:"message"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	res, ok := s.run(w, r, assistant.TaskRequest{
		Action:         assistant.ActionChat,
		Query:          body.Message,
		SessionID:      body.SessionID,
		RequestedModel: body.Model,
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"response":  res.RawText,
		"model":     res.ModelUsed,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		routeOptions
		Topic       string `json:"topic"`
		ContentType string `json:"content_type"`
		GradeLevel  string `json:"grade_level"`
		Count       int    `json:"count"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	var action assistant.Action
	switch body.ContentType {
	case "notes":
		action = assistant.ActionNotes
	case "quiz":
		action = assistant.ActionQuiz
	case "summary", "":
		action = assistant.ActionSummary
	default:
		s.writeError(w, assistant.ErrUnsupportedAction)
		return
	}

	params := map[string]string{
		"topic":       body.Topic,
		"grade_level": body.GradeLevel,
	}
	if body.Count > 0 {
		params["count"] = strconv.Itoa(body.Count)
	}

	res, ok := s.run(w, r, assistant.TaskRequest{
		Action:         action,
		Query:          body.Topic,
		SessionID:      body.SessionID,
		RequestedModel: body.Model,
		Params:         params,
	})
	if !ok {
		return
	}

	payload := map[string]any{
		"content": res.RawText,
		"metadata": map[string]any{
			"topic":       body.Topic,
			"type":        string(action),
			"grade_level": body.GradeLevel,
			"model":       res.ModelUsed,
		},
	}
	if qas, isQuiz := res.Structured.([]assistant.QA); isQuiz {
		payload["questions"] = qas
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleDoubt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		routeOptions
		Question   string `json:"question"`
		Subject    string `json:"subject"`
		GradeLevel string `json:"grade_level"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	res, ok := s.run(w, r, assistant.TaskRequest{
		Action:         assistant.ActionDoubt,
		Query:          body.Question,
		SessionID:      body.SessionID,
		RequestedModel: body.Model,
		Params: map[string]string{
			"subject":     body.Subject,
			"grade_level": body.GradeLevel,
		},
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"solution": res.RawText,
		"question": body.Question,
		"model":    res.ModelUsed,
	})
}

func (s *Server) handleCurriculum(w http.ResponseWriter, r *http.Request) {
	var body struct {
		routeOptions
		Subject   string `json:"subject"`
		Duration  string `json:"duration"`
		StudyType string `json:"study_type"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	res, ok := s.run(w, r, assistant.TaskRequest{
		Action:         assistant.ActionCurriculum,
		Query:          body.Subject,
		SessionID:      body.SessionID,
		RequestedModel: body.Model,
		Params: map[string]string{
			"subject":    body.Subject,
			"duration":   body.Duration,
			"study_type": body.StudyType,
		},
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"curriculum": res.RawText,
		"metadata": map[string]any{
			"subject":    body.Subject,
			"duration":   body.Duration,
			"study_type": body.StudyType,
			"model":      res.ModelUsed,
		},
	})
}

func (s *Server) handleGradeCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		routeOptions
		Code               string `json:"code"`
		Language           string `json:"language"`
		ProblemDescription string `json:"problem_description"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	res, ok := s.run(w, r, assistant.TaskRequest{
		Action:         assistant.ActionGradeCode,
		Query:          body.Code,
		SessionID:      body.SessionID,
		RequestedModel: body.Model,
		Params: map[string]string{
			"code":     body.Code,
			"language": body.Language,
			"problem":  body.ProblemDescription,
		},
	})
	if !ok {
		return
	}

	grade, _ := res.Structured.(*assistant.CodeGrade)
	if grade == nil {
		grade = &assistant.CodeGrade{Feedback: res.RawText}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"score":    grade.Score,
		"feedback": grade.Feedback,
		"passed":   grade.Passed,
		"model":    res.ModelUsed,
	})
}

func (s *Server) handlePractice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		routeOptions
		Subject    string `json:"subject"`
		GradeLevel string `json:"grade_level"`
		Topic      string `json:"topic"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	res, ok := s.run(w, r, assistant.TaskRequest{
		Action:         assistant.ActionPractice,
		SessionID:      body.SessionID,
		RequestedModel: body.Model,
		Params: map[string]string{
			"subject":     body.Subject,
			"grade_level": body.GradeLevel,
			"topic":       body.Topic,
		},
	})
	if !ok {
		return
	}

	qa, _ := res.Structured.(*assistant.PracticeQA)
	if qa == nil {
		qa = &assistant.PracticeQA{Question: res.RawText}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"question":    qa.Question,
		"answer":      qa.Answer,
		"subject":     qa.Subject,
		"grade_level": qa.GradeLevel,
		"model":       res.ModelUsed,
	})
}

func (s *Server) handleCheckAnswer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		routeOptions
		Question      string `json:"question"`
		StudentAnswer string `json:"student_answer"`
		CorrectAnswer string `json:"correct_answer"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	res, ok := s.run(w, r, assistant.TaskRequest{
		Action:         assistant.ActionCheckAnswer,
		Query:          body.StudentAnswer,
		SessionID:      body.SessionID,
		RequestedModel: body.Model,
		Params: map[string]string{
			"question":       body.Question,
			"student_answer": body.StudentAnswer,
			"correct_answer": body.CorrectAnswer,
		},
	})
	if !ok {
		return
	}

	check, _ := res.Structured.(*assistant.AnswerCheck)
	if check == nil {
		check = &assistant.AnswerCheck{Feedback: res.RawText}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"correct":  check.Correct,
		"feedback": check.Feedback,
		"reward":   check.Reward,
		"model":    res.ModelUsed,
	})
}

func (s *Server) handleTeacherFeedback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		routeOptions
		TeachingMethod    string `json:"teaching_method"`
		CurriculumDetails string `json:"curriculum_details"`
		Challenges        string `json:"challenges"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	res, ok := s.run(w, r, assistant.TaskRequest{
		Action:         assistant.ActionTeacherFeedback,
		Query:          body.TeachingMethod,
		SessionID:      body.SessionID,
		RequestedModel: body.Model,
		Params: map[string]string{
			"teaching_method":    body.TeachingMethod,
			"curriculum_details": body.CurriculumDetails,
			"challenges":         body.Challenges,
		},
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"feedback": res.RawText,
		"model":    res.ModelUsed,
	})
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var body struct {
		routeOptions
		Concept    string `json:"concept"`
		GradeLevel string `json:"grade_level"`
		UseAnalogy *bool  `json:"use_analogy"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	params := map[string]string{
		"concept":     body.Concept,
		"grade_level": body.GradeLevel,
	}
	if body.UseAnalogy != nil {
		params["use_analogy"] = strconv.FormatBool(*body.UseAnalogy)
	}

	res, ok := s.run(w, r, assistant.TaskRequest{
		Action:         assistant.ActionExplain,
		Query:          body.Concept,
		SessionID:      body.SessionID,
		RequestedModel: body.Model,
		Params:         params,
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"explanation": res.RawText,
		"concept":     body.Concept,
		"model":       res.ModelUsed,
	})
}

func (s *Server) handleStudyPlan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		routeOptions
		Subjects         []string `json:"subjects"`
		ExamDate         string   `json:"exam_date"`
		StudyHoursPerDay int      `json:"study_hours_per_day"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	res, ok := s.run(w, r, assistant.TaskRequest{
		Action:         assistant.ActionStudyPlan,
		SessionID:      body.SessionID,
		RequestedModel: body.Model,
		Params: map[string]string{
			"subjects":            strings.Join(body.Subjects, ", "),
			"exam_date":           body.ExamDate,
			"study_hours_per_day": strconv.Itoa(body.StudyHoursPerDay),
		},
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"study_plan": res.RawText,
		"metadata": map[string]any{
			"subjects":      body.Subjects,
			"exam_date":     body.ExamDate,
			"hours_per_day": body.StudyHoursPerDay,
			"model":         res.ModelUsed,
		},
	})
}

var modelDetails = map[string]string{
	"local":   "Qwen2.5-7B-Instruct INT4 (Local)",
	"groq":    "Llama 3.3 70B (Cloud API)",
	"bedrock": "Claude 3 Haiku (AWS Bedrock)",
}

func (s *Server) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	current := s.assistant.CurrentModel()
	if current == "" {
		current = "none"
	}
	details, ok := modelDetails[current]
	if !ok {
		details = "Unknown"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current_model": current,
		"model_details": details,
	})
}
