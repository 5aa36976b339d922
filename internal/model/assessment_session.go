package model

type SessionState string

const (
	SessionInProgress SessionState = "in_progress"
	SessionSubmitted  SessionState = "submitted"
)

// SessionSnapshot 当前测评会话的只读快照
// swagger:model SessionSnapshot
type SessionSnapshot struct {
	AssessmentID       string        `json:"assessmentId"`
	Title              string        `json:"title"`
	Topic              string        `json:"topic"`
	State              SessionState  `json:"state"`
	Attempt            int           `json:"attempt"`
	CurrentIndex       int           `json:"currentIndex"`
	TotalQuestions     int           `json:"totalQuestions"`
	ProgressPercentage float64       `json:"progressPercentage"`
	RemainingSeconds   int           `json:"remainingSeconds"`
	RemainingTime      string        `json:"remainingTime"`
	PassingScore       int           `json:"passingScore"`
	Question           QuestionView  `json:"question"`
	SelectedOptionID   string        `json:"selectedOptionId,omitempty"`
	AnsweredCount      int           `json:"answeredCount"`
	Result             *TestResult   `json:"result,omitempty"`
	TimedOut           bool          `json:"timedOut"`
	Review             []ReviewEntry `json:"review,omitempty"`
}

// ReviewEntry 提交后的逐题回顾，此时才暴露正确答案
type ReviewEntry struct {
	QuestionID       string `json:"questionId"`
	Question         string `json:"question"`
	SelectedOptionID string `json:"selectedOptionId,omitempty"`
	CorrectOptionID  string `json:"correctOptionId,omitempty"`
	Correct          bool   `json:"correct"`
	Explanation      string `json:"explanation"`
}
