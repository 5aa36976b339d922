package service

import (
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/util"
	"sync"
	"time"
)

// SubmitEvent 一次提交的上下文，TimedOut 表示由倒计时触发
type SubmitEvent struct {
	Result   *model.TestResult
	TimedOut bool
	Attempt  int
	Elapsed  time.Duration
}

type SubmitObserver func(event SubmitEvent)

type TickObserver func(remaining int)

// AssessmentSession 单次测评的状态机；计时器回调在其他 goroutine 执行，所有变更由 mu 串行化
type AssessmentSession struct {
	topic           string
	questions       []model.MCQQuestion
	passingScore    int
	durationMinutes int
	countdown       Countdown

	mu         sync.Mutex
	generation int
	attempt    int
	state      model.SessionState
	index      int
	answers    map[string]string
	remaining  int
	result     *model.TestResult
	timedOut   bool
	startedAt  time.Time
	finishedAt time.Time
	closed     bool

	onSubmit []SubmitObserver
	onTick   []TickObserver
}

// SessionOption 在倒计时启动前注册观察者
type SessionOption func(*AssessmentSession)

func WithSubmitObserver(fn SubmitObserver) SessionOption {
	return func(s *AssessmentSession) { s.onSubmit = append(s.onSubmit, fn) }
}

func WithTickObserver(fn TickObserver) SessionOption {
	return func(s *AssessmentSession) { s.onTick = append(s.onTick, fn) }
}

// NewAssessmentSession 开始一次测评并启动倒计时，题目为空时返回 EmptyQuestionSet
func NewAssessmentSession(topic string, questions []model.MCQQuestion, passingScore, durationMinutes int, countdown Countdown, opts ...SessionOption) (*AssessmentSession, error) {
	if len(questions) == 0 {
		return nil, util.ErrEmptyQuestions
	}
	if countdown == nil {
		countdown = NewTickerCountdown(time.Second)
	}

	qs := make([]model.MCQQuestion, len(questions))
	for i, q := range questions {
		qs[i] = q.Clone()
	}

	s := &AssessmentSession{
		topic:           topic,
		questions:       qs,
		passingScore:    passingScore,
		durationMinutes: durationMinutes,
		countdown:       countdown,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	gen := s.reset()
	s.mu.Unlock()

	s.startCountdown(gen)
	return s, nil
}

// reset 需持有 mu
func (s *AssessmentSession) reset() int {
	s.generation++
	s.attempt++
	s.state = model.SessionInProgress
	s.index = 0
	s.answers = make(map[string]string)
	s.remaining = s.totalSeconds()
	s.result = nil
	s.timedOut = false
	s.startedAt = time.Now()
	s.finishedAt = time.Time{}
	return s.generation
}

func (s *AssessmentSession) totalSeconds() int {
	if s.durationMinutes <= 0 {
		return 0
	}
	return s.durationMinutes * 60
}

func (s *AssessmentSession) startCountdown(gen int) {
	s.countdown.Start(s.totalSeconds(),
		func(remaining int) { s.tick(gen, remaining) },
		func() { s.submit(gen, true) },
	)
}

func (s *AssessmentSession) tick(gen, remaining int) {
	s.mu.Lock()
	if gen != s.generation || s.state != model.SessionInProgress {
		s.mu.Unlock()
		return
	}
	// 剩余时间只减不增
	if remaining < s.remaining {
		s.remaining = remaining
	}
	current := s.remaining
	observers := append([]TickObserver(nil), s.onTick...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(current)
	}
}

// OnSubmit 注册提交观察者，手动提交与超时提交都会通知
func (s *AssessmentSession) OnSubmit(fn SubmitObserver) {
	s.mu.Lock()
	s.onSubmit = append(s.onSubmit, fn)
	s.mu.Unlock()
}

func (s *AssessmentSession) OnTick(fn TickObserver) {
	s.mu.Lock()
	s.onTick = append(s.onTick, fn)
	s.mu.Unlock()
}

// SelectAnswer 记录或覆盖当前题目的答案，不移动位置
func (s *AssessmentSession) SelectAnswer(optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != model.SessionInProgress {
		return util.ValidationError("Test has already been submitted")
	}
	if optionID == "" {
		return util.ValidationError("Option is required")
	}
	s.answers[s.questions[s.index].ID] = optionID
	return nil
}

func (s *AssessmentSession) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < len(s.questions)-1 {
		s.index++
	}
	return s.index
}

func (s *AssessmentSession) Previous() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index > 0 {
		s.index--
	}
	return s.index
}

func (s *AssessmentSession) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// CurrentQuestion 不含 isCorrect 的题目视图
func (s *AssessmentSession) CurrentQuestion() model.QuestionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions[s.index].View()
}

func (s *AssessmentSession) TotalQuestions() int {
	return len(s.questions)
}

// ProgressPercentage 按"第 N 题 / 共 M 题"计算
func (s *AssessmentSession) ProgressPercentage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress()
}

func (s *AssessmentSession) progress() float64 {
	return float64(s.index+1) / float64(len(s.questions)) * 100
}

func (s *AssessmentSession) RemainingSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *AssessmentSession) State() model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result 未提交时返回 nil
func (s *AssessmentSession) Result() *model.TestResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *AssessmentSession) TimedOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timedOut
}

func (s *AssessmentSession) SelectedAnswer(questionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.answers[questionID]
	return id, ok
}

func (s *AssessmentSession) Attempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}

// Elapsed 本次作答用时，提交后固定
func (s *AssessmentSession) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finishedAt.IsZero() {
		return time.Since(s.startedAt)
	}
	return s.finishedAt.Sub(s.startedAt)
}

func (s *AssessmentSession) Submit() *model.TestResult {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()
	return s.submit(gen, false)
}

// submit 幂等；旧一轮作答的迟到超时会因 generation 不匹配被忽略
func (s *AssessmentSession) submit(gen int, timedOut bool) *model.TestResult {
	s.mu.Lock()
	if gen != s.generation || s.state == model.SessionSubmitted {
		result := s.result
		s.mu.Unlock()
		return result
	}

	result := s.score()
	s.result = result
	s.state = model.SessionSubmitted
	s.timedOut = timedOut
	s.finishedAt = time.Now()
	if timedOut {
		s.remaining = 0
	}
	event := SubmitEvent{
		Result:   result,
		TimedOut: timedOut,
		Attempt:  s.attempt,
		Elapsed:  s.finishedAt.Sub(s.startedAt),
	}
	observers := append([]SubmitObserver(nil), s.onSubmit...)
	s.mu.Unlock()

	// 超时提交来自倒计时自身的回调，此时计时已结束
	if !timedOut {
		s.countdown.Cancel()
	}

	for _, fn := range observers {
		fn(event)
	}
	return result
}

// score 需持有 mu；以第一个标记为正确的选项为准
func (s *AssessmentSession) score() *model.TestResult {
	correct := 0
	answers := make([]model.AnswerRecord, 0, len(s.answers))
	for i := range s.questions {
		q := &s.questions[i]
		selected, ok := s.answers[q.ID]
		if !ok {
			continue
		}
		if correctID, has := q.CorrectOptionID(); has && correctID == selected {
			correct++
		}
		answers = append(answers, model.AnswerRecord{
			QuestionID:       q.ID,
			SelectedOptionID: selected,
		})
	}

	total := len(s.questions)
	score := float64(correct) / float64(total) * 100
	return &model.TestResult{
		Topic:          s.topic,
		TotalQuestions: total,
		CorrectAnswers: correct,
		Score:          score,
		Passed:         score >= float64(s.passingScore),
		Answers:        answers,
	}
}

// Retake 仅在已提交后可用：先取消计时，再重置状态并重新计时
func (s *AssessmentSession) Retake() error {
	s.mu.Lock()
	if s.state != model.SessionSubmitted {
		s.mu.Unlock()
		return util.ValidationError("Test has not been submitted")
	}
	s.mu.Unlock()

	s.countdown.Cancel()

	s.mu.Lock()
	if s.state != model.SessionSubmitted {
		s.mu.Unlock()
		return util.ValidationError("Test has not been submitted")
	}
	gen := s.reset()
	s.closed = false
	s.mu.Unlock()

	s.startCountdown(gen)
	return nil
}

// Close 关闭对话框，停止计时；未提交的作答不会计分
func (s *AssessmentSession) Close() {
	s.countdown.Cancel()
	s.mu.Lock()
	s.closed = true
	// 使仍在途的回调失效
	s.generation++
	s.mu.Unlock()
}

func (s *AssessmentSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Review 提交后的逐题回顾，未提交返回 nil
func (s *AssessmentSession) Review() []model.ReviewEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != model.SessionSubmitted {
		return nil
	}
	return s.review()
}

func (s *AssessmentSession) review() []model.ReviewEntry {
	entries := make([]model.ReviewEntry, len(s.questions))
	for i := range s.questions {
		q := &s.questions[i]
		selected := s.answers[q.ID]
		correctID, _ := q.CorrectOptionID()
		entries[i] = model.ReviewEntry{
			QuestionID:       q.ID,
			Question:         q.Question,
			SelectedOptionID: selected,
			CorrectOptionID:  correctID,
			Correct:          selected != "" && selected == correctID,
			Explanation:      q.Explanation,
		}
	}
	return entries
}

// Snapshot 一次性读取会话状态，避免多次加锁之间状态变化
func (s *AssessmentSession) Snapshot() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := &s.questions[s.index]
	snap := model.SessionSnapshot{
		Topic:              s.topic,
		State:              s.state,
		Attempt:            s.attempt,
		CurrentIndex:       s.index,
		TotalQuestions:     len(s.questions),
		ProgressPercentage: s.progress(),
		RemainingSeconds:   s.remaining,
		RemainingTime:      util.FormatRemainingTime(s.remaining),
		PassingScore:       s.passingScore,
		Question:           q.View(),
		SelectedOptionID:   s.answers[q.ID],
		AnsweredCount:      len(s.answers),
		Result:             s.result,
		TimedOut:           s.timedOut,
	}
	if s.state == model.SessionSubmitted {
		snap.Review = s.review()
	}
	return snap
}
