package service

import (
	"context"
	"encoding/json"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/repository"
	"hiring_tool_backend/internal/util"
	"hiring_tool_backend/pkg/logger"
	"hiring_tool_backend/pkg/monitoring"
	"hiring_tool_backend/pkg/tracing"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const persistTimeout = 5 * time.Second

type activeAssessment struct {
	assessment model.SkillAssessment
	session    *AssessmentSession
}

// AssessmentRunner 持有唯一的进行中测评，并在每次提交后落库
type AssessmentRunner struct {
	Practice *PracticeService
	Results  repository.ResultRepository
	Hub      *SessionHub
	Auth     *AuthService
	// NewCountdown 每个会话一个独立的倒计时
	NewCountdown func() Countdown

	mu     sync.Mutex
	active *activeAssessment
}

func NewAssessmentRunner(practice *PracticeService, results repository.ResultRepository, hub *SessionHub, auth *AuthService, tick time.Duration) *AssessmentRunner {
	r := &AssessmentRunner{
		Practice: practice,
		Results:  results,
		Hub:      hub,
		Auth:     auth,
		NewCountdown: func() Countdown {
			return NewTickerCountdown(tick)
		},
	}
	if hub != nil {
		hub.Snapshot = r.Snapshot
	}
	return r
}

// Start 开始指定测评，已有会话会被关闭
func (r *AssessmentRunner) Start(ctx context.Context, assessmentID string) (*model.SessionSnapshot, error) {
	_, span := tracing.StartSpan(ctx, "assessment.start", attribute.String("assessment.id", assessmentID))
	defer span.End()

	a, err := r.Practice.GetSkillAssessment(assessmentID)
	if err != nil {
		return nil, err
	}
	questions := r.Practice.GetQuestions(a.Topic)

	active := &activeAssessment{assessment: *a}
	opts := []SessionOption{
		WithSubmitObserver(func(event SubmitEvent) {
			r.recordResult(active.assessment, event)
		}),
	}
	if r.Hub != nil {
		opts = append(opts, WithTickObserver(r.Hub.BroadcastTick))
	}

	session, err := NewAssessmentSession(a.Topic, questions, a.PassingScore, a.Duration, r.NewCountdown(), opts...)
	if err != nil {
		logger.Log.Warn("Assessment has no questions", zap.String("assessmentID", a.ID), zap.String("topic", a.Topic))
		return nil, err
	}
	active.session = session

	r.mu.Lock()
	previous := r.active
	r.active = active
	r.mu.Unlock()

	if previous != nil {
		previous.session.Close()
	}

	monitoring.AssessmentsStarted.WithLabelValues(a.Topic).Inc()
	logger.Log.Info("Assessment started",
		zap.String("assessmentID", a.ID),
		zap.String("topic", a.Topic),
		zap.Int("questions", len(questions)),
		zap.Int("durationMinutes", a.Duration))

	snap := active.snapshot()
	r.broadcast(WSMessage{Type: MsgStarted, Data: snap})
	return &snap, nil
}

func (r *AssessmentRunner) current() (*activeAssessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return nil, util.ErrNoActiveSession
	}
	return r.active, nil
}

// Active 当前会话，没有时返回 nil
func (r *AssessmentRunner) Active() *AssessmentSession {
	a, err := r.current()
	if err != nil {
		return nil
	}
	return a.session
}

func (r *AssessmentRunner) Snapshot() (model.SessionSnapshot, bool) {
	a, err := r.current()
	if err != nil {
		return model.SessionSnapshot{}, false
	}
	return a.snapshot(), true
}

func (a *activeAssessment) snapshot() model.SessionSnapshot {
	snap := a.session.Snapshot()
	snap.AssessmentID = a.assessment.ID
	snap.Title = a.assessment.Title
	return snap
}

func (r *AssessmentRunner) Select(optionID string) (*model.SessionSnapshot, error) {
	a, err := r.current()
	if err != nil {
		return nil, err
	}
	if err := a.session.SelectAnswer(optionID); err != nil {
		return nil, err
	}
	snap := a.snapshot()
	return &snap, nil
}

func (r *AssessmentRunner) Next() (*model.SessionSnapshot, error) {
	a, err := r.current()
	if err != nil {
		return nil, err
	}
	a.session.Next()
	snap := a.snapshot()
	return &snap, nil
}

func (r *AssessmentRunner) Previous() (*model.SessionSnapshot, error) {
	a, err := r.current()
	if err != nil {
		return nil, err
	}
	a.session.Previous()
	snap := a.snapshot()
	return &snap, nil
}

// Submit 手动提交；已提交时返回同一结果
func (r *AssessmentRunner) Submit(ctx context.Context) (*model.SessionSnapshot, error) {
	_, span := tracing.StartSpan(ctx, "assessment.submit")
	defer span.End()

	a, err := r.current()
	if err != nil {
		return nil, err
	}
	result := a.session.Submit()
	span.SetAttributes(
		attribute.String("assessment.topic", result.Topic),
		attribute.Float64("assessment.score", result.Score),
		attribute.Bool("assessment.passed", result.Passed),
	)
	snap := a.snapshot()
	return &snap, nil
}

func (r *AssessmentRunner) Retake() (*model.SessionSnapshot, error) {
	a, err := r.current()
	if err != nil {
		return nil, err
	}
	if err := a.session.Retake(); err != nil {
		return nil, err
	}
	monitoring.AssessmentsStarted.WithLabelValues(a.assessment.Topic).Inc()
	logger.Log.Info("Assessment retake", zap.String("assessmentID", a.assessment.ID), zap.Int("attempt", a.session.Attempt()))

	snap := a.snapshot()
	r.broadcast(WSMessage{Type: MsgRetake, Data: snap})
	return &snap, nil
}

// Close 关闭当前会话，未提交的作答直接丢弃
func (r *AssessmentRunner) Close() error {
	r.mu.Lock()
	a := r.active
	r.active = nil
	r.mu.Unlock()

	if a == nil {
		return util.ErrNoActiveSession
	}
	a.session.Close()
	logger.Log.Info("Assessment closed", zap.String("assessmentID", a.assessment.ID))
	r.broadcast(WSMessage{Type: MsgClosed})
	return nil
}

// Shutdown 停止计时，服务退出时调用
func (r *AssessmentRunner) Shutdown() {
	r.mu.Lock()
	a := r.active
	r.active = nil
	r.mu.Unlock()
	if a != nil {
		a.session.Close()
	}
}

// recordResult 手动提交与超时提交都经过这里，每次提交只调用一次
func (r *AssessmentRunner) recordResult(a model.SkillAssessment, event SubmitEvent) {
	result, timedOut := event.Result, event.TimedOut
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	monitoring.RecordSubmission(result.Topic, result.Score, result.Passed, timedOut)
	logger.Log.Info("Assessment submitted",
		zap.String("assessmentID", a.ID),
		zap.Int("correct", result.CorrectAnswers),
		zap.Int("total", result.TotalQuestions),
		zap.Float64("score", result.Score),
		zap.Bool("passed", result.Passed),
		zap.Bool("timedOut", timedOut))

	if r.Hub != nil {
		r.Hub.BroadcastSubmitted(result, timedOut)
	}
	if r.Results == nil {
		return
	}

	answers, err := json.Marshal(result.Answers)
	if err != nil {
		logger.Log.Error("Failed to encode answers", zap.Error(err))
		return
	}

	attempt, err := r.Results.CountAttempts(ctx, a.ID)
	if err != nil {
		logger.Log.Warn("Failed to count attempts", zap.Error(err))
	}

	record := &model.AssessmentResultRecord{
		AssessmentID:    a.ID,
		Title:           a.Title,
		Topic:           result.Topic,
		Level:           a.Level,
		TotalQuestions:  result.TotalQuestions,
		CorrectAnswers:  result.CorrectAnswers,
		Score:           result.Score,
		PassingScore:    a.PassingScore,
		Passed:          result.Passed,
		TimedOut:        timedOut,
		Attempt:         attempt + 1,
		DurationSeconds: int(event.Elapsed.Seconds()),
		Answers:         datatypes.JSON(answers),
		CompletedAt:     time.Now(),
	}
	if r.Auth != nil {
		if user := r.Auth.GetCurrentUser(ctx); user != nil {
			record.UserID = user.ID
		}
	}

	if err := r.Results.Create(ctx, record); err != nil {
		logger.Log.Error("Failed to save assessment result", zap.Error(err), zap.String("assessmentID", a.ID))
	}
}

func (r *AssessmentRunner) broadcast(msg WSMessage) {
	if r.Hub != nil {
		r.Hub.Broadcast(msg)
	}
}
