package model

import (
	"time"

	"gorm.io/datatypes"
)

type AnswerRecord struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
}

// TestResult 一次提交的计分结果，生成后不可变
// swagger:model TestResult
type TestResult struct {
	Topic          string         `json:"topic"`
	TotalQuestions int            `json:"totalQuestions"`
	CorrectAnswers int            `json:"correctAnswers"`
	Score          float64        `json:"score"`
	Passed         bool           `json:"passed"`
	Answers        []AnswerRecord `json:"answers"`
}

// AssessmentResultRecord 已完成测评的历史记录
// swagger:model AssessmentResultRecord
type AssessmentResultRecord struct {
	UUIDBase
	AssessmentID    string         `gorm:"size:36;index" json:"assessmentId"`
	Title           string         `gorm:"size:255" json:"title"`
	Topic           string         `gorm:"size:100;index" json:"topic"`
	Level           string         `gorm:"size:20" json:"difficulty"`
	UserID          string         `gorm:"size:64;index" json:"userId"`
	TotalQuestions  int            `json:"totalQuestions"`
	CorrectAnswers  int            `json:"correctAnswers"`
	Score           float64        `json:"score"`
	PassingScore    int            `json:"passingScore"`
	Passed          bool           `json:"passed"`
	TimedOut        bool           `json:"timedOut"`
	Attempt         int            `json:"attempt"`
	DurationSeconds int            `json:"durationSeconds"`
	Answers         datatypes.JSON `gorm:"type:json" json:"answers"`
	CompletedAt     time.Time      `gorm:"index" json:"completedAt"`
}

func (AssessmentResultRecord) TableName() string {
	return "assessment_results"
}

// swagger:model ResultOverview
type ResultOverview struct {
	CompletedCount int     `json:"completedCount"`
	TotalAttempts  int     `json:"totalAttempts"`
	AverageScore   float64 `json:"averageScore"`
	PassRate       float64 `json:"passRate"`
	BestScore      float64 `json:"bestScore"`
}

// PerformanceAnalytics 在概览之上按主题拆分强弱项
type PerformanceAnalytics struct {
	ResultOverview
	// WeakAreas 平均分低于及格线的主题
	WeakAreas        []string `json:"weakAreas"`
	StrongAreas      []string `json:"strongAreas"`
	// TimeSpentHours 所有作答耗时之和，保留一位小数
	TimeSpentHours   float64  `json:"timeSpent"`
	ImprovementTrend string   `json:"improvementTrend"`
}

const (
	TrendUp     = "Up"
	TrendDown   = "Down"
	TrendStable = "Stable"
)
