package service

import (
	"bytes"
	"context"
	"fmt"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/repository"
	"hiring_tool_backend/internal/util"
	"math"
	"sort"

	"github.com/jung-kurt/gofpdf"
)

const (
	// 最近一次与此前平均分的差超过该值才算上升或下降
	trendThreshold     = 5.0
	defaultRecommended = 3
)

type ResultService struct {
	Results  repository.ResultRepository
	Practice *PracticeService
	Auth     *AuthService
}

func NewResultService(results repository.ResultRepository, practice *PracticeService, auth *AuthService) *ResultService {
	return &ResultService{Results: results, Practice: practice, Auth: auth}
}

func (s *ResultService) List(ctx context.Context, assessmentID string) ([]model.AssessmentResultRecord, error) {
	return s.Results.List(ctx, assessmentID)
}

func (s *ResultService) Get(ctx context.Context, id string) (*model.AssessmentResultRecord, error) {
	return s.Results.FindByID(ctx, id)
}

// Overview 汇总全部历史，completedCount 按不同测评计数
func (s *ResultService) Overview(ctx context.Context) (*model.ResultOverview, error) {
	records, err := s.Results.List(ctx, "")
	if err != nil {
		return nil, err
	}
	overview := summarize(records)
	return &overview, nil
}

func summarize(records []model.AssessmentResultRecord) model.ResultOverview {
	var overview model.ResultOverview
	if len(records) == 0 {
		return overview
	}

	completed := make(map[string]bool)
	var total float64
	passed := 0
	for _, r := range records {
		completed[r.AssessmentID] = true
		total += r.Score
		if r.Passed {
			passed++
		}
		if r.Score > overview.BestScore {
			overview.BestScore = r.Score
		}
	}

	overview.CompletedCount = len(completed)
	overview.TotalAttempts = len(records)
	overview.AverageScore = total / float64(len(records))
	overview.PassRate = float64(passed) / float64(len(records)) * 100
	return overview
}

type topicStats struct {
	score   float64
	passing float64
	count   int
}

// Analytics 概览加上按主题的强弱项、累计耗时和最近一次的走势
func (s *ResultService) Analytics(ctx context.Context) (*model.PerformanceAnalytics, error) {
	records, err := s.Results.List(ctx, "")
	if err != nil {
		return nil, err
	}

	analytics := &model.PerformanceAnalytics{
		ResultOverview:   summarize(records),
		WeakAreas:        []string{},
		StrongAreas:      []string{},
		ImprovementTrend: model.TrendStable,
	}
	if len(records) == 0 {
		return analytics, nil
	}

	stats := make(map[string]*topicStats)
	seconds := 0
	for _, r := range records {
		seconds += r.DurationSeconds
		st, ok := stats[r.Topic]
		if !ok {
			st = &topicStats{}
			stats[r.Topic] = st
		}
		st.score += r.Score
		st.passing += float64(r.PassingScore)
		st.count++
	}
	analytics.TimeSpentHours = math.Round(float64(seconds)/3600*10) / 10

	for topic, st := range stats {
		if topic == "" {
			continue
		}
		if st.score/float64(st.count) < st.passing/float64(st.count) {
			analytics.WeakAreas = append(analytics.WeakAreas, topic)
		} else {
			analytics.StrongAreas = append(analytics.StrongAreas, topic)
		}
	}
	sort.Strings(analytics.WeakAreas)
	sort.Strings(analytics.StrongAreas)

	analytics.ImprovementTrend = trend(records)
	return analytics, nil
}

// trend records 按完成时间倒序；最近一次对比此前所有作答的平均分
func trend(records []model.AssessmentResultRecord) string {
	if len(records) < 2 {
		return model.TrendStable
	}
	var earlier float64
	for _, r := range records[1:] {
		earlier += r.Score
	}
	diff := records[0].Score - earlier/float64(len(records)-1)
	switch {
	case diff > trendThreshold:
		return model.TrendUp
	case diff < -trendThreshold:
		return model.TrendDown
	}
	return model.TrendStable
}

// Recommendations 先推荐弱项主题中尚未通过的测评，再补充从未做过的测评
func (s *ResultService) Recommendations(ctx context.Context, limit int) ([]model.SkillAssessment, error) {
	if limit <= 0 {
		limit = defaultRecommended
	}
	recommended := []model.SkillAssessment{}
	if s.Practice == nil {
		return recommended, nil
	}

	analytics, err := s.Analytics(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.Results.List(ctx, "")
	if err != nil {
		return nil, err
	}

	attempted := make(map[string]bool)
	passed := make(map[string]bool)
	for _, r := range records {
		attempted[r.AssessmentID] = true
		if r.Passed {
			passed[r.AssessmentID] = true
		}
	}
	weak := make(map[string]bool)
	for _, t := range analytics.WeakAreas {
		weak[t] = true
	}

	catalog := s.Practice.ListSkillAssessments()
	picked := make(map[string]bool)
	pick := func(keep func(model.SkillAssessment) bool) {
		for _, a := range catalog {
			if len(recommended) >= limit {
				return
			}
			if !picked[a.ID] && keep(a) {
				picked[a.ID] = true
				recommended = append(recommended, a)
			}
		}
	}
	pick(func(a model.SkillAssessment) bool { return weak[a.Topic] && !passed[a.ID] })
	pick(func(a model.SkillAssessment) bool { return !attempted[a.ID] })
	return recommended, nil
}

// Certificate 为通过的测评生成 A4 横版 PDF 证书
func (s *ResultService) Certificate(ctx context.Context, id string) ([]byte, error) {
	record, err := s.Results.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.Passed {
		return nil, util.ValidationError("Certificate is only available for passed results")
	}

	name := "Candidate"
	if s.Auth != nil {
		if user := s.Auth.GetCurrentUser(ctx); user != nil && user.Name != "" {
			name = user.Name
		}
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(false)
	// 核心字体只支持 cp1252，UTF-8 文本需要先转码
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Certificate of Achievement", false)
	pdf.AddPage()

	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, 277, 190, "D")

	pdf.SetFont("Arial", "B", 28)
	pdf.Ln(30)
	pdf.CellFormat(0, 14, "Certificate of Achievement", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 14)
	pdf.Ln(8)
	pdf.CellFormat(0, 10, "This certifies that", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(0, 14, tr(name), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 14)
	pdf.CellFormat(0, 10, "has successfully passed the assessment", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, tr(record.Title), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.Ln(6)
	summary := fmt.Sprintf("Score: %.0f%% (%d of %d correct, passing score %d%%)",
		record.Score, record.CorrectAnswers, record.TotalQuestions, record.PassingScore)
	pdf.CellFormat(0, 8, summary, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, "Completed on "+record.CompletedAt.Format(util.DateFormat), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "I", 9)
	pdf.SetY(185)
	pdf.CellFormat(0, 6, "Certificate ID: "+record.ID, "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
