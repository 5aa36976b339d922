package service

import (
	_ "embed"
	"fmt"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/util"
	"hiring_tool_backend/pkg/logger"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/practice.yaml
var defaultCatalog []byte

type practiceCatalog struct {
	Assessments []model.SkillAssessment        `yaml:"assessments"`
	Questions   map[string][]model.MCQQuestion `yaml:"questions"`
	Typing      []model.TypingLesson           `yaml:"typing"`
}

// PracticeService 只读的技能测评目录与题库
type PracticeService struct {
	assessments []model.SkillAssessment
	questions   map[string][]model.MCQQuestion
	lessons     []model.TypingLesson
}

func NewPracticeService() (*PracticeService, error) {
	return NewPracticeServiceFromYAML(defaultCatalog)
}

// NewPracticeServiceFromYAML 不合规的题目只告警，不拒绝加载
func NewPracticeServiceFromYAML(data []byte) (*PracticeService, error) {
	var c practiceCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse practice catalog: %w", err)
	}

	for topic, qs := range c.Questions {
		for i := range qs {
			if err := qs[i].Validate(); err != nil {
				logger.Log.Warn("Malformed question in catalog", zap.String("topic", topic), zap.Error(err))
			}
		}
	}
	if c.Questions == nil {
		c.Questions = make(map[string][]model.MCQQuestion)
	}

	return &PracticeService{
		assessments: c.Assessments,
		questions:   c.Questions,
		lessons:     c.Typing,
	}, nil
}

func (s *PracticeService) ListSkillAssessments() []model.SkillAssessment {
	return append([]model.SkillAssessment(nil), s.assessments...)
}

func (s *PracticeService) GetSkillAssessment(id string) (*model.SkillAssessment, error) {
	for _, a := range s.assessments {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, util.NotFoundError("Assessment not found")
}

// GetQuestions 主题精确匹配，未知主题返回空列表
func (s *PracticeService) GetQuestions(topic string) []model.MCQQuestion {
	qs := s.questions[topic]
	result := make([]model.MCQQuestion, len(qs))
	for i, q := range qs {
		result[i] = q.Clone()
	}
	return result
}

// GetQuestionViews 作答前展示用，不含正确答案
func (s *PracticeService) GetQuestionViews(topic string) []model.QuestionView {
	qs := s.questions[topic]
	views := make([]model.QuestionView, len(qs))
	for i := range qs {
		views[i] = qs[i].View()
	}
	return views
}

func (s *PracticeService) Topics() []string {
	topics := make([]string, 0, len(s.questions))
	for t := range s.questions {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}
