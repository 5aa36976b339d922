package model

import "fmt"

type MCQOption struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
}

// MCQQuestion 单选题，约定每题恰有一个正确选项
type MCQQuestion struct {
	ID          string      `json:"id" yaml:"id"`
	Topic       string      `json:"topic" yaml:"topic"`
	Question    string      `json:"question" yaml:"question"`
	Options     []MCQOption `json:"options" yaml:"options"`
	Explanation string      `json:"explanation" yaml:"explanation"`
	Difficulty  string      `json:"difficulty" yaml:"difficulty"`
}

// CorrectOptionID 返回第一个标记为正确的选项，没有则 ok=false
func (q *MCQQuestion) CorrectOptionID() (string, bool) {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.ID, true
		}
	}
	return "", false
}

func (q *MCQQuestion) HasOption(optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// Validate 检查题目数据完整性；不合规的题目仍可作答，但计分时可能永远判错
func (q *MCQQuestion) Validate() error {
	if len(q.Options) == 0 {
		return fmt.Errorf("question %s has no options", q.ID)
	}
	correct := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("question %s has %d correct options", q.ID, correct)
	}
	return nil
}

func (q MCQQuestion) Clone() MCQQuestion {
	c := q
	c.Options = append([]MCQOption(nil), q.Options...)
	return c
}

// View 作答期间的题目视图，不包含正确答案
func (q *MCQQuestion) View() QuestionView {
	opts := make([]OptionView, len(q.Options))
	for i, o := range q.Options {
		opts[i] = OptionView{ID: o.ID, Text: o.Text}
	}
	return QuestionView{
		ID:         q.ID,
		Topic:      q.Topic,
		Question:   q.Question,
		Options:    opts,
		Difficulty: q.Difficulty,
	}
}

type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// swagger:model QuestionView
type QuestionView struct {
	ID         string       `json:"id"`
	Topic      string       `json:"topic"`
	Question   string       `json:"question"`
	Options    []OptionView `json:"options"`
	Difficulty string       `json:"difficulty"`
}

// SkillAssessment 技能测评目录项
// swagger:model SkillAssessment
type SkillAssessment struct {
	ID           string `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	Description  string `json:"description" yaml:"description"`
	Topic        string `json:"topic" yaml:"topic"`
	Questions    int    `json:"questions" yaml:"questions"`
	Duration     int    `json:"duration" yaml:"duration"` // Minutes
	Level        string `json:"level" yaml:"level"`
	PassingScore int    `json:"passingScore" yaml:"passingScore"`
}
