package service

import (
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/util"
	"math"
	"time"
)

// 按 5 个字符折算一个单词
const charsPerWord = 5

func (s *PracticeService) ListTypingLessons() []model.TypingLesson {
	return append([]model.TypingLesson(nil), s.lessons...)
}

func (s *PracticeService) GetTypingLesson(id int) (*model.TypingLesson, error) {
	for _, l := range s.lessons {
		if l.ID == id {
			found := l
			return &found, nil
		}
	}
	return nil, util.NotFoundError("Typing lesson not found")
}

// ScoreTypingLesson 对照课程原文为一次输入打分
func (s *PracticeService) ScoreTypingLesson(id int, attempt model.TypingAttempt) (*model.TypingScore, error) {
	lesson, err := s.GetTypingLesson(id)
	if err != nil {
		return nil, err
	}
	if attempt.ElapsedMs < 0 {
		return nil, util.ValidationError("elapsedMs must not be negative")
	}
	score := ScoreTyping(lesson.Excerpt, attempt.Input, time.Duration(attempt.ElapsedMs)*time.Millisecond)
	score.LessonID = lesson.ID
	return &score, nil
}

// ScoreTyping 逐字符比对：准确率以原文长度为分母，超出原文的输入不计分；
// elapsed 为 0 时 WPM 为 0
func ScoreTyping(excerpt, input string, elapsed time.Duration) model.TypingScore {
	text := []rune(excerpt)
	typed := []rune(input)

	var score model.TypingScore
	if len(text) == 0 {
		return score
	}

	correct := 0
	for i := 0; i < len(typed) && i < len(text); i++ {
		if typed[i] == text[i] {
			correct++
		}
	}
	score.Accuracy = int(math.Round(float64(correct) / float64(len(text)) * 100))

	if len(typed) >= len(text) {
		score.Progress = 100
		score.Completed = true
	} else {
		score.Progress = int(math.Round(float64(len(typed)) / float64(len(text)) * 100))
	}

	if minutes := elapsed.Minutes(); minutes > 0 && len(typed) > 0 {
		score.WPM = int(math.Round(float64(len(typed)) / charsPerWord / minutes))
	}
	return score
}
