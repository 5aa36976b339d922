package model

// TypingLesson 打字练习课程
type TypingLesson struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Difficulty  string `json:"difficulty" yaml:"difficulty"`
	Duration    int    `json:"duration" yaml:"duration"` // Minutes
	Excerpt     string `json:"excerpt" yaml:"excerpt"`
}

type TypingAttempt struct {
	Input     string `json:"input"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// TypingScore Accuracy 与 Progress 为 0-100 的整数百分比
type TypingScore struct {
	LessonID  int  `json:"lessonId"`
	Accuracy  int  `json:"accuracy"`
	WPM       int  `json:"wpm"`
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
}
