package model

// Todo 每日待办，Date 为 yyyy-mm-dd
// swagger:model Todo
type Todo struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// swagger:model StreakStatus
type StreakStatus struct {
	Streak             int     `json:"streak"`
	Target             int     `json:"target"`
	ProgressPercentage float64 `json:"progressPercentage"`
	CompletedToday     bool    `json:"completedToday"`
}
