package util

import "fmt"

// FormatRemainingTime 渲染为 M:SS，分钟不补零
func FormatRemainingTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
