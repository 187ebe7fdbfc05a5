package common

import "fmt"

// TruncateName truncates a player name to the specified maximum length.
func TruncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen-1]) + "…"
	}
	return name
}

// SignedScore 带符号的得分，正数绿色，负数红色
func SignedScore(delta int) string {
	switch {
	case delta > 0:
		return GainStyle.Render(fmt.Sprintf("+%d", delta))
	case delta < 0:
		return LossStyle.Render(fmt.Sprintf("%d", delta))
	default:
		return "0"
	}
}
