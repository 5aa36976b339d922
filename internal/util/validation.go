package util

import (
	"regexp"
	"strings"
	"time"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail 校验 local@domain.tld 形式
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// CheckPasswordStrength 返回第一条未满足的规则，全部满足返回空串
func CheckPasswordStrength(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters long"
	}
	// bcrypt 只接受 72 字节以内的输入
	if len(password) > MaxPasswordBytes {
		return PasswordTooLongMessage
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}

	if !lower {
		return "Password must contain lowercase letters"
	}
	if !upper {
		return "Password must contain uppercase letters"
	}
	if !digit {
		return "Password must contain numbers"
	}
	return ""
}

// ParseDateKey 解析 yyyy-mm-dd 日期键
func ParseDateKey(key string) (time.Time, error) {
	return time.Parse(DateFormat, strings.TrimSpace(key))
}

func DateKey(t time.Time) string {
	return t.Format(DateFormat)
}
