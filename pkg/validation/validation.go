// Package validation holds format checks and display helpers shared by the
// serializer and service layers.
package validation

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

const (
	PasswordMinLength = 6
	PasswordMaxLength = 32
)

var (
	phonePattern    = regexp.MustCompile(`^1[3-9]\d{9}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

	lowerPattern   = regexp.MustCompile(`[a-z]`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// IsPhone reports whether phone is an 11 digit mobile number starting with 1[3-9].
func IsPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

func IsEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

func IsUsername(username string) bool {
	return usernamePattern.MatchString(strings.TrimSpace(username))
}

// PasswordStrength is the result of CheckPassword.
type PasswordStrength struct {
	Valid       bool     `json:"is_valid"`
	Score       int      `json:"score"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// CheckPassword scores a password from 1 to 5. A score of 3 or more is valid.
func CheckPassword(password string) PasswordStrength {
	res := PasswordStrength{Suggestions: []string{}}
	if password == "" {
		res.Message = "password is required"
		return res
	}
	if len(password) < PasswordMinLength {
		res.Message = "password is too short"
		res.Suggestions = append(res.Suggestions, fmt.Sprintf("use at least %d characters", PasswordMinLength))
		return res
	}
	if len(password) > PasswordMaxLength {
		res.Message = "password is too long"
		res.Suggestions = append(res.Suggestions, fmt.Sprintf("use at most %d characters", PasswordMaxLength))
		return res
	}

	score := 1
	checks := []struct {
		re         *regexp.Regexp
		suggestion string
	}{
		{lowerPattern, "add lowercase letters"},
		{upperPattern, "add uppercase letters"},
		{digitPattern, "add digits"},
		{specialPattern, "add special characters"},
	}
	for _, c := range checks {
		if c.re.MatchString(password) {
			score++
		} else {
			res.Suggestions = append(res.Suggestions, c.suggestion)
		}
	}

	res.Score = score
	res.Valid = score >= 3
	if res.Valid {
		res.Message = "password strength is good"
	} else {
		res.Message = "password is too weak"
	}
	return res
}

// MaskPhone hides the middle four digits: 13800138000 -> 138****8000.
func MaskPhone(phone string) string {
	if len(phone) != 11 {
		return phone
	}
	return phone[:3] + "****" + phone[7:]
}

// MaskEmail keeps the first and last character of the local part.
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at < 0 {
		return email
	}
	local, domain := email[:at], email[at+1:]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + "@" + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + "@" + domain
}

// AvatarURL returns a gravatar identicon derived from the username.
func AvatarURL(username string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(username)))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&d=identicon", hex.EncodeToString(sum[:]), size)
}
