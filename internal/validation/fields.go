// Package validation holds the pure form validators used by the dashboard.
// Field validators return "" when the value is acceptable and a
// human-readable message otherwise.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	ethAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	hexColorPattern   = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	nonDigits         = regexp.MustCompile(`\D`)
)

const (
	minNameLen     = 2
	maxNameLen     = 30
	minMobileLen   = 10
	maxMobileLen   = 15
	minPasswordLen = 6
)

func Name(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required"
	}
	if n := utf8.RuneCountInString(name); n < minNameLen || n > maxNameLen {
		return "Name must be between 2 and 30 characters"
	}
	return ""
}

func Email(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(email) {
		return "Please enter a valid email address"
	}
	return ""
}

// Mobile ignores formatting characters and checks the digit count only.
func Mobile(mobile string) string {
	if strings.TrimSpace(mobile) == "" {
		return "Mobile number is required"
	}
	digits := nonDigits.ReplaceAllString(mobile, "")
	if len(digits) < minMobileLen || len(digits) > maxMobileLen {
		return "Please enter a valid mobile number"
	}
	return ""
}

func Password(password string) string {
	if password == "" {
		return "Password is required"
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 6 characters"
	}
	return ""
}

// EthAddress accepts exactly "0x" followed by 40 hex digits.
func EthAddress(addr string) string {
	if strings.TrimSpace(addr) == "" {
		return "Ethereum address is required"
	}
	if !ethAddressPattern.MatchString(addr) {
		return "Please enter a valid Ethereum address"
	}
	return ""
}

// BackgroundColor accepts an empty value (use the default) or #rrggbb.
func BackgroundColor(color string) string {
	if color == "" || hexColorPattern.MatchString(color) {
		return ""
	}
	return "Background color must be a hex value like #1a2b3c"
}
