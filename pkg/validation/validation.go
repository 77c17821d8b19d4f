package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// EmailRegex validates email format
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidateEmail validates email address
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email is too long (max 254 characters)")
	}
	if !EmailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword validates password. Credential strength beyond basic length
// is the identity provider's call; these checks only reject obvious garbage
// before a network round-trip.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password is too long (max 128 characters)")
	}
	return nil
}

// ValidateDisplayName validates the optional profile display name.
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if utf8.RuneCountInString(name) > 100 {
		return fmt.Errorf("display name is too long (max 100 characters)")
	}
	if strings.ContainsAny(name, "\x00\n\r\t") {
		return fmt.Errorf("display name contains invalid characters")
	}
	return nil
}

// ValidateProgressSeconds validates a playback position report.
func ValidateProgressSeconds(seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("progress must be >= 0")
	}
	// Nothing in the catalog runs longer than a day.
	if seconds > 24*60*60 {
		return fmt.Errorf("progress is out of range")
	}
	return nil
}
