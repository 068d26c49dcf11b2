package helpers

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

func StringTrim(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RemoveDuplicates keeps the first occurrence of each trimmed, non-empty value.
func RemoveDuplicates(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

var profanity = []string{"damn", "hell", "shit", "fuck", "bastard", "crap"}

var profanityPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(profanity, "|") + `)\b`)

// RemoveProfanity masks listed words with asterisks of the same length.
func RemoveProfanity(s string) string {
	return profanityPattern.ReplaceAllStringFunc(s, func(w string) string {
		return strings.Repeat("*", len(w))
	})
}

func GenerateSlug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ParsePagination reads page and limit query values, falling back to defaults
// on bad input, and returns the row offset for the page.
func ParsePagination(pageStr, limitStr string) (page, limit, offset int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit, (page - 1) * limit
}
