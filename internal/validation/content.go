package validation

import (
	"strings"
	"unicode"
)

// Field limits for user-authored content.
const (
	MaxTitleLength        = 255
	MaxPostBodyLength     = 50000
	MaxCommentLength      = 5000
	MaxCategoryNameLength = 100
	MaxBioLength          = 500
)

// ValidatePostTitle checks a post title.
func ValidatePostTitle(title string) error {
	return ValidateLength("title", title, 1, MaxTitleLength)
}

// ValidatePostBody checks a post body.
func ValidatePostBody(body string) error {
	return ValidateLength("body", body, 1, MaxPostBodyLength)
}

// ValidateCommentBody checks a comment body.
func ValidateCommentBody(body string) error {
	return ValidateLength("body", body, 1, MaxCommentLength)
}

// ValidateCategoryName checks a category name.
func ValidateCategoryName(name string) error {
	return ValidateLength("name", name, 1, MaxCategoryNameLength)
}

// Slugify lowercases s and joins its letter/digit runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}
