package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentLimits(t *testing.T) {
	t.Parallel()
	assert.Error(t, ValidatePostTitle("   "))
	assert.NoError(t, ValidatePostTitle("Hello"))
	assert.Error(t, ValidatePostTitle(strings.Repeat("x", MaxTitleLength+1)))

	assert.EqualError(t, ValidatePostBody("  "), "body is required")
	assert.NoError(t, ValidatePostBody("Some text"))
	assert.Error(t, ValidatePostBody(strings.Repeat("x", MaxPostBodyLength+1)))
	assert.Error(t, ValidateCommentBody(""))
	assert.EqualError(t, ValidateCommentBody(""), "body is required")
	assert.Error(t, ValidateCommentBody(strings.Repeat("x", MaxCommentLength+1)))

	assert.Error(t, ValidateCategoryName(""))
	assert.NoError(t, ValidateCategoryName("Travel"))
}

func TestSlugify(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"Travel":            "travel",
		"  Food & Drink ":   "food-drink",
		"Go / Rust -- Zig":  "go-rust-zig",
		"Café Culture 2026": "café-culture-2026",
		"!!!":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
