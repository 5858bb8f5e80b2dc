package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"intro-to-x", "intro-to-x"},
		{"Intro to X", "intro-to-x"},
		{"  Guides & Tips!! ", "guides-tips"},
		{"a  --  b", "a-b"},
		{"---edge---", "edge"},
		{"snake_case_title", "snakecasetitle"},
		{"Ünïcode only", "ncode-only"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestDedupeAndTrim(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar"}, DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "}))
	assert.Empty(t, DedupeAndTrim(nil))
}

func TestTrimStrings(t *testing.T) {
	a, b := "  x ", "y\n"
	TrimStrings(&a, &b)
	assert.Equal(t, "x", a)
	assert.Equal(t, "y", b)
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "user_id", ToSnakeCase("UserID"))
	assert.Equal(t, "target_id", ToSnakeCase("TargetID"))
	assert.Equal(t, "category_slug", ToSnakeCase("CategorySlug"))
}
