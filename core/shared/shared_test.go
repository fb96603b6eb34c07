package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToKebabCase(t *testing.T) {
	cases := map[string]string{
		"UserProfileCard": "user-profile-card",
		"userCard":        "user-card",
		"HTMLView":        "html-view",
		"already-kebab":   "already-kebab",
		"Card2Go":         "card2-go",
		"snake_case":      "snake-case",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToKebabCase(in), in)
	}
}

func TestToTitle(t *testing.T) {
	assert.Equal(t, "Foo", ToTitle("foo"))
	assert.Equal(t, "", ToTitle(""))
}
