// Package text_test tests synthesis input normalization.
package text_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicekit/vvcore/internal/text"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text untouched", input: "hello world", want: "hello world"},
		{name: "whitespace runs collapse", input: "  hello\t\n  world \r\n", want: "hello world"},
		{name: "control characters dropped", input: "hel\x00lo\x07", want: "hello"},
		{name: "multibyte preserved", input: "こんにちは　世界", want: "こんにちは 世界"},
		{name: "empty stays empty", input: "", want: ""},
		{name: "whitespace only becomes empty", input: " \t\n ", want: ""},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, text.Normalize(testCase.input))
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, text.Validate("hello"))
	require.ErrorIs(t, text.Validate(""), text.ErrTextEmpty)
}
