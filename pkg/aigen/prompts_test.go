package aigen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbattle/bitbattle/pkg/problems"
)

func TestExtractJSON(t *testing.T) {
	text := "Here's the problem:\n{\"title\": \"Test\"}\nDone!"
	assert.Equal(t, `{"title": "Test"}`, ExtractJSON(text))

	assert.Equal(t, "no braces here", ExtractJSON("no braces here"))
	assert.Equal(t, `{"a":{"b":1}}`, ExtractJSON(`junk {"a":{"b":1}} trailing`))
}

func TestDifficultyPrompts(t *testing.T) {
	assert.Contains(t, GenerationPrompt(problems.Easy), "EASY")
	assert.Contains(t, GenerationPrompt(problems.Medium), "MEDIUM")
	assert.Contains(t, GenerationPrompt(problems.Hard), "HARD")
}

func TestParseGenerated(t *testing.T) {
	raw := `Sure! Here you go:
{
  "title": "Sum Pairs",
  "description": "Given numbers on stdin, print their sum. Constraints: values fit in int64.",
  "examples": [{"input": "1 2", "expected_output": "3"}],
  "test_cases": [
    {"input": "1 2", "expected_output": "3"},
    {"input": "0 0", "expected_output": "0"},
    {"input": "-1 5", "expected_output": "4"}
  ],
  "starter_code": {"javascript": "// ...", "python": "# ..."},
  "time_limit_minutes": 15,
  "tags": ["math"],
  "reference_solution": {"language": "python", "code": "print(sum(map(int, input().split())))"}
}
Hope that helps!`

	p, err := ParseGenerated(raw)
	require.NoError(t, err)
	assert.Equal(t, "Sum Pairs", p.Title)
	assert.Len(t, p.TestCases, 3)
	assert.Equal(t, "python", p.ReferenceSolution.Language)
	require.NotNil(t, p.TimeLimitMinutes)
	assert.Equal(t, 15, *p.TimeLimitMinutes)
}

func TestParseGeneratedInvalid(t *testing.T) {
	_, err := ParseGenerated("not json at all")
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sum Pairs", "sum-pairs"},
		{"Two Sum!", "two-sum"},
		{"  Weird   Spacing  ", "weird-spacing"},
		{"CamelCase Title 2", "camelcase-title-2"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}
