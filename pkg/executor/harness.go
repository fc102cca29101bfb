package executor

import (
	"fmt"
	"strings"

	"github.com/bitbattle/bitbattle/pkg/problems"
)

// BuildHarness wraps user code into a runnable program for one test case.
//
// Static problems have a per-problem harness that embeds the parsed test
// input and calls the expected entry point. AI-generated problems ("ai-"
// prefix) skip wrapping entirely: the submission is a complete program and
// the raw test input is piped to it on stdin.
//
// Problem ids without a registered harness are an error rather than a
// program that prints a placeholder.
func BuildHarness(problemID, language, code string, tc problems.TestCase) (string, *string, error) {
	if strings.HasPrefix(problemID, "ai-") {
		input := tc.Input
		return code, &input, nil
	}

	if !harnessKnown(problemID) {
		return "", nil, fmt.Errorf("No test harness for problem: %s", problemID)
	}

	var full string
	switch language {
	case "javascript":
		full = jsHarness(code, tc, problemID)
	case "python":
		full = pyHarness(code, tc, problemID)
	case "c":
		full = cHarness(code, tc, problemID)
	case "cpp":
		full = cppHarness(code, tc, problemID)
	case "rust":
		full = rustHarness(code, tc, problemID)
	case "go":
		full = goHarness(code, tc, problemID)
	case "java":
		full = javaHarness(code, tc, problemID)
	default:
		return "", nil, fmt.Errorf("Unsupported language: %s", language)
	}
	return full, nil, nil
}

// harnessProblemIDs is the closed set of statically wrapped problems.
var harnessProblemIDs = map[string]bool{
	"two-sum":                  true,
	"reverse-string":           true,
	"valid-parentheses":        true,
	"fizzbuzz":                 true,
	"palindrome-number":        true,
	"maximum-subarray":         true,
	"merge-intervals":          true,
	"group-anagrams":           true,
	"longest-substring":        true,
	"trapping-rain-water":      true,
	"merge-k-sorted-lists":     true,
	"median-two-sorted-arrays": true,
}

func harnessKnown(problemID string) bool {
	return harnessProblemIDs[problemID]
}

// trimBrackets strips the outermost square brackets of a literal like
// "[2,7,11,15]".
func trimBrackets(s string) string {
	return strings.Trim(s, "[]")
}

// charLiterals turns `["h","e"]` into `'h', 'e'`.
func charLiterals(input string) string {
	parts := strings.Split(trimBrackets(input), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		ch := strings.Trim(strings.TrimSpace(p), `"`)
		out = append(out, fmt.Sprintf("'%s'", ch))
	}
	return strings.Join(out, ", ")
}

// goIntArray rewrites a JSON int array literal into a Go slice literal.
func goIntArray(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "[", "[]int{"), "]", "}")
}

// goIntMatrix rewrites a nested JSON int array literal into a Go [][]int
// literal.
func goIntMatrix(s string) string {
	s = strings.ReplaceAll(s, "[[", "[][]int{{")
	s = strings.ReplaceAll(s, "]]", "}}")
	return strings.ReplaceAll(s, "],[", "},{")
}

// javaIntArrays parses a literal like [[1,3],[2,6]] into
// `new int[]{1, 3}, new int[]{2, 6}`.
func javaIntArrays(input string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(input, "["), "]")
	var arrays []string
	depth := 0
	var current strings.Builder
	for _, c := range inner {
		switch {
		case c == '[':
			depth++
			if depth == 1 {
				current.Reset()
			}
		case c == ']':
			depth--
			if depth == 0 {
				var nums []string
				for _, n := range strings.Split(current.String(), ",") {
					if n != "" {
						nums = append(nums, n)
					}
				}
				arrays = append(arrays, fmt.Sprintf("new int[]{%s}", strings.Join(nums, ", ")))
			}
		case depth > 0:
			current.WriteRune(c)
		}
	}
	return strings.Join(arrays, ", ")
}
