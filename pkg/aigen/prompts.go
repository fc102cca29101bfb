// Package aigen generates and validates AI problems, keeping per-difficulty
// pools topped up in the background.
package aigen

import (
	"encoding/json"
	"strings"

	"github.com/bitbattle/bitbattle/pkg/problems"
)

// SystemPrompt frames every generation request.
const SystemPrompt = `You are an expert competitive programming problem creator for a real-time coding battle game. Generate coding problems that are:
- Clear and unambiguous
- Self-contained (no external data, files, or APIs needed)
- Solvable with standard algorithms and data structures
- Fun and engaging for competitive play

CRITICAL RULES:
1. Input/output must be simple, parseable formats (JSON arrays, numbers, strings)
2. Test cases must include edge cases and be comprehensive
3. The problem MUST be solvable - you will provide a working reference solution
4. Do NOT use any external libraries beyond standard library

SUPPORTED LANGUAGES (provide starter code for ALL):
- javascript, python, rust, go, java, c, cpp

OUTPUT FORMAT - Return ONLY valid JSON with these exact keys:
- title: string (2-5 words)
- description: string (full problem description with constraints)
- examples: array of {input, expected_output, explanation}
- test_cases: array of {input, expected_output} (hidden tests, 3-6 items)
- starter_code: object with language keys (javascript, python, rust, go, java, c, cpp)
- time_limit_minutes: number (10-40 based on difficulty)
- tags: array of strings (e.g., ["array", "math"])
- reference_solution: object with {language, code} - MUST be a working solution

IMPORTANT: The reference_solution MUST work correctly with all test cases. This will be used to validate the problem is solvable.`

const easyPrompt = `Generate an EASY difficulty coding problem.

EASY problem requirements:
- Single concept: arrays, strings, basic math, or simple iteration
- Time complexity: O(n) or O(n log n) at most
- 3-4 test cases with simple edge cases
- Solvable in 10-15 minutes by an intermediate programmer
- Examples: sum of array, reverse string, find max, count occurrences, palindrome check

Focus on clarity and straightforward logic. No tricky edge cases.

Generate a unique, original problem (not Two Sum, FizzBuzz, or other common problems).

Return only valid JSON.`

const mediumPrompt = `Generate a MEDIUM difficulty coding problem.

MEDIUM problem requirements:
- Combines 2-3 concepts: hash maps, stacks, two pointers, sliding window, sorting
- Time complexity: O(n log n) to O(n^2) acceptable
- 4-5 test cases including tricky edge cases
- Solvable in 20-25 minutes by an intermediate programmer
- Examples: merge intervals, group anagrams, valid parentheses with multiple types

Include at least one non-obvious edge case. Requires some algorithmic thinking.

Generate a unique, original problem (not common LeetCode problems).

Return only valid JSON.`

const hardPrompt = `Generate a HARD difficulty coding problem.

HARD problem requirements:
- Complex algorithms: dynamic programming, graphs, trees, advanced data structures
- Optimization is key - brute force should time out
- 5-6 test cases with complex edge cases and large inputs
- Solvable in 30-40 minutes by an experienced programmer
- Examples: longest increasing subsequence, shortest path, tree serialization

The naive solution should be obvious but inefficient. The optimal solution requires insight.

Generate a unique, original problem (not common LeetCode problems).

Return only valid JSON.`

// GenerationPrompt returns the user prompt for a difficulty tier.
func GenerationPrompt(d problems.Difficulty) string {
	switch d {
	case problems.Easy:
		return easyPrompt
	case problems.Hard:
		return hardPrompt
	default:
		return mediumPrompt
	}
}

// ReferenceSolution is the model-supplied proof the problem is solvable.
type ReferenceSolution struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// GeneratedProblem is the decoded LLM output.
type GeneratedProblem struct {
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Examples          []problems.TestCase `json:"examples"`
	TestCases         []problems.TestCase `json:"test_cases"`
	StarterCode       map[string]string   `json:"starter_code"`
	TimeLimitMinutes  *int                `json:"time_limit_minutes"`
	Tags              []string            `json:"tags"`
	ReferenceSolution ReferenceSolution   `json:"reference_solution"`
}

// ParseGenerated decodes a raw LLM response, tolerating prose around the
// JSON object.
func ParseGenerated(response string) (*GeneratedProblem, error) {
	var p GeneratedProblem
	if err := json.Unmarshal([]byte(ExtractJSON(response)), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ExtractJSON cuts the substring between the first '{' and the last '}'.
func ExtractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

// Slugify lowercases a title and collapses non-alphanumeric runs into single
// dashes, for problem ids.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
