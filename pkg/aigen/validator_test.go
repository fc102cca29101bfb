package aigen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbattle/bitbattle/pkg/executor"
	"github.com/bitbattle/bitbattle/pkg/problems"
)

// fakeRunner reports a fixed pass/fail outcome and records the request.
type fakeRunner struct {
	pass    bool
	lastReq executor.SubmissionRequest
}

func (f *fakeRunner) ExecuteSubmission(_ context.Context, req executor.SubmissionRequest, problem *problems.Problem) *executor.SubmissionResult {
	f.lastReq = req
	results := make([]executor.TestResult, len(problem.TestCases))
	passed := 0
	for i, tc := range problem.TestCases {
		results[i] = executor.TestResult{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			ActualOutput:   tc.ExpectedOutput,
			Passed:         f.pass,
		}
		if f.pass {
			passed++
		} else {
			results[i].ActualOutput = "wrong"
		}
	}
	return &executor.SubmissionResult{
		Passed:      f.pass && len(results) > 0,
		TotalTests:  len(results),
		PassedTests: passed,
		TestResults: results,
	}
}

func validGenerated() *GeneratedProblem {
	limit := 15
	return &GeneratedProblem{
		Title:       "Sum Pairs",
		Description: strings.Repeat("Given numbers on stdin, print their sum. ", 3),
		Examples:    []problems.TestCase{{Input: "1 2", ExpectedOutput: "3"}},
		TestCases: []problems.TestCase{
			{Input: "1 2", ExpectedOutput: "3"},
			{Input: "0 0", ExpectedOutput: "0"},
			{Input: "-1 5", ExpectedOutput: "4"},
		},
		StarterCode:       map[string]string{"javascript": "//", "python": "#"},
		TimeLimitMinutes:  &limit,
		Tags:              []string{"math"},
		ReferenceSolution: ReferenceSolution{Language: "python", Code: "print(1)"},
	}
}

func TestValidateStructure(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GeneratedProblem)
		wantErr string
	}{
		{"valid", func(p *GeneratedProblem) {}, ""},
		{"empty title", func(p *GeneratedProblem) { p.Title = "  " }, "Title is empty"},
		{"long title", func(p *GeneratedProblem) { p.Title = strings.Repeat("x", 101) }, "Title too long"},
		{"short description", func(p *GeneratedProblem) { p.Description = "too short" }, "Description too short"},
		{"no examples", func(p *GeneratedProblem) { p.Examples = nil }, "No examples provided"},
		{"too many examples", func(p *GeneratedProblem) {
			p.Examples = make([]problems.TestCase, 6)
		}, "Too many examples"},
		{"too few test cases", func(p *GeneratedProblem) {
			p.TestCases = p.TestCases[:2]
		}, "Need at least 3 test cases"},
		{"too many test cases", func(p *GeneratedProblem) {
			p.TestCases = make([]problems.TestCase, 11)
		}, "Too many test cases"},
		{"missing python starter", func(p *GeneratedProblem) {
			delete(p.StarterCode, "python")
		}, "Missing starter code for python"},
		{"empty reference solution", func(p *GeneratedProblem) {
			p.ReferenceSolution.Code = ""
		}, "Reference solution is empty"},
		{"bad reference language", func(p *GeneratedProblem) {
			p.ReferenceSolution.Language = "cobol"
		}, "Invalid reference solution language: cobol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validGenerated()
			tt.mutate(p)
			err := validateStructure(p)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateRunsReferenceSolution(t *testing.T) {
	runner := &fakeRunner{pass: true}
	v := NewValidator(runner)

	require.NoError(t, v.Validate(context.Background(), validGenerated()))
	assert.Equal(t, "validator", runner.lastReq.Username)
	assert.Equal(t, "python", runner.lastReq.Language)
	assert.True(t, strings.HasPrefix(runner.lastReq.ProblemID, "ai-"),
		"reference solutions run through the stdin path")
}

func TestValidateFailingSolution(t *testing.T) {
	v := NewValidator(&fakeRunner{pass: false})

	err := v.Validate(context.Background(), validGenerated())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Reference solution failed 3 of 3 tests")
	assert.Contains(t, err.Error(), "Input: 1 2, Expected: 3, Got: wrong")
}

func TestValidateStructureShortCircuits(t *testing.T) {
	runner := &fakeRunner{pass: true}
	v := NewValidator(runner)

	bad := validGenerated()
	bad.Title = ""
	err := v.Validate(context.Background(), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Structure error")
	assert.Empty(t, runner.lastReq.Username, "sandbox must not run for malformed problems")
}
