package aigen

import (
	"context"
	"fmt"
	"strings"

	"github.com/bitbattle/bitbattle/pkg/executor"
	"github.com/bitbattle/bitbattle/pkg/problems"
)

// validationProblemID carries the ai- prefix so the sandbox runs the
// reference solution as a complete program fed by stdin.
const validationProblemID = "ai-validation-temp"

// Runner is the slice of the executor the validator needs.
type Runner interface {
	ExecuteSubmission(ctx context.Context, req executor.SubmissionRequest, problem *problems.Problem) *executor.SubmissionResult
}

// Validator checks that a generated problem is well-formed and solvable.
type Validator struct {
	runner Runner
}

// NewValidator creates a validator over the given sandbox runner.
func NewValidator(runner Runner) *Validator {
	return &Validator{runner: runner}
}

// Validate runs structural checks, then the reference solution against every
// test case. A nil error means the problem can go straight to Validated.
func (v *Validator) Validate(ctx context.Context, p *GeneratedProblem) error {
	if err := validateStructure(p); err != nil {
		return fmt.Errorf("Structure error: %w", err)
	}
	return v.runReferenceSolution(ctx, p)
}

func validateStructure(p *GeneratedProblem) error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("Title is empty")
	}
	if len(p.Title) > 100 {
		return fmt.Errorf("Title too long")
	}
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("Description is empty")
	}
	if len(p.Description) < 50 {
		return fmt.Errorf("Description too short")
	}
	if len(p.Examples) == 0 {
		return fmt.Errorf("No examples provided")
	}
	if len(p.Examples) > 5 {
		return fmt.Errorf("Too many examples")
	}
	if len(p.TestCases) == 0 {
		return fmt.Errorf("No test cases provided")
	}
	if len(p.TestCases) < 3 {
		return fmt.Errorf("Need at least 3 test cases")
	}
	if len(p.TestCases) > 10 {
		return fmt.Errorf("Too many test cases")
	}
	for _, lang := range []string{"javascript", "python"} {
		if _, ok := p.StarterCode[lang]; !ok {
			return fmt.Errorf("Missing starter code for %s", lang)
		}
	}
	if strings.TrimSpace(p.ReferenceSolution.Code) == "" {
		return fmt.Errorf("Reference solution is empty")
	}
	valid := false
	for _, lang := range []string{"javascript", "python", "rust", "go", "java", "c", "cpp"} {
		if p.ReferenceSolution.Language == lang {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("Invalid reference solution language: %s", p.ReferenceSolution.Language)
	}
	return nil
}

func (v *Validator) runReferenceSolution(ctx context.Context, p *GeneratedProblem) error {
	limit := 5
	temp := &problems.Problem{
		ID:               validationProblemID,
		Title:            p.Title,
		Description:      p.Description,
		Difficulty:       problems.Medium,
		TestCases:        p.TestCases,
		StarterCode:      map[string]string{},
		TimeLimitMinutes: &limit,
	}

	result := v.runner.ExecuteSubmission(ctx, executor.SubmissionRequest{
		Username:  "validator",
		ProblemID: validationProblemID,
		Code:      p.ReferenceSolution.Code,
		Language:  p.ReferenceSolution.Language,
	}, temp)

	if result.Passed {
		return nil
	}

	var failed []string
	for _, r := range result.TestResults {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf(
				"Input: %s, Expected: %s, Got: %s", r.Input, r.ExpectedOutput, r.ActualOutput))
		}
	}
	return fmt.Errorf("Reference solution failed %d of %d tests: %s",
		result.TotalTests-result.PassedTests, result.TotalTests, strings.Join(failed, "; "))
}
