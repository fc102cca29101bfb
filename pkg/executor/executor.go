// Package executor runs player submissions against problem test cases inside
// short-lived Docker sandboxes.
package executor

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"golang.org/x/sync/semaphore"

	"github.com/bitbattle/bitbattle/pkg/problems"
)

const (
	// ExecutionTimeout is the per-test wall clock budget.
	ExecutionTimeout = 10 * time.Second

	// maxConcurrentRuns caps in-flight sandbox containers across all
	// submissions so a burst cannot exhaust the Docker daemon.
	maxConcurrentRuns = 8

	memoryLimit = 128 * 1024 * 1024 // 128MB
	nanoCPUs    = 500_000_000       // 0.5 CPU
	pidsLimit   = int64(50)
)

// SubmissionRequest is one attempt to solve a problem.
type SubmissionRequest struct {
	Username  string  `json:"username"`
	ProblemID string  `json:"problem_id"`
	Code      string  `json:"code"`
	Language  string  `json:"language"`
	RoomID    *string `json:"room_id"`
}

// TestResult is the outcome of a single test case.
type TestResult struct {
	Input           string  `json:"input"`
	ExpectedOutput  string  `json:"expected_output"`
	ActualOutput    string  `json:"actual_output"`
	Passed          bool    `json:"passed"`
	ExecutionTimeMs int64   `json:"execution_time_ms"`
	Error           *string `json:"error"`
}

// SubmissionResult aggregates every test case outcome.
type SubmissionResult struct {
	Username        string       `json:"username"`
	ProblemID       string       `json:"problem_id"`
	Passed          bool         `json:"passed"`
	TotalTests      int          `json:"total_tests"`
	PassedTests     int          `json:"passed_tests"`
	TestResults     []TestResult `json:"test_results"`
	ExecutionTimeMs int64        `json:"execution_time_ms"`
	SubmissionTime  int64        `json:"submission_time"`
}

// Executor drives the sandbox containers.
type Executor struct {
	docker client.APIClient
	image  string
	sem    *semaphore.Weighted
}

// New connects to the local Docker daemon.
func New(image string) (*Executor, error) {
	docker, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to docker daemon: %w", err)
	}
	return NewWithClient(docker, image), nil
}

// NewWithClient injects a Docker client, used by tests.
func NewWithClient(docker client.APIClient, image string) *Executor {
	return &Executor{
		docker: docker,
		image:  image,
		sem:    semaphore.NewWeighted(maxConcurrentRuns),
	}
}

// ExecuteSubmission runs the submission against every test case of the
// problem, one fresh container per case.
func (e *Executor) ExecuteSubmission(ctx context.Context, req SubmissionRequest, problem *problems.Problem) *SubmissionResult {
	start := time.Now()
	results := make([]TestResult, 0, len(problem.TestCases))

	for _, tc := range problem.TestCases {
		results = append(results, e.runTest(ctx, &req, tc))
	}

	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}

	return &SubmissionResult{
		Username:        req.Username,
		ProblemID:       req.ProblemID,
		Passed:          passed == len(results) && len(results) > 0,
		TotalTests:      len(results),
		PassedTests:     passed,
		TestResults:     results,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
		SubmissionTime:  time.Now().Unix(),
	}
}

func (e *Executor) runTest(ctx context.Context, req *SubmissionRequest, tc problems.TestCase) TestResult {
	testStart := time.Now()
	result := TestResult{
		Input:          tc.Input,
		ExpectedOutput: tc.ExpectedOutput,
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		msg := "Execution cancelled while waiting for a sandbox slot"
		result.Error = &msg
		result.ExecutionTimeMs = time.Since(testStart).Milliseconds()
		return result
	}
	defer e.sem.Release(1)

	fullCode, stdin, err := BuildHarness(req.ProblemID, req.Language, req.Code, tc)
	if err != nil {
		msg := err.Error()
		result.Error = &msg
		result.ExecutionTimeMs = time.Since(testStart).Milliseconds()
		return result
	}

	runCtx, cancel := context.WithTimeout(ctx, ExecutionTimeout)
	defer cancel()

	output, runErr := e.runCode(runCtx, fullCode, req.Language, stdin)
	result.ExecutionTimeMs = time.Since(testStart).Milliseconds()

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		msg := fmt.Sprintf("Execution timeout (%d seconds)", int(ExecutionTimeout.Seconds()))
		result.Error = &msg
	case runErr != nil:
		msg := runErr.Error()
		result.Error = &msg
	default:
		result.ActualOutput = strings.TrimSpace(output)
		result.Passed = CompareOutputs(result.ActualOutput, tc.ExpectedOutput)
	}
	return result
}

// CompareOutputs normalizes whitespace runs on both sides and compares.
func CompareOutputs(actual, expected string) bool {
	return strings.Join(strings.Fields(actual), " ") == strings.Join(strings.Fields(expected), " ")
}

type runSpec struct {
	filename   string
	cmd        []string
	isCompiled bool
}

func specFor(language string, stdin bool) (runSpec, error) {
	var spec runSpec
	switch language {
	case "javascript":
		spec = runSpec{"code.js", []string{"node", "/tmp/code.js"}, false}
	case "python":
		spec = runSpec{"code.py", []string{"python3", "/tmp/code.py"}, false}
	case "c":
		spec = runSpec{"code.c", nil, true}
	case "cpp":
		spec = runSpec{"code.cpp", nil, true}
	case "rust":
		spec = runSpec{"code.rs", nil, true}
	case "go":
		spec = runSpec{"code.go", nil, true}
	case "java":
		spec = runSpec{"Solution.java", nil, true}
	default:
		return spec, fmt.Errorf("Unsupported language: %s", language)
	}

	if spec.isCompiled {
		var compile, run string
		switch language {
		case "c":
			compile, run = "gcc -o /tmp/prog /tmp/code.c -lm", "/tmp/prog"
		case "cpp":
			compile, run = "g++ -o /tmp/prog /tmp/code.cpp", "/tmp/prog"
		case "rust":
			compile, run = "rustc -o /tmp/prog /tmp/code.rs 2>&1", "/tmp/prog"
		case "go":
			compile, run = "go build -o /tmp/prog /tmp/code.go", "/tmp/prog"
		case "java":
			compile, run = "javac /tmp/Solution.java", "java -cp /tmp Solution"
		}
		if stdin {
			run += " < /tmp/input.txt"
		}
		spec.cmd = []string{"sh", "-c", compile + " && " + run}
	} else if stdin {
		spec.cmd = []string{"sh", "-c", strings.Join(spec.cmd, " ") + " < /tmp/input.txt"}
	}
	return spec, nil
}

// runCode executes the assembled program in a fresh sandbox container and
// returns its stdout. stdin, when non-nil, is shipped alongside the code and
// redirected into the program.
func (e *Executor) runCode(ctx context.Context, code, language string, stdin *string) (string, error) {
	spec, err := specFor(language, stdin != nil)
	if err != nil {
		return "", err
	}

	files := map[string]string{spec.filename: code}
	if stdin != nil {
		files["input.txt"] = *stdin
	}
	return e.executeInContainer(ctx, files, spec.cmd, spec.isCompiled)
}

func (e *Executor) executeInContainer(ctx context.Context, files map[string]string, cmd []string, isCompiled bool) (string, error) {
	containerName := fmt.Sprintf("bitbattle-%d-%d", os.Getpid(), rand.Uint64())

	memory := int64(memoryLimit)
	cpus := int64(nanoCPUs)
	if isCompiled {
		// Compilation needs headroom beyond the run budget.
		memory *= 2
		cpus *= 2
	}
	pids := pidsLimit

	created, err := e.docker.ContainerCreate(ctx,
		&container.Config{
			Image:        e.image,
			Cmd:          cmd,
			User:         "runner",
			WorkingDir:   "/tmp",
			Tty:          false,
			AttachStdout: true,
			AttachStderr: true,
		},
		&container.HostConfig{
			NetworkMode: "none",
			Resources: container.Resources{
				Memory:    memory,
				NanoCPUs:  cpus,
				PidsLimit: &pids,
			},
		},
		nil, nil, containerName)
	if err != nil {
		return "", fmt.Errorf("Failed to create container: %v", err)
	}
	id := created.ID

	// Force removal runs on the background context so a deadline-exceeded
	// test still gets its container cleaned up.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.docker.ContainerRemove(cleanupCtx, id, container.RemoveOptions{Force: true}); err != nil {
			slog.Warn("Failed to remove sandbox container", "container", containerName, "error", err)
		}
	}()

	tarData, err := tarArchive(files)
	if err != nil {
		return "", fmt.Errorf("Failed to upload code: %v", err)
	}
	if err := e.docker.CopyToContainer(ctx, id, "/tmp", bytes.NewReader(tarData), container.CopyToContainerOptions{}); err != nil {
		return "", fmt.Errorf("Failed to upload code: %v", err)
	}

	if err := e.docker.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("Failed to start container: %v", err)
	}

	waitCh, errCh := e.docker.ContainerWait(ctx, id, container.WaitConditionNotRunning)

	var exitCode int64
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errCh:
		if err != nil {
			return "", fmt.Errorf("Execution failed. Check your code for errors.")
		}
	case status := <-waitCh:
		exitCode = status.StatusCode
	}

	stdout, stderr, err := e.collectLogs(ctx, id)
	if err != nil {
		return "", err
	}

	if exitCode != 0 {
		return "", fmt.Errorf("%s", CleanError(stderr, isCompiled))
	}
	return stdout, nil
}

func (e *Executor) collectLogs(ctx context.Context, id string) (string, string, error) {
	rc, err := e.docker.ContainerLogs(ctx, id, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", "", fmt.Errorf("Execution failed. Check your code for errors.")
	}
	defer func() { _ = rc.Close() }()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, rc); err != nil && err != io.EOF {
		return "", "", fmt.Errorf("Execution failed. Check your code for errors.")
	}
	return stdout.String(), stderr.String(), nil
}

// CleanError reduces raw stderr to a single line a player can act on.
// File paths are rewritten to line references and long dumps are truncated.
func CleanError(stderr string, isCompiled bool) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		if isCompiled {
			return "Compilation failed with no error output."
		}
		return "Execution failed with no error output."
	}

	for _, line := range strings.Split(stderr, "\n") {
		if strings.Contains(line, "error") || strings.Contains(line, "Error") ||
			strings.Contains(line, "SyntaxError") || strings.Contains(line, "TypeError") ||
			strings.Contains(line, "ReferenceError") || strings.Contains(line, "Exception") {
			replacer := strings.NewReplacer(
				"/tmp/code.js:", "Line ",
				"/tmp/code.py:", "Line ",
				"/tmp/code.c:", "Line ",
				"/tmp/code.cpp:", "Line ",
				"/tmp/code.rs:", "Line ",
				"/tmp/code.go:", "Line ",
			)
			return strings.TrimSpace(replacer.Replace(line))
		}
	}

	if len(stderr) > 200 {
		return stderr[:200] + "..."
	}
	return stderr
}

// tarArchive packs the given files into an uncompressed tar for
// CopyToContainer.
func tarArchive(files map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, content := range files {
		hdr := &tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, err
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
