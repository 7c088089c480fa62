package analyzer

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/codeguardian/codeguardian/internal/config"
	"github.com/codeguardian/codeguardian/internal/report"
	"github.com/codeguardian/codeguardian/internal/rules"
	"github.com/codeguardian/codeguardian/internal/source"
)

type stubProvider struct {
	units []*source.FileUnit
}

func (p *stubProvider) Units(ctx context.Context) ([]*source.FileUnit, error) {
	return p.units, nil
}

// walkProvider mirrors the file scanner's behavior of surfacing a wrapped
// context error when cancellation fires during discovery.
type walkProvider struct{}

func (walkProvider) Units(ctx context.Context) ([]*source.FileUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan files: %w", err)
	}
	return nil, nil
}

func defaultRegistry(t *testing.T) *rules.Registry {
	t.Helper()
	reg, err := rules.Build(config.DefaultConfig())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return reg
}

func TestRunDetectsHardcodedSecret(t *testing.T) {
	content := "import os\n" +
		"\n" +
		"# configuration\n" +
		"API_KEY = \"sk_test_1234567890abcdef\"\n"
	provider := &stubProvider{units: []*source.FileUnit{
		source.NewFileUnit("settings.py", content),
	}}

	runner := NewRunner(defaultRegistry(t), Options{AIConfidenceThreshold: 0.7})
	result, err := runner.Run(context.Background(), provider)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var secret *report.Finding
	for i := range result.Findings {
		if result.Findings[i].RuleID == "security.hardcoded-secret.1" {
			secret = &result.Findings[i]
		}
	}
	if secret == nil {
		t.Fatalf("Expected a hardcoded secret finding, got %+v", result.Findings)
	}
	if secret.Line != 4 {
		t.Errorf("Expected finding on line 4, got %d", secret.Line)
	}
	if secret.Severity != report.SeverityCritical {
		t.Errorf("Expected critical severity, got %s", secret.Severity)
	}
	if !result.Failing {
		t.Error("A critical finding must fail the default policy")
	}
	if result.Summary.SecurityIssues == 0 {
		t.Error("Expected security issues counted in the summary")
	}
}

func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	units := []*source.FileUnit{
		source.NewFileUnit("c.py", "API_KEY = \"sk_live_abcdef1234567890\"\nfor i in range(len(xs)):\n    pass\n"),
		source.NewFileUnit("a.py", "data = load()\nresult = data\n"),
		source.NewFileUnit("b.py", "# TODO: finish\nquery = \"SELECT \" + table\n"),
	}

	reg := defaultRegistry(t)
	var results []*report.ScanResult
	for _, workers := range []int{1, 4, 8} {
		runner := NewRunner(reg, Options{
			Workers:               workers,
			AIConfidenceThreshold: 0.7,
			SeverityThreshold:     report.SeverityLow,
		})
		result, err := runner.Run(context.Background(), &stubProvider{units: units})
		if err != nil {
			t.Fatalf("Run with %d workers failed: %v", workers, err)
		}
		results = append(results, result)
	}

	base := results[0]
	if len(base.Findings) == 0 {
		t.Fatal("Expected findings from the fixture files")
	}
	for i, result := range results[1:] {
		if !reflect.DeepEqual(result.Findings, base.Findings) {
			t.Errorf("Findings differ between 1 worker and run %d", i+2)
		}
		if !reflect.DeepEqual(result.FileScores, base.FileScores) {
			t.Errorf("FileScores differ between 1 worker and run %d", i+2)
		}
		if result.Summary.TotalFindings != base.Summary.TotalFindings {
			t.Errorf("Summary counts differ between 1 worker and run %d", i+2)
		}
	}

	// Cross-file order is lexicographic by path.
	lastPath := ""
	for _, f := range base.Findings {
		if f.File < lastPath {
			t.Fatalf("Findings not sorted by path: %s after %s", f.File, lastPath)
		}
		lastPath = f.File
	}
}

func TestRunEmptyInput(t *testing.T) {
	runner := NewRunner(defaultRegistry(t), Options{AIConfidenceThreshold: 0.7})
	result, err := runner.Run(context.Background(), &stubProvider{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Summary.FilesScanned != 0 {
		t.Errorf("Expected 0 files scanned, got %d", result.Summary.FilesScanned)
	}
	if result.Summary.MaintainabilityScore != 10.0 {
		t.Errorf("Expected neutral score 10.0, got %v", result.Summary.MaintainabilityScore)
	}
	if result.Summary.AIGeneratedPercentage != 0.0 {
		t.Errorf("Expected 0%% AI, got %v", result.Summary.AIGeneratedPercentage)
	}
	if result.Failing {
		t.Error("An empty run must not fail")
	}
	if result.Incomplete {
		t.Error("An empty run is complete")
	}
	if len(result.Findings) != 0 {
		t.Errorf("Expected no findings, got %d", len(result.Findings))
	}
}

func TestRunCancelledContext(t *testing.T) {
	units := []*source.FileUnit{
		source.NewFileUnit("a.py", "x = 1\n"),
		source.NewFileUnit("b.py", "y = 2\n"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(defaultRegistry(t), Options{Workers: 1, AIConfidenceThreshold: 0.7})
	result, err := runner.Run(ctx, &stubProvider{units: units})
	if err != nil {
		t.Fatalf("Cancellation must yield a partial result, got error: %v", err)
	}

	if !result.Incomplete {
		t.Error("Expected the result to be tagged incomplete")
	}
	if result.Summary.FilesScanned != 0 {
		t.Errorf("Expected no files analyzed after pre-run cancellation, got %d", result.Summary.FilesScanned)
	}
	if result.Languages.TotalFiles != 0 {
		t.Errorf("Language stats must cover analyzed files only, got %d", result.Languages.TotalFiles)
	}
}

func TestRunCancelledDuringDiscovery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(defaultRegistry(t), Options{AIConfidenceThreshold: 0.7})
	result, err := runner.Run(ctx, walkProvider{})
	if err != nil {
		t.Fatalf("Cancellation during discovery must yield a partial result, got error: %v", err)
	}

	if !result.Incomplete {
		t.Error("Expected the result to be tagged incomplete")
	}
	if result.Summary.FilesScanned != 0 {
		t.Errorf("Expected 0 files scanned, got %d", result.Summary.FilesScanned)
	}
	if len(result.Findings) != 0 {
		t.Errorf("Expected no findings, got %d", len(result.Findings))
	}
}

func TestRunCancelledMidRun(t *testing.T) {
	units := make([]*source.FileUnit, 8)
	for i := range units {
		units[i] = source.NewFileUnit(fmt.Sprintf("f%d.py", i), "x = 1\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The first match cancels the run while its file is still in flight,
	// then lingers so the remaining files cannot start.
	var once sync.Once
	reg := rules.NewRegistry(rules.Rule{
		ID:       "maintainability.slow-rule",
		Category: report.CategoryMaintainability,
		Severity: report.SeverityLow,
		Message:  "slow rule fired",
		Matcher: func(unit *source.FileUnit, idx *source.Index) []rules.Match {
			once.Do(cancel)
			time.Sleep(20 * time.Millisecond)
			return []rules.Match{{Offset: 0, Snippet: "x = 1"}}
		},
	})

	runner := NewRunner(reg, Options{
		Workers:               1,
		AIConfidenceThreshold: 0.7,
		SeverityThreshold:     report.SeverityLow,
	})
	result, err := runner.Run(ctx, &stubProvider{units: units})
	if err != nil {
		t.Fatalf("Mid-run cancellation must yield a partial result, got error: %v", err)
	}

	if !result.Incomplete {
		t.Error("Expected the result to be tagged incomplete")
	}
	if _, ok := result.FileScores["f0.py"]; !ok {
		t.Error("The in-flight file must complete and appear in the partial result")
	}
	if result.Summary.FilesScanned == 0 || result.Summary.FilesScanned == len(units) {
		t.Errorf("Expected a strict subset of files scanned, got %d of %d", result.Summary.FilesScanned, len(units))
	}
	if result.Languages.TotalFiles != result.Summary.FilesScanned {
		t.Errorf("Language stats cover %d files but %d were scanned", result.Languages.TotalFiles, result.Summary.FilesScanned)
	}
}

func TestRunUnreadableFileIsolated(t *testing.T) {
	units := []*source.FileUnit{
		source.NewUnreadableUnit("broken.py", context.DeadlineExceeded),
		source.NewFileUnit("fine.py", "API_KEY = \"sk_live_abcdef1234567890\"\n"),
	}

	runner := NewRunner(defaultRegistry(t), Options{
		AIConfidenceThreshold: 0.7,
		SeverityThreshold:     report.SeverityLow,
	})
	result, err := runner.Run(context.Background(), &stubProvider{units: units})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Summary.FilesScanned != 2 {
		t.Errorf("Expected both files counted, got %d", result.Summary.FilesScanned)
	}

	var sawDiagnostic, sawSecret bool
	for _, f := range result.Findings {
		switch {
		case f.File == "broken.py" && f.RuleID == ruleFileReadError:
			sawDiagnostic = true
		case f.File == "fine.py" && f.RuleID == "security.hardcoded-secret.1":
			sawSecret = true
		}
	}
	if !sawDiagnostic {
		t.Error("Expected a read diagnostic for the unreadable file")
	}
	if !sawSecret {
		t.Error("An unreadable sibling must not suppress other findings")
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	runner := NewRunner(defaultRegistry(t), Options{})
	if runner.opts.Workers <= 0 {
		t.Errorf("Expected positive default worker count, got %d", runner.opts.Workers)
	}
	if runner.opts.SeverityThreshold != report.SeverityMedium {
		t.Errorf("Expected default threshold medium, got %s", runner.opts.SeverityThreshold)
	}
	if runner.opts.FailOn != report.SeverityCritical {
		t.Errorf("Expected default fail level critical, got %s", runner.opts.FailOn)
	}
	if runner.opts.AIConfidenceThreshold != 0.7 {
		t.Errorf("Expected default AI confidence threshold 0.7, got %v", runner.opts.AIConfidenceThreshold)
	}
}

func TestRunDefaultAIConfidenceThreshold(t *testing.T) {
	provider := &stubProvider{units: []*source.FileUnit{
		source.NewFileUnit("plain.py", "total = a + b\n"),
	}}

	runner := NewRunner(defaultRegistry(t), Options{})
	result, err := runner.Run(context.Background(), provider)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Summary.AIGeneratedPercentage != 0.0 {
		t.Errorf("A file without AI markers must not count as AI-generated, got %v%%", result.Summary.AIGeneratedPercentage)
	}
}
