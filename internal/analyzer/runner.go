package analyzer

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/codeguardian/codeguardian/internal/report"
	"github.com/codeguardian/codeguardian/internal/rules"
	"github.com/codeguardian/codeguardian/internal/source"
)

// Provider yields the file units to analyze. Discovery order does not
// matter for correctness; the runner emits results sorted by path.
type Provider interface {
	Units(ctx context.Context) ([]*source.FileUnit, error)
}

type Options struct {
	// Workers bounds the number of files analyzed concurrently.
	// Zero means one worker per CPU.
	Workers int
	// AIConfidenceThreshold is the per-file confidence at which a file
	// counts as AI-generated. Zero means the default of 0.7.
	AIConfidenceThreshold float64
	// SeverityThreshold is the display filter applied to ScanResult.Findings.
	SeverityThreshold report.Severity
	// FailOn is the severity at or above which the run is classified failing.
	FailOn report.Severity
}

// Runner executes a scan: parallel per-file analysis, deterministic
// aggregation, severity policy.
type Runner struct {
	registry *rules.Registry
	opts     Options
}

func NewRunner(registry *rules.Registry, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.SeverityThreshold == "" {
		opts.SeverityThreshold = report.SeverityMedium
	}
	if opts.FailOn == "" {
		opts.FailOn = report.SeverityCritical
	}
	if opts.AIConfidenceThreshold == 0 {
		opts.AIConfidenceThreshold = 0.7
	}
	return &Runner{registry: registry, opts: opts}
}

type fileOutcome struct {
	unit     *source.FileUnit
	findings []report.Finding
}

// Run analyzes every unit from the provider. Cancellation is cooperative:
// files not yet started are skipped, in-flight files complete, and the
// result is returned as a consistent partial tagged Incomplete. Only a
// non-cancellation provider failure aborts with an error.
func (r *Runner) Run(ctx context.Context, provider Provider) (*report.ScanResult, error) {
	start := time.Now()

	units, err := provider.Units(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return r.finish(start, nil, true), nil
		}
		return nil, fmt.Errorf("failed to collect file units: %w", err)
	}

	outcomes := make(map[string]fileOutcome, len(units))
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := semaphore.NewWeighted(int64(r.opts.Workers))
	incomplete := false

	for _, unit := range units {
		if ctx.Err() != nil {
			incomplete = true
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			incomplete = true
			break
		}
		wg.Add(1)
		go func(u *source.FileUnit) {
			defer wg.Done()
			defer sem.Release(1)

			// Findings stay in this worker-local slice until the merge
			// below; no shared state is touched during matching.
			findings := AnalyzeFile(u, r.registry)

			mu.Lock()
			outcomes[u.Path] = fileOutcome{unit: u, findings: findings}
			mu.Unlock()
		}(unit)
	}

	wg.Wait()

	return r.finish(start, outcomes, incomplete), nil
}

func (r *Runner) finish(start time.Time, outcomes map[string]fileOutcome, incomplete bool) *report.ScanResult {
	result := r.assemble(outcomes)
	result.Incomplete = incomplete
	result.Timestamp = start
	result.Summary.ExecutionSeconds = time.Since(start).Seconds()
	return result
}

// assemble merges per-file outcomes in lexicographic path order, making
// the finding sequence a pure function of input and configuration
// regardless of worker completion order. Language stats cover analyzed
// files only, so a partial run never reports more files than it scanned.
func (r *Runner) assemble(outcomes map[string]fileOutcome) *report.ScanResult {
	paths := make([]string, 0, len(outcomes))
	for path := range outcomes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var allFindings []report.Finding
	analyzed := make([]*source.FileUnit, 0, len(outcomes))
	fileScores := make(map[string]report.FileScore, len(outcomes))
	for _, path := range paths {
		outcome := outcomes[path]
		allFindings = append(allFindings, outcome.findings...)
		analyzed = append(analyzed, outcome.unit)
		fileScores[path] = BuildFileScore(path, outcome.unit.LineCount, outcome.findings)
	}

	summary := BuildSummary(fileScores, allFindings, r.opts.AIConfidenceThreshold)

	return &report.ScanResult{
		Summary:    summary,
		Findings:   FilterBySeverity(allFindings, r.opts.SeverityThreshold),
		FileScores: fileScores,
		Languages:  BuildLanguageStats(analyzed),
		Failing:    Failing(summary, r.opts.FailOn),
	}
}
