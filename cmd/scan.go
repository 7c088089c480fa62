package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeguardian/codeguardian/internal/analyzer"
	"github.com/codeguardian/codeguardian/internal/config"
	"github.com/codeguardian/codeguardian/internal/git"
	"github.com/codeguardian/codeguardian/internal/logging"
	"github.com/codeguardian/codeguardian/internal/report"
	"github.com/codeguardian/codeguardian/internal/rules"
	"github.com/codeguardian/codeguardian/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan source files for security, performance, maintainability and AI-pattern findings",
	Long: `Scan a directory tree for code issues. If no path is provided, the
current directory is used. The process exits non-zero when the run is
classified as failing (by default: any critical finding).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

var (
	enableSecurity        bool
	enablePerformance     bool
	enableMaintainability bool
	enableAIDetection     bool
	severityThreshold     string
	failOnLevel           string
	excludePatterns       []string
	workerCount           int
	scanTimeout           time.Duration
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&enableSecurity, "security", false, "enable security analysis")
	scanCmd.Flags().BoolVar(&enablePerformance, "performance", false, "enable performance analysis")
	scanCmd.Flags().BoolVar(&enableMaintainability, "maintainability", false, "enable maintainability analysis")
	scanCmd.Flags().BoolVar(&enableAIDetection, "ai-detection", false, "enable AI-generated code detection")
	scanCmd.Flags().StringVar(&severityThreshold, "severity", "", "minimum severity to report (low, medium, high, critical)")
	scanCmd.Flags().StringVar(&failOnLevel, "fail-on", "", "severity at or above which the scan fails (low, medium, high, critical)")
	scanCmd.Flags().StringSliceVar(&excludePatterns, "exclude", nil, "additional exclude patterns")
	scanCmd.Flags().IntVar(&workerCount, "workers", 0, "number of parallel workers (0 = one per CPU)")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "cancel the scan after this duration (0 = no timeout)")
}

func runScan(cmd *cobra.Command, args []string) error {
	targetPath := "."
	if len(args) > 0 {
		targetPath = args[0]
	}

	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", targetPath, err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logging.InitLogger(verbose)

	cfg, err := loadScanConfig(cmd)
	if err != nil {
		return err
	}

	registry, err := rules.Build(cfg)
	if err != nil {
		return fmt.Errorf("failed to build rule registry: %w", err)
	}

	logging.Logger.Debugf("registry built with %d rules", registry.Len())

	result, err := executeScan(absPath, cfg, registry)
	if err != nil {
		return err
	}

	stampRepositoryMetadata(result, absPath)
	result.Version = Version

	if err := outputResult(cmd, result); err != nil {
		return err
	}

	if result.Failing {
		os.Exit(1)
	}
	return nil
}

func loadScanConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	applyAnalyzerFlags(cfg)

	if severityThreshold != "" {
		cfg.Scan.SeverityThreshold = severityThreshold
	}
	if failOnLevel != "" {
		cfg.Scan.FailOn = failOnLevel
	}
	if workerCount > 0 {
		cfg.Scan.Workers = workerCount
	}
	cfg.Scan.ExcludePatterns = append(cfg.Scan.ExcludePatterns, excludePatterns...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyAnalyzerFlags narrows the run to the named analyzers. Naming none
// leaves the configuration untouched; naming any disables the rest.
func applyAnalyzerFlags(cfg *config.Config) {
	if !enableSecurity && !enablePerformance && !enableMaintainability && !enableAIDetection {
		return
	}
	cfg.Security.Enabled = enableSecurity
	cfg.Performance.Enabled = enablePerformance
	cfg.Maintainability.Enabled = enableMaintainability
	cfg.AIDetection.Enabled = enableAIDetection
}

func executeScan(absPath string, cfg *config.Config, registry *rules.Registry) (*report.ScanResult, error) {
	fileScanner, err := scanner.NewFileScanner(absPath, cfg.Scan.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to create file scanner: %w", err)
	}

	threshold, err := report.ParseSeverity(cfg.Scan.SeverityThreshold)
	if err != nil {
		return nil, err
	}
	failOn, err := report.ParseSeverity(cfg.Scan.FailOn)
	if err != nil {
		return nil, err
	}

	runner := analyzer.NewRunner(registry, analyzer.Options{
		Workers:               cfg.Scan.Workers,
		AIConfidenceThreshold: cfg.AIDetection.ConfidenceThreshold,
		SeverityThreshold:     threshold,
		FailOn:                failOn,
	})

	ctx := context.Background()
	if scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, scanTimeout)
		defer cancel()
	}

	logging.Logger.Debugf("scanning %s", absPath)

	result, err := runner.Run(ctx, fileScanner)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if result.Incomplete {
		logging.Logger.Warnf("scan cancelled before completion; reporting partial results")
	}
	return result, nil
}

func stampRepositoryMetadata(result *report.ScanResult, absPath string) {
	result.Repository = absPath

	if !git.IsGitRepository(absPath) {
		return
	}
	repo, err := git.OpenRepository(absPath)
	if err != nil {
		return
	}
	if branch, err := repo.GetCurrentBranch(); err == nil {
		result.Branch = branch
	}
	if commit, err := repo.GetCurrentCommit(); err == nil {
		result.CommitHash = commit
	}
}

func outputResult(cmd *cobra.Command, result *report.ScanResult) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	formatter := report.GetFormatter(formatFlag)

	output, err := formatter.Format(result)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath != "" {
		if err := writeOutputToFile(output, outputPath); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		logging.Logger.Infof("report written to %s", outputPath)
	} else {
		fmt.Print(output)
	}

	return nil
}

func writeOutputToFile(content, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(content), 0644)
}
