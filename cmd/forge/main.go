// forge optimizes skill instructions for Gemini-backed coding personas.
//
// It loads a skill's adapter.md, runs a breadth/depth instruction search
// against a story trainset scored by regex heuristics, and writes the
// evolved instruction back with versioned copies and a diff.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"skillforge/internal/config"
	"skillforge/internal/example"
	"skillforge/internal/llm"
	"skillforge/internal/logging"
	"skillforge/internal/optimizer"
	"skillforge/internal/reflection"
	"skillforge/internal/skill"
)

var (
	skillName    string
	category     string
	repoRoot     string
	rollouts     int
	outputDir    string
	geminiBinary string
	verbose      bool
	dryRun       bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "skillforge - instruction optimizer for Gemini coding personas",
	Long: `skillforge evolves the natural-language instruction (adapter.md) that
drives a code-generation or test-documentation persona.

Each run executes the persona against a set of stories, scores the
outputs with deterministic heuristics, and asks a reflection model to
propose improved instructions. The best instruction wins and is written
back to adapter.md with a versioned copy and a diff.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(repoRoot); err != nil {
			logger.Warn("file logging unavailable", zap.Error(err))
		}
		logging.Boot("forge starting: skill=%s category=%s rollouts=%d", skillName, category, rollouts)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runOptimize,
}

func init() {
	rootCmd.Flags().StringVarP(&skillName, "skill", "s", "", "Skill name (backend-engineer, qa-engineer)")
	rootCmd.Flags().StringVarP(&category, "category", "c", "", "Story category to optimize against (state-bridge, oauth, cli, translation)")
	rootCmd.Flags().StringVarP(&repoRoot, "repo-root", "r", ".", "Repository root directory")
	rootCmd.Flags().IntVarP(&rollouts, "rollouts", "n", 10, "Maximum number of rollouts")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "optimization_results", "Output directory for results")
	rootCmd.Flags().StringVar(&geminiBinary, "gemini-binary", "", "Path to Gemini CLI binary (default from config)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate setup without running optimization")

	rootCmd.MarkFlagRequired("skill")
	rootCmd.MarkFlagRequired("category")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	if !skill.IsValidCategory(category) {
		return fmt.Errorf("invalid category %q (valid: %v)", category, skill.ValidCategories())
	}

	cfg, err := config.Load(filepath.Join(repoRoot, ".forge", "config.yaml"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if geminiBinary != "" {
		cfg.Gemini.Binary = geminiBinary
	}

	if dryRun {
		return runDryRun()
	}

	client, err := buildClient(cmd, cfg)
	if err != nil {
		return err
	}
	logger.Info("backend selected", zap.String("client", client.Name()))

	copro := optimizer.NewCopro(reflection.NewModel(client))
	copro.Breadth = cfg.Optimizer.Breadth
	copro.Depth = cfg.Optimizer.Depth

	store, err := optimizer.NewTrialStore(filepath.Join(repoRoot, ".forge"))
	if err != nil {
		logger.Warn("trial store unavailable, continuing without it", zap.Error(err))
	} else {
		copro.Recorder = store
		defer store.Close()
	}

	driver := optimizer.NewDriver(client, copro)
	summary, err := driver.Run(cmd.Context(), optimizer.DriverOptions{
		Skill:       skillName,
		Category:    category,
		RepoRoot:    repoRoot,
		MaxRollouts: rollouts,
		OutputDir:   outputDir,
		Verbose:     verbose,
	})
	if err != nil {
		return err
	}

	logger.Info("optimization complete",
		zap.String("skill", summary.Skill),
		zap.String("optimizer", summary.Optimizer),
		zap.Bool("changed", summary.Changed),
		zap.Int("baseline_chars", summary.BaselineChars),
		zap.Int("optimized_chars", summary.OptimizedChars))

	if summary.Changed {
		fmt.Printf("Instruction evolved (%d -> %d chars)\n", summary.BaselineChars, summary.OptimizedChars)
	} else {
		fmt.Println("Instruction unchanged (baseline optimal)")
	}
	return nil
}

// buildClient picks the API backend when a key is configured, the CLI
// subprocess backend otherwise.
func buildClient(cmd *cobra.Command, cfg *config.Config) (llm.Client, error) {
	if cfg.UseAPI() {
		client, err := llm.NewAPIClient(cmd.Context(), cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.GetGenerationTimeout())
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	opts := []llm.CLIOption{
		llm.WithWorkDir(repoRoot),
		llm.WithTimeout(cfg.GetGenerationTimeout()),
	}
	if cfg.Gemini.Model != "" {
		opts = append(opts, llm.WithModel(cfg.Gemini.Model))
	}
	return llm.NewCLIClient(cfg.Gemini.Binary, opts...), nil
}

// runDryRun validates the repository layout without calling any model.
func runDryRun() error {
	fmt.Println("Dry run: validating setup...")

	skillDir := filepath.Join(repoRoot, "skills", skillName)
	adapterPath := filepath.Join(skillDir, skill.AdapterFile)
	skillPath := filepath.Join(skillDir, skill.SkillFile)

	switch {
	case fileExists(adapterPath):
		fmt.Printf("✓ adapter.md found: %s (mutable)\n", adapterPath)
	case fileExists(skillPath):
		fmt.Printf("✓ SKILL.md found: %s (will create adapter.md)\n", skillPath)
	default:
		fmt.Printf("✗ No skill found in: %s\n", skillDir)
		return fmt.Errorf("skill not found: %s", skillDir)
	}

	stories, err := example.LoadStories(filepath.Join(repoRoot, "stories"), category)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Found %d stories in %s\n", len(stories), category)

	exampleCategory := skill.ExampleCategoryFor(category)
	examples, err := example.Load(filepath.Join(repoRoot, "golden-examples"), exampleCategory, "")
	if err != nil {
		return err
	}
	fmt.Printf("✓ Found %d golden examples in %s\n", len(examples), exampleCategory)

	fmt.Println("\nDry run complete. Ready to optimize.")
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
