package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/VectorBits/Chainsight/internal/ai"
	"github.com/VectorBits/Chainsight/internal/logger"
	"github.com/VectorBits/Chainsight/internal/pipeline"
	"github.com/VectorBits/Chainsight/internal/report"
	"github.com/VectorBits/Chainsight/internal/source"
)

var (
	protocolName string
	protocolDesc string
	docsURL      string
	enhance      bool
	aiProvider   string
	outDir       string
	dbPath       string
	noStore      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <dir|file|address>",
	Short: "Analyze a protocol from a local directory, a .sol file, or a verified contract address",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&protocolName, "name", "n", "", "protocol name (default: inferred from the source)")
	analyzeCmd.Flags().StringVarP(&protocolDesc, "description", "d", "", "short protocol description, feeds category detection")
	analyzeCmd.Flags().StringVar(&docsURL, "docs", "", "documentation URL to fold into the analysis")
	analyzeCmd.Flags().BoolVar(&enhance, "enhance", false, "run the AI enhancement pass (requires an API key)")
	analyzeCmd.Flags().StringVar(&aiProvider, "provider", "", "AI provider override (openai, deepseek, local-llm, ...)")
	analyzeCmd.Flags().StringVarP(&outDir, "out", "o", "", "report output directory (default from config)")
	analyzeCmd.Flags().StringVar(&dbPath, "db", "", "run database path (default from config)")
	analyzeCmd.Flags().BoolVar(&noStore, "no-store", false, "skip recording the run in the local database")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ref := args[0]
	ctx := cmd.Context()

	provider, err := source.Resolve(ref, cfg.Etherscan)
	if err != nil {
		return err
	}

	enhancer, cleanup, err := buildEnhancer()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("🔍 Analyzing %s...\n", ref)
	p := pipeline.New(provider, pipeline.Options{
		Name:        protocolName,
		Description: protocolDesc,
		DocsURL:     docsURL,
		Enhancer:    enhancer,
	})
	result, err := p.Run(ctx, ref)
	if err != nil {
		return err
	}

	rep := result.Report
	fmt.Printf("📄 %s  |  %s  |  complexity %.1f  |  rating %s\n",
		rep.Summary.Name, rep.Summary.Category, rep.Summary.ComplexityScore, rep.Security.Rating)
	if result.Enhanced {
		fmt.Println("✨ Enhanced with AI analysis")
	}

	content, err := report.NewMarkdownGenerator().Generate(&rep)
	if err != nil {
		return err
	}

	dir := outDir
	if dir == "" {
		dir = cfg.ReportDir
	}
	path, err := report.NewFileStorage(dir).Save(&rep, content)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Report saved to %s\n", path)

	if !noStore {
		database := dbPath
		if database == "" {
			database = cfg.DatabasePath
		}
		store, err := report.NewRunStore(database)
		if err != nil {
			logger.Warn("failed to open run database: %v", err)
			return nil
		}
		defer store.Close()
		if _, err := store.Record(ref, &rep, path, result.Enhanced); err != nil {
			logger.Warn("failed to record analysis run: %v", err)
		}
	}
	return nil
}

// buildEnhancer 按配置构造增强器。未开启时返回 nil，流水线照常工作。
func buildEnhancer() (*ai.Enhancer, func(), error) {
	noop := func() {}
	if !enhance {
		return nil, noop, nil
	}

	provider := cfg.AI.Provider
	if aiProvider != "" {
		provider = aiProvider
	}
	client, err := ai.NewClient(ai.ClientConfig{
		Provider: provider,
		APIKey:   cfg.AI.APIKey,
		BaseURL:  cfg.AI.BaseURL,
		Model:    cfg.AI.Model,
		Timeout:  time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  AI enhancement unavailable: %v\n", err)
		return nil, noop, nil
	}

	enhancer := ai.NewEnhancer(client, ai.EnhancerConfig{
		Enabled:        true,
		Budget:         time.Duration(cfg.EnhanceBudgetSeconds) * time.Second,
		RequestsPerMin: cfg.AI.RequestsPerMin,
	})
	return enhancer, func() { _ = client.Close() }, nil
}
