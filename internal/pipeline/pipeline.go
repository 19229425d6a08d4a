package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/VectorBits/Chainsight/internal/ai"
	"github.com/VectorBits/Chainsight/internal/analyzer"
	"github.com/VectorBits/Chainsight/internal/docs"
	"github.com/VectorBits/Chainsight/internal/logger"
	"github.com/VectorBits/Chainsight/internal/report"
	"github.com/VectorBits/Chainsight/internal/source"
	"github.com/VectorBits/Chainsight/internal/synthesizer"
)

// maxAnalyzeWorkers 限制并发抽取的文件数
const maxAnalyzeWorkers = 8

type Options struct {
	// Name 协议名，留空则从引用推断
	Name        string
	Description string
	// DocsURL 可选的文档页面，抓取失败不影响分析
	DocsURL string
	// Enhancer 可以为 nil，此时只产出确定性基础报告
	Enhancer *ai.Enhancer
}

type Result struct {
	Report   report.ProtocolReport
	Facts    []*analyzer.ContractFacts
	Enhanced bool
	// FilesScanned 包括被跳过的非合约文件
	FilesScanned int
}

type Pipeline struct {
	provider source.Provider
	opts     Options
}

func New(provider source.Provider, opts Options) *Pipeline {
	return &Pipeline{provider: provider, opts: opts}
}

// Run 执行完整分析：取源 -> 并发抽取事实 -> 合成基础报告 ->
// 可选增强 -> 合并。只有源获取失败才返回错误。
func (p *Pipeline) Run(ctx context.Context, ref string) (*Result, error) {
	files, err := p.provider.ListFiles(ctx, ref)
	if err != nil {
		return nil, source.Classify(err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files found at %q", ref)
	}

	facts := extractFacts(ctx, files)
	logger.Info("extracted facts for %d of %d files", len(facts), len(files))

	digest := p.fetchDocs(ctx)

	name := p.opts.Name
	if name == "" {
		name = inferName(ref, facts)
	}

	base := synthesizer.Synthesize(synthesizer.Input{
		Name:        name,
		Description: p.opts.Description,
		Facts:       facts,
		Digest:      digest,
	})

	result := &Result{
		Report:       *base,
		Facts:        facts,
		FilesScanned: len(files),
	}

	enh := p.opts.Enhancer.Enhance(ctx, ai.Context{
		Facts:  facts,
		Digest: digest,
		Base:   base,
	})
	if enh != nil {
		result.Report = ai.Merge(base, enh)
		result.Enhanced = true
	}

	return result, nil
}

// extractFacts 并发分析每个合约文件。结果按发现顺序写入固定下标，
// 保证图和清单的顺序稳定。单个文件失败只跳过不中断。
// 合约名在事实集中唯一：重名时保留发现顺序里的第一个，后续跳过。
func extractFacts(ctx context.Context, files []source.SourceFile) []*analyzer.ContractFacts {
	slots := make([]*analyzer.ContractFacts, len(files))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxAnalyzeWorkers)
	for i, file := range files {
		if file.Kind != source.KindContract {
			continue
		}
		g.Go(func() error {
			if f, ok := analyzer.Analyze(file.Path, file.Content); ok {
				slots[i] = f
			} else {
				logger.Debug("no contract declaration in %s, skipping", file.Path)
			}
			return nil
		})
	}
	_ = g.Wait()

	facts := make([]*analyzer.ContractFacts, 0, len(slots))
	seen := make(map[string]struct{}, len(slots))
	for _, f := range slots {
		if f == nil {
			continue
		}
		if _, dup := seen[f.ContractName]; dup {
			logger.Warn("duplicate contract %s in %s, keeping the first occurrence", f.ContractName, f.FileName)
			continue
		}
		seen[f.ContractName] = struct{}{}
		facts = append(facts, f)
	}
	return facts
}

func (p *Pipeline) fetchDocs(ctx context.Context) *docs.Digest {
	if p.opts.DocsURL == "" {
		return docs.Empty()
	}
	digest, err := docs.Fetch(ctx, p.opts.DocsURL)
	if err != nil {
		logger.Warn("failed to fetch docs from %s: %v", p.opts.DocsURL, err)
		return docs.Empty()
	}
	return digest
}

// inferName 从引用路径或第一个合约推断协议名
func inferName(ref string, facts []*analyzer.ContractFacts) string {
	if len(facts) > 0 && facts[0].ContractName != "" {
		return facts[0].ContractName
	}
	base := filepath.Base(strings.TrimRight(ref, "/\\"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "Unknown Protocol"
	}
	return base
}
