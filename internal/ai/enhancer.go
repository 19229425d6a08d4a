package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/VectorBits/Chainsight/internal/analyzer"
	"github.com/VectorBits/Chainsight/internal/docs"
	"github.com/VectorBits/Chainsight/internal/logger"
	"github.com/VectorBits/Chainsight/internal/report"
)

// Context 一次增强调用的输入
type Context struct {
	Facts  []*analyzer.ContractFacts
	Digest *docs.Digest
	Base   *report.ProtocolReport
}

type EnhancerConfig struct {
	// Enabled 显式能力开关，由构造方传入，核心逻辑不读环境变量
	Enabled bool
	// Budget 整个增强阶段的墙钟预算，超时丢弃在途调用
	Budget         time.Duration
	RequestsPerMin int
}

// Enhancer 向外部生成式服务并发发起 summary/architecture/security
// 三个子调用。任何一个失败只意味着对应的节缺失，整体从不报错：
// 失败降级为确定性基础报告。
type Enhancer struct {
	client  Client
	limiter *rate.Limiter
	budget  time.Duration
	enabled bool
}

func NewEnhancer(client Client, cfg EnhancerConfig) *Enhancer {
	if cfg.Budget <= 0 {
		cfg.Budget = 90 * time.Second
	}
	if cfg.RequestsPerMin <= 0 {
		cfg.RequestsPerMin = 20
	}
	return &Enhancer{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMin)/60.0), 3),
		budget:  cfg.Budget,
		enabled: cfg.Enabled && client != nil,
	}
}

// Enhance 返回 nil 表示没有可用的增强（关闭、超时或全部失败），
// 调用方直接使用基础报告。三个子调用彼此独立，各写各的字段。
func (e *Enhancer) Enhance(ctx context.Context, in Context) *EnhancementReport {
	if e == nil || !e.enabled {
		return nil
	}

	budgetCtx, cancel := context.WithTimeout(ctx, e.budget)
	defer cancel()

	var enh EnhancementReport
	g, gctx := errgroup.WithContext(budgetCtx)

	g.Go(func() error {
		if resp, err := e.call(gctx, buildSummaryPrompt(in)); err != nil {
			logger.Debug("summary enhancement skipped: %v", err)
		} else {
			enh.Summary = ParseSummary(resp)
		}
		return nil
	})
	g.Go(func() error {
		if resp, err := e.call(gctx, buildArchitecturePrompt(in)); err != nil {
			logger.Debug("architecture enhancement skipped: %v", err)
		} else {
			enh.Architecture = ParseArchitecture(resp)
		}
		return nil
	})
	g.Go(func() error {
		if resp, err := e.call(gctx, buildSecurityPrompt(in)); err != nil {
			logger.Debug("security enhancement skipped: %v", err)
		} else {
			enh.Security = ParseSecurity(resp)
		}
		return nil
	})

	_ = g.Wait()

	if enh.Summary == nil && enh.Architecture == nil && enh.Security == nil {
		logger.Warn("enhancement phase produced nothing, falling back to base report")
		return nil
	}
	return &enh
}

func (e *Enhancer) call(ctx context.Context, prompt string) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return e.client.Analyze(ctx, prompt)
}

const maxPromptFacts = 32 * 1024

func factsJSON(in Context) string {
	data, err := json.Marshal(in.Facts)
	if err != nil {
		return "[]"
	}
	if len(data) > maxPromptFacts {
		data = data[:maxPromptFacts]
	}
	return string(data)
}

func docsExcerpt(in Context) string {
	if in.Digest == nil {
		return ""
	}
	text := in.Digest.Text
	if len(text) > 4096 {
		text = text[:4096]
	}
	return text
}

func buildSummaryPrompt(in Context) string {
	return fmt.Sprintf(`You are a blockchain protocol analyst. Refine the protocol summary below using the extracted contract facts and documentation.

Contract facts:
%s

Documentation excerpt:
%s

Output ONLY one JSON object:
{"description":"...","overview":"...","fundamentals":"...","key_features":["..."],"economic_model":{"model":"...","token_utility":"...","value_accrual":"...","sustainability":"..."}}
No markdown, no extra text. Use [] for empty lists.`, factsJSON(in), docsExcerpt(in))
}

func buildArchitecturePrompt(in Context) string {
	return fmt.Sprintf(`You are a smart contract architect. Identify design patterns and gas characteristics from the contract facts below.

Contract facts:
%s

Output ONLY one JSON object:
{"design_patterns":["..."],"gas_analysis":{"estimate":"...","concerns":["..."],"optimizations":["..."]}}
No markdown, no extra text. Use [] for empty lists.`, factsJSON(in))
}

func buildSecurityPrompt(in Context) string {
	return fmt.Sprintf(`You are a smart contract security auditor. Review the extracted contract facts and produce a security assessment.

Contract facts:
%s

Documentation excerpt:
%s

Output ONLY one JSON object:
{"business_logic":"...","strengths":["..."],"findings":[{"name":"...","description":"...","severity":"Critical|High|Medium|Low","exploitability":"High|Medium|Low","category":"...","mitigation":"..."}],"recommendations":["..."]}
No markdown, no extra text. Use [] for empty lists.`, factsJSON(in), docsExcerpt(in))
}
