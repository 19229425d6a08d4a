// Package synthesizer 把合约事实与文档摘要按固定确定性规则合成
// 基础 ProtocolReport。所有启发式都是有序规则表，见 rules.go。
package synthesizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/VectorBits/Chainsight/internal/analyzer"
	"github.com/VectorBits/Chainsight/internal/diagram"
	"github.com/VectorBits/Chainsight/internal/docs"
	"github.com/VectorBits/Chainsight/internal/report"
)

type Input struct {
	Name        string
	Description string
	Facts       []*analyzer.ContractFacts
	Digest      *docs.Digest
}

// Synthesize 生成基础报告。纯函数：同样输入永远得到同样的报告
// （时间戳除外），事实列表的顺序只影响图和合约清单的展示顺序。
func Synthesize(in Input) *report.ProtocolReport {
	if in.Digest == nil {
		in.Digest = docs.Empty()
	}
	s := BuildSignals(in.Description, in.Facts, in.Digest)
	category := Classify(s.Corpus)

	return &report.ProtocolReport{
		Summary:      summarize(in, s, category),
		Architecture: architecture(in, s),
		Security:     security(in, s),
		Timestamp:    time.Now().UTC(),
	}
}

func summarize(in Input, s Signals, category string) report.ProtocolSummary {
	return report.ProtocolSummary{
		Name:            in.Name,
		Description:     in.Description,
		Category:        category,
		ComplexityScore: analyzer.Clamp(s.AvgComplexity, 0, 10),
		Overview:        overviewText(in, s, category),
		KeyFeatures:     keyFeatures(s, category),
		Fundamentals:    fundamentalsText(in, s, category),
		EconomicModel:   economicModelFor(category),
	}
}

func architecture(in Input, s Signals) report.Architecture {
	contracts := make([]report.ContractOverview, 0, len(in.Facts))
	depSet := map[string]struct{}{}
	deps := []string{}
	for _, f := range in.Facts {
		contracts = append(contracts, report.ContractOverview{
			Name:          f.ContractName,
			FileName:      f.FileName,
			FunctionCount: len(f.Functions),
			Purpose:       purposeFor(f.ContractName),
		})
		for _, imp := range f.Imports {
			if _, ok := depSet[imp]; ok {
				continue
			}
			depSet[imp] = struct{}{}
			deps = append(deps, imp)
		}
	}

	return report.Architecture{
		Contracts:          contracts,
		Dependencies:       deps,
		DataFlowDiagram:    diagram.DataFlow(in.Facts),
		SequenceDiagram:    diagram.Sequence(in.Facts),
		InheritanceDiagram: diagram.Inheritance(in.Facts),
		DesignPatterns:     evalTextRules(PatternRules, s, []string{"Monolithic"}),
		GasAnalysis:        gasAnalysis(s),
	}
}

func security(in Input, s Signals) report.SecurityAssessment {
	return report.SecurityAssessment{
		Rating:          SecurityRating(s),
		BusinessLogic:   businessLogicText(in, s),
		Strengths:       evalTextRules(StrengthRules, s, DefaultStrengths),
		Findings:        evalFindingRules(FindingRules, s),
		Recommendations: evalTextRules(RecommendationRules, s, DefaultRecommendations),
		AuditStatus:     auditStatus(s),
	}
}

func overviewText(in Input, s Signals, category string) string {
	name := in.Name
	if name == "" {
		name = "The protocol"
	}
	return fmt.Sprintf("%s is classified as a %s spanning %d analyzed contract(s) with an average complexity of %.1f/10.",
		name, category, len(in.Facts), s.AvgComplexity)
}

func fundamentalsText(in Input, s Signals, category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The protocol operates as a %s.", category)
	if s.HasAccessControl {
		b.WriteString(" Privileged operations are gated behind access-control modifiers.")
	}
	if s.HasPause {
		b.WriteString(" An emergency pause path exists for incident response.")
	}
	if len(in.Digest.Sections) > 0 {
		fmt.Fprintf(&b, " The documentation covers: %s.", strings.Join(firstN(in.Digest.Sections, 5), ", "))
	}
	return b.String()
}

func businessLogicText(in Input, s Signals) string {
	totalFns := 0
	for _, f := range in.Facts {
		totalFns += len(f.Functions)
	}
	return fmt.Sprintf("Across %d contract(s) the protocol exposes %d function(s). "+
		"Heuristic review focuses on access control, value transfer paths, and operational safeguards; "+
		"it does not verify business-logic correctness.", len(in.Facts), totalFns)
}

func auditStatus(s Signals) string {
	if strings.Contains(s.Corpus, "audit") {
		return "Documentation references an audit; verify the report and its provenance independently"
	}
	return "No public audit information detected"
}

func keyFeatures(s Signals, category string) []string {
	features := []string{category + " functionality"}
	if s.HasAccessControl {
		features = append(features, "Role-based permissions")
	}
	if s.HasPause {
		features = append(features, "Emergency pause")
	}
	if s.HasEvents {
		features = append(features, "Event instrumentation")
	}
	if s.HasUpgradeable {
		features = append(features, "Upgradeable deployment")
	}
	return features
}

func gasAnalysis(s Signals) report.GasAnalysis {
	ga := report.GasAnalysis{Concerns: []string{}, Optimizations: []string{}}
	switch {
	case s.AvgComplexity > complexityPenaltyThreshold:
		ga.Estimate = "High: complex call paths suggest expensive state interactions"
	case s.AvgComplexity > NeutralComplexity:
		ga.Estimate = "Moderate: typical for protocols of this size"
	default:
		ga.Estimate = "Low: compact contracts with short call paths"
	}
	for _, f := range s.Facts {
		if len(f.Functions) > 10 {
			ga.Concerns = append(ga.Concerns, fmt.Sprintf("%s exposes %d functions; dispatch and storage layout deserve review", f.ContractName, len(f.Functions)))
		}
	}
	ga.Optimizations = append(ga.Optimizations,
		"Cache storage reads in memory within loops",
		"Prefer custom errors over revert strings",
	)
	return ga
}

// purposeFor 按命名惯例猜测合约职责，猜不到就给通用描述
func purposeFor(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "vault"):
		return "Asset custody and accounting"
	case strings.Contains(lower, "factory"):
		return "Deploys and tracks child contracts"
	case strings.Contains(lower, "router"):
		return "Entry point routing user operations"
	case strings.Contains(lower, "pool") || strings.Contains(lower, "pair"):
		return "Liquidity pool holding paired assets"
	case strings.Contains(lower, "token") || strings.Contains(lower, "erc20"):
		return "Token implementation"
	case strings.Contains(lower, "oracle"):
		return "External data feed"
	case strings.Contains(lower, "governance") || strings.Contains(lower, "governor"):
		return "On-chain governance"
	case strings.Contains(lower, "staking") || strings.Contains(lower, "reward"):
		return "Staking and reward distribution"
	default:
		return "Core protocol logic"
	}
}

func economicModelFor(category string) report.EconomicModel {
	switch category {
	case "Decentralized Exchange":
		return report.EconomicModel{
			Model:          "Trading-fee driven",
			TokenUtility:   "Fee discounts and liquidity incentives",
			ValueAccrual:   "Swap fees accrue to liquidity providers and the protocol treasury",
			Sustainability: "Depends on sustained trading volume",
		}
	case "Lending Protocol":
		return report.EconomicModel{
			Model:          "Interest-rate spread",
			TokenUtility:   "Collateral and governance weight",
			ValueAccrual:   "Spread between borrow and supply rates funds reserves",
			Sustainability: "Depends on healthy collateralization and liquidation efficiency",
		}
	case "Yield / Staking Protocol":
		return report.EconomicModel{
			Model:          "Emission-subsidized yield",
			TokenUtility:   "Staking weight and reward boosts",
			ValueAccrual:   "Protocol revenue is distributed to stakers",
			Sustainability: "Depends on emission schedule versus real revenue",
		}
	default:
		return report.EconomicModel{
			Model:          "Protocol-fee driven",
			TokenUtility:   "Access and governance",
			ValueAccrual:   "Usage fees accrue to the treasury",
			Sustainability: "Depends on sustained protocol usage",
		}
	}
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
