package synthesizer

import (
	"strings"

	"github.com/VectorBits/Chainsight/internal/analyzer"
	"github.com/VectorBits/Chainsight/internal/docs"
	"github.com/VectorBits/Chainsight/internal/report"
)

// Signals 一次性探测结果，后面的规则表都在它上面独立求值。
// 先聚合再判定，避免每条规则各扫一遍事实。
type Signals struct {
	Corpus           string // 小写的文档正文 + 协议描述
	Facts            []*analyzer.ContractFacts
	AvgComplexity    float64
	HasAccessControl bool
	HasEvents        bool
	HasPause         bool
	HasPayable       bool
	HasReentrancy    bool
	HasUpgradeable   bool
	DocsPresent      bool
	DocsMentionPause bool
}

// 没有任何事实时的中性复杂度默认值
const NeutralComplexity = 5.0

var accessControlMarkers = []string{"onlyowner", "onlyrole", "onlyadmin", "ownable", "accesscontrol", "auth"}

// BuildSignals 聚合所有合约事实与文档摘要
func BuildSignals(description string, facts []*analyzer.ContractFacts, digest *docs.Digest) Signals {
	if digest == nil {
		digest = docs.Empty()
	}
	s := Signals{
		Corpus:      strings.ToLower(digest.Text + " " + description),
		Facts:       facts,
		DocsPresent: strings.TrimSpace(digest.Text) != "",
	}
	s.DocsMentionPause = strings.Contains(s.Corpus, "pause") || strings.Contains(s.Corpus, "circuit breaker")

	if len(facts) == 0 {
		s.AvgComplexity = NeutralComplexity
		return s
	}

	total := 0.0
	for _, f := range facts {
		total += f.ComplexityScore
		if len(f.Events) > 0 {
			s.HasEvents = true
		}

		marks := strings.ToLower(strings.Join(f.Modifiers, " ") + " " + strings.Join(f.Inheritance, " "))
		for _, fn := range f.Functions {
			marks += " " + strings.ToLower(strings.Join(fn.Modifiers, " "))
			if fn.Mutability == analyzer.MutabilityPayable {
				s.HasPayable = true
			}
		}
		if f.HasFunction("pause") || f.HasFunction("unpause") || f.HasFunction("emergencyStop") {
			s.HasPause = true
		}
		for _, marker := range accessControlMarkers {
			if strings.Contains(marks, marker) {
				s.HasAccessControl = true
				break
			}
		}
		if strings.Contains(marks, "pausable") || strings.Contains(marks, "whennotpaused") {
			s.HasPause = true
		}
		if strings.Contains(marks, "reentrancyguard") || strings.Contains(marks, "nonreentrant") {
			s.HasReentrancy = true
		}
		if strings.Contains(marks, "upgradeable") || strings.Contains(marks, "uups") || strings.Contains(marks, "proxy") {
			s.HasUpgradeable = true
		}
	}
	s.AvgComplexity = total / float64(len(facts))
	return s
}

// CategoryRule 关键词组 → 分类。表是有序的，first-match-wins：
// 输入经常同时命中多组关键词，顺序本身就是契约的一部分。
type CategoryRule struct {
	Keywords []string
	Category string
}

var CategoryRules = []CategoryRule{
	{[]string{"exchange", "swap", "amm", "dex"}, "Decentralized Exchange"},
	{[]string{"lending", "borrow", "collateral"}, "Lending Protocol"},
	{[]string{"derivative", "perpetual", "futures", "options"}, "Derivatives Protocol"},
	{[]string{"yield", "staking", "farming"}, "Yield / Staking Protocol"},
	{[]string{"governance", "dao", "voting"}, "Governance / DAO"},
	{[]string{"bridge", "cross-chain", "crosschain"}, "Cross-chain Bridge"},
	{[]string{"nft", "erc721", "erc-721"}, "NFT Protocol"},
}

const DefaultCategory = "DeFi Protocol"

// Classify 按固定优先级表对语料分类
func Classify(corpus string) string {
	corpus = strings.ToLower(corpus)
	for _, rule := range CategoryRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(corpus, kw) {
				return rule.Category
			}
		}
	}
	return DefaultCategory
}

// TextRule 独立求值的 (探测器, 文本) 规则，未命中不产出
type TextRule struct {
	Name   string
	Detect func(Signals) bool
	Text   string
}

var StrengthRules = []TextRule{
	{"access-control", func(s Signals) bool { return s.HasAccessControl },
		"Role-based access control restricts privileged operations"},
	{"pause-mechanism", func(s Signals) bool { return s.HasPause },
		"Emergency pause mechanism can halt the protocol during an incident"},
	{"event-instrumentation", func(s Signals) bool { return s.HasEvents },
		"State changes emit events, enabling off-chain monitoring"},
	{"reentrancy-guard", func(s Signals) bool { return s.HasReentrancy },
		"Reentrancy guards protect external entry points"},
	{"compact-surface", func(s Signals) bool { return len(s.Facts) > 0 && s.AvgComplexity < 5 },
		"Compact codebase keeps the audit surface small"},
	{"documented", func(s Signals) bool { return s.DocsPresent },
		"Public documentation describes the intended protocol behavior"},
}

var DefaultStrengths = []string{"Standard contract structure with no obvious red flags"}

// FindingRule 未命中不产出；命中时给出完整的结构化发现
type FindingRule struct {
	Name    string
	Detect  func(Signals) bool
	Finding report.SecurityFinding
}

var FindingRules = []FindingRule{
	{
		Name:   "missing-access-control",
		Detect: func(s Signals) bool { return len(s.Facts) > 0 && !s.HasAccessControl },
		Finding: report.SecurityFinding{
			Name:           "Missing access control markers",
			Description:    "No ownership or role-based modifiers were detected on any contract; privileged functions may be callable by anyone",
			Severity:       report.SeverityHigh,
			Exploitability: report.ExploitabilityHigh,
			Category:       "Access Control",
			Mitigation:     "Guard privileged functions with Ownable or AccessControl role checks",
		},
	},
	{
		Name:   "unguarded-value-transfer",
		Detect: func(s Signals) bool { return s.HasPayable && !s.HasReentrancy },
		Finding: report.SecurityFinding{
			Name:           "Payable entry points without reentrancy guard",
			Description:    "Contracts accept value but no reentrancy guard marker was detected on the analyzed surface",
			Severity:       report.SeverityMedium,
			Exploitability: report.ExploitabilityMedium,
			Category:       "Reentrancy",
			Mitigation:     "Apply the checks-effects-interactions pattern and a nonReentrant modifier on value-moving functions",
		},
	},
	{
		Name:   "no-circuit-breaker",
		Detect: func(s Signals) bool { return len(s.Facts) > 0 && !s.HasPause },
		Finding: report.SecurityFinding{
			Name:           "No circuit breaker",
			Description:    "No pause or emergency-stop mechanism was detected; the protocol cannot be halted during an active exploit",
			Severity:       report.SeverityMedium,
			Exploitability: report.ExploitabilityLow,
			Category:       "Operational",
			Mitigation:     "Add a Pausable guard on state-changing entry points",
		},
	},
	{
		Name:   "elevated-complexity",
		Detect: func(s Signals) bool { return s.AvgComplexity > complexityPenaltyThreshold },
		Finding: report.SecurityFinding{
			Name:           "Elevated average complexity",
			Description:    "Average contract complexity exceeds the review threshold, raising the likelihood of latent logic errors",
			Severity:       report.SeverityMedium,
			Exploitability: report.ExploitabilityLow,
			Category:       "Code Quality",
			Mitigation:     "Split large contracts into focused modules and expand unit coverage",
		},
	},
	{
		Name:   "missing-events",
		Detect: func(s Signals) bool { return len(s.Facts) > 0 && !s.HasEvents },
		Finding: report.SecurityFinding{
			Name:           "Missing event instrumentation",
			Description:    "No events were detected; off-chain monitoring cannot observe state transitions",
			Severity:       report.SeverityLow,
			Exploitability: report.ExploitabilityLow,
			Category:       "Observability",
			Mitigation:     "Emit events on all state-changing operations",
		},
	},
	{
		Name:   "docs-pause-mismatch",
		Detect: func(s Signals) bool { return s.DocsMentionPause && len(s.Facts) > 0 && !s.HasPause },
		Finding: report.SecurityFinding{
			Name:           "Documentation mentions pausing but no pause mechanism found",
			Description:    "The documentation references a pause or circuit-breaker capability that was not detected in the analyzed source",
			Severity:       report.SeverityMedium,
			Exploitability: report.ExploitabilityLow,
			Category:       "Documentation",
			Mitigation:     "Reconcile the documentation with the deployed code or implement the documented mechanism",
			DocMismatch:    true,
		},
	},
}

var DefaultFindings = []report.SecurityFinding{{
	Name:           "Heuristic baseline only",
	Description:    "No specific weaknesses were detected by the lexical heuristics; this is not a substitute for a manual audit",
	Severity:       report.SeverityMedium,
	Exploitability: report.ExploitabilityLow,
	Category:       "General",
	Mitigation:     "Commission an independent security audit",
}}

var RecommendationRules = []TextRule{
	{"add-access-control", func(s Signals) bool { return len(s.Facts) > 0 && !s.HasAccessControl },
		"Adopt a standard access-control library (Ownable or AccessControl) for privileged operations"},
	{"add-pause", func(s Signals) bool { return len(s.Facts) > 0 && !s.HasPause },
		"Add an emergency pause mechanism to state-changing entry points"},
	{"reduce-complexity", func(s Signals) bool { return s.AvgComplexity > complexityPenaltyThreshold },
		"Refactor high-complexity contracts into smaller, independently testable modules"},
	{"publish-docs", func(s Signals) bool { return !s.DocsPresent },
		"Publish protocol documentation covering roles, invariants, and upgrade procedures"},
	{"monitor-events", func(s Signals) bool { return len(s.Facts) > 0 && !s.HasEvents },
		"Emit events for every state transition and wire them into monitoring"},
}

var DefaultRecommendations = []string{"Commission an independent security audit before mainnet deployment"}

var PatternRules = []TextRule{
	{"access-control", func(s Signals) bool { return s.HasAccessControl }, "Access Control"},
	{"circuit-breaker", func(s Signals) bool { return s.HasPause }, "Circuit Breaker"},
	{"reentrancy-guard", func(s Signals) bool { return s.HasReentrancy }, "Reentrancy Guard"},
	{"upgradeable-proxy", func(s Signals) bool { return s.HasUpgradeable }, "Upgradeable Proxy"},
	{"factory", func(s Signals) bool { return anyContractNameContains(s, "factory") }, "Factory"},
	{"token-standard", func(s Signals) bool {
		return anyInheritanceContains(s, "erc20") || anyInheritanceContains(s, "erc721")
	}, "Token Standard"},
}

func anyContractNameContains(s Signals, sub string) bool {
	for _, f := range s.Facts {
		if strings.Contains(strings.ToLower(f.ContractName), sub) {
			return true
		}
	}
	return false
}

func anyInheritanceContains(s Signals, sub string) bool {
	for _, f := range s.Facts {
		for _, parent := range f.Inheritance {
			if strings.Contains(strings.ToLower(parent), sub) {
				return true
			}
		}
	}
	return false
}

// evalTextRules 依序求值，空结果换上固定默认列表
func evalTextRules(rules []TextRule, s Signals, defaults []string) []string {
	out := []string{}
	for _, rule := range rules {
		if rule.Detect(s) {
			out = append(out, rule.Text)
		}
	}
	if len(out) == 0 {
		out = append(out, defaults...)
	}
	return out
}

func evalFindingRules(rules []FindingRule, s Signals) []report.SecurityFinding {
	out := []report.SecurityFinding{}
	for _, rule := range rules {
		if rule.Detect(s) {
			out = append(out, rule.Finding)
		}
	}
	if len(out) == 0 {
		out = append(out, DefaultFindings...)
	}
	return out
}
