package ai

import (
	"encoding/json"
	"strings"

	"github.com/VectorBits/Chainsight/internal/report"
)

// EnhancementReport 外部生成式服务给出的增强报告。与
// ProtocolReport 结构对应，但每个字段都是可选的：来源不可信，
// 任何字段都可能缺失或畸形，消费方必须按字段归并（见 merge.go）。
type EnhancementReport struct {
	Summary      *SummaryEnhancement      `json:"summary,omitempty"`
	Architecture *ArchitectureEnhancement `json:"architecture,omitempty"`
	Security     *SecurityEnhancement     `json:"security,omitempty"`
}

type SummaryEnhancement struct {
	Description   string                    `json:"description,omitempty"`
	Category      string                    `json:"category,omitempty"`
	Overview      string                    `json:"overview,omitempty"`
	KeyFeatures   []string                  `json:"key_features,omitempty"`
	Fundamentals  string                    `json:"fundamentals,omitempty"`
	EconomicModel *EconomicModelEnhancement `json:"economic_model,omitempty"`
}

type EconomicModelEnhancement struct {
	Model          string `json:"model,omitempty"`
	TokenUtility   string `json:"token_utility,omitempty"`
	ValueAccrual   string `json:"value_accrual,omitempty"`
	Sustainability string `json:"sustainability,omitempty"`
}

type ArchitectureEnhancement struct {
	DesignPatterns []string                `json:"design_patterns,omitempty"`
	GasAnalysis    *GasAnalysisEnhancement `json:"gas_analysis,omitempty"`
}

type GasAnalysisEnhancement struct {
	Estimate      string   `json:"estimate,omitempty"`
	Concerns      []string `json:"concerns,omitempty"`
	Optimizations []string `json:"optimizations,omitempty"`
}

type SecurityEnhancement struct {
	Rating          string        `json:"rating,omitempty"`
	BusinessLogic   string        `json:"business_logic,omitempty"`
	Strengths       []string      `json:"strengths,omitempty"`
	Findings        []FindingItem `json:"findings,omitempty"`
	Recommendations []string      `json:"recommendations,omitempty"`
	AuditStatus     string        `json:"audit_status,omitempty"`
}

// 纯字符串的发现被强制转换成结构化记录时使用的缺省值
const (
	coercedSeverity   = report.SeverityMedium
	coercedMitigation = "Review the finding and apply standard mitigations"
)

// FindingItem 兼容两种表示：结构化对象，或一段纯字符串。
// 字符串会被强转为 Medium 级别的结构化发现。
type FindingItem struct {
	report.SecurityFinding
}

func (f *FindingItem) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		f.SecurityFinding = CoerceFinding(asString)
		return nil
	}
	var structured report.SecurityFinding
	if err := json.Unmarshal(data, &structured); err != nil {
		return err
	}
	f.SecurityFinding = structured
	return nil
}

// CoerceFinding 把纯文本描述转换成结构化发现
func CoerceFinding(text string) report.SecurityFinding {
	return report.SecurityFinding{
		Name:           strings.TrimSpace(text),
		Description:    strings.TrimSpace(text),
		Severity:       coercedSeverity,
		Exploitability: report.ExploitabilityLow,
		Category:       "General",
		Mitigation:     coercedMitigation,
	}
}

// normalizeSeverity 不可信等级字符串归一化到固定集合
func normalizeSeverity(s report.Severity) report.Severity {
	switch strings.ToLower(strings.TrimSpace(string(s))) {
	case "critical", "crit":
		return report.SeverityCritical
	case "high", "h":
		return report.SeverityHigh
	case "low", "l":
		return report.SeverityLow
	default:
		return report.SeverityMedium
	}
}

func normalizeExploitability(e report.Exploitability) report.Exploitability {
	switch strings.ToLower(strings.TrimSpace(string(e))) {
	case "high", "h":
		return report.ExploitabilityHigh
	case "low", "l":
		return report.ExploitabilityLow
	default:
		return report.ExploitabilityMedium
	}
}
