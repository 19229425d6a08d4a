package report

import (
	"fmt"
	"strings"
)

type Generator interface {
	Generate(report *ProtocolReport) (string, error)
}

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

// Generate 生成 markdown 协议分析报告
func (g *MarkdownGenerator) Generate(report *ProtocolReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("nil report")
	}

	var b strings.Builder

	// 报告头部
	b.WriteString(fmt.Sprintf("# %s Protocol Analysis\n\n", report.Summary.Name))
	b.WriteString(fmt.Sprintf("**Category**: %s\n", report.Summary.Category))
	b.WriteString(fmt.Sprintf("**Complexity Score**: %.1f / 10\n", report.Summary.ComplexityScore))
	b.WriteString(fmt.Sprintf("**Security Rating**: %s\n", report.Security.Rating))
	b.WriteString(fmt.Sprintf("**Analyzed At**: %s\n\n", report.Timestamp.Format("2006-01-02 15:04:05")))

	if report.Summary.Description != "" {
		b.WriteString(fmt.Sprintf("%s\n\n", report.Summary.Description))
	}

	// 协议概览
	b.WriteString("## Overview\n\n")
	b.WriteString(fmt.Sprintf("%s\n\n", report.Summary.Overview))
	if len(report.Summary.KeyFeatures) > 0 {
		b.WriteString("### Key Features\n\n")
		for _, f := range report.Summary.KeyFeatures {
			b.WriteString(fmt.Sprintf("- %s\n", f))
		}
		b.WriteString("\n")
	}
	if report.Summary.Fundamentals != "" {
		b.WriteString("### Fundamentals\n\n")
		b.WriteString(fmt.Sprintf("%s\n\n", report.Summary.Fundamentals))
	}

	// 经济模型
	if report.Summary.EconomicModel.Model != "" {
		b.WriteString("## Economic Model\n\n")
		b.WriteString(fmt.Sprintf("- **Model**: %s\n", report.Summary.EconomicModel.Model))
		b.WriteString(fmt.Sprintf("- **Token Utility**: %s\n", report.Summary.EconomicModel.TokenUtility))
		b.WriteString(fmt.Sprintf("- **Value Accrual**: %s\n", report.Summary.EconomicModel.ValueAccrual))
		b.WriteString(fmt.Sprintf("- **Sustainability**: %s\n\n", report.Summary.EconomicModel.Sustainability))
	}

	// 架构
	b.WriteString("## Architecture\n\n")
	if len(report.Architecture.Contracts) > 0 {
		b.WriteString("### Contracts\n\n")
		b.WriteString("| Contract | File | Functions | Purpose |\n")
		b.WriteString("|----------|------|-----------|--------|\n")
		for _, c := range report.Architecture.Contracts {
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n", c.Name, c.FileName, c.FunctionCount, c.Purpose))
		}
		b.WriteString("\n")
	}
	if len(report.Architecture.Dependencies) > 0 {
		b.WriteString("### External Dependencies\n\n")
		for _, d := range report.Architecture.Dependencies {
			b.WriteString(fmt.Sprintf("- `%s`\n", d))
		}
		b.WriteString("\n")
	}
	if len(report.Architecture.DesignPatterns) > 0 {
		b.WriteString("### Design Patterns\n\n")
		for _, p := range report.Architecture.DesignPatterns {
			b.WriteString(fmt.Sprintf("- %s\n", p))
		}
		b.WriteString("\n")
	}

	writeDiagram(&b, "Data Flow", report.Architecture.DataFlowDiagram)
	writeDiagram(&b, "Sequence", report.Architecture.SequenceDiagram)
	writeDiagram(&b, "Inheritance", report.Architecture.InheritanceDiagram)

	// Gas 分析
	if report.Architecture.GasAnalysis.Estimate != "" {
		b.WriteString("### Gas Analysis\n\n")
		b.WriteString(fmt.Sprintf("**Estimate**: %s\n\n", report.Architecture.GasAnalysis.Estimate))
		for _, c := range report.Architecture.GasAnalysis.Concerns {
			b.WriteString(fmt.Sprintf("- ⚠️ %s\n", c))
		}
		for _, o := range report.Architecture.GasAnalysis.Optimizations {
			b.WriteString(fmt.Sprintf("- 💡 %s\n", o))
		}
		b.WriteString("\n")
	}

	// 安全评估
	b.WriteString("## Security Assessment\n\n")
	b.WriteString(fmt.Sprintf("**Rating**: %s\n", report.Security.Rating))
	b.WriteString(fmt.Sprintf("**Audit Status**: %s\n\n", report.Security.AuditStatus))
	if report.Security.BusinessLogic != "" {
		b.WriteString(fmt.Sprintf("%s\n\n", report.Security.BusinessLogic))
	}

	if len(report.Security.Strengths) > 0 {
		b.WriteString("### Strengths\n\n")
		for _, s := range report.Security.Strengths {
			b.WriteString(fmt.Sprintf("- ✅ %s\n", s))
		}
		b.WriteString("\n")
	}

	if len(report.Security.Findings) > 0 {
		b.WriteString("### Findings\n\n")
		for i, f := range report.Security.Findings {
			icon := severityIcon(f.Severity)
			b.WriteString(fmt.Sprintf("%d. %s **[%s]** %s\n", i+1, icon, f.Severity, f.Name))
			b.WriteString(fmt.Sprintf("   **Description**: %s\n", f.Description))
			if f.Category != "" {
				b.WriteString(fmt.Sprintf("   **Category**: %s\n", f.Category))
			}
			if f.Mitigation != "" {
				b.WriteString(fmt.Sprintf("   **Mitigation**: %s\n", f.Mitigation))
			}
			if f.CodeReference != "" {
				b.WriteString(fmt.Sprintf("   **Reference**: `%s`\n", f.CodeReference))
			}
			b.WriteString("\n")
		}
	}

	if len(report.Security.Recommendations) > 0 {
		b.WriteString("### Recommendations\n\n")
		for _, r := range report.Security.Recommendations {
			b.WriteString(fmt.Sprintf("- %s\n", r))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

func writeDiagram(b *strings.Builder, title, diagram string) {
	if strings.TrimSpace(diagram) == "" {
		return
	}
	b.WriteString(fmt.Sprintf("### %s Diagram\n\n", title))
	b.WriteString("```mermaid\n")
	b.WriteString(diagram)
	if !strings.HasSuffix(diagram, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n\n")
}

func severityIcon(severity Severity) string {
	switch severity {
	case SeverityCritical:
		return "🔴"
	case SeverityHigh:
		return "🟠"
	case SeverityMedium:
		return "🟡"
	case SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}
