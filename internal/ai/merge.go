package ai

import (
	"strings"

	"github.com/VectorBits/Chainsight/internal/logger"
	"github.com/VectorBits/Chainsight/internal/report"
)

// Merge 把不可信的增强报告归并进基础报告。全函数：任意输入
// （包括 nil）都产出结果，归并过程中的任何 panic 都回退到完整的
// 基础报告，绝不返回半套用的结果。
//
// 归并规则：
//   - 标量叙述字段：增强值非空则覆盖，否则保留基础值；
//   - 列表字段：集合并集去重，基础条目在前，增强独有条目追加；
//   - 安全发现：增强给出非空结构化列表时整体替换，否则保留基础
//     发现（纯字符串发现已在反序列化阶段强转为结构化记录）。
func Merge(base *report.ProtocolReport, enh *EnhancementReport) (merged report.ProtocolReport) {
	if base == nil {
		return report.ProtocolReport{}
	}
	merged = *base

	defer func() {
		if r := recover(); r != nil {
			logger.Error("enhancement merge panicked, using base report: %v", r)
			merged = *base
		}
	}()

	if enh == nil {
		return merged
	}

	mergeSummary(&merged.Summary, enh.Summary)
	mergeArchitecture(&merged.Architecture, enh.Architecture)
	mergeSecurity(&merged.Security, enh.Security)
	return merged
}

func mergeSummary(dst *report.ProtocolSummary, src *SummaryEnhancement) {
	if src == nil {
		return
	}
	overrideString(&dst.Description, src.Description)
	overrideString(&dst.Category, src.Category)
	overrideString(&dst.Overview, src.Overview)
	overrideString(&dst.Fundamentals, src.Fundamentals)
	dst.KeyFeatures = unionAppend(dst.KeyFeatures, src.KeyFeatures)
	if em := src.EconomicModel; em != nil {
		overrideString(&dst.EconomicModel.Model, em.Model)
		overrideString(&dst.EconomicModel.TokenUtility, em.TokenUtility)
		overrideString(&dst.EconomicModel.ValueAccrual, em.ValueAccrual)
		overrideString(&dst.EconomicModel.Sustainability, em.Sustainability)
	}
}

func mergeArchitecture(dst *report.Architecture, src *ArchitectureEnhancement) {
	if src == nil {
		return
	}
	dst.DesignPatterns = unionAppend(dst.DesignPatterns, src.DesignPatterns)
	if ga := src.GasAnalysis; ga != nil {
		overrideString(&dst.GasAnalysis.Estimate, ga.Estimate)
		dst.GasAnalysis.Concerns = unionAppend(dst.GasAnalysis.Concerns, ga.Concerns)
		dst.GasAnalysis.Optimizations = unionAppend(dst.GasAnalysis.Optimizations, ga.Optimizations)
	}
}

func mergeSecurity(dst *report.SecurityAssessment, src *SecurityEnhancement) {
	if src == nil {
		return
	}
	overrideString(&dst.Rating, src.Rating)
	overrideString(&dst.BusinessLogic, src.BusinessLogic)
	overrideString(&dst.AuditStatus, src.AuditStatus)
	dst.Strengths = unionAppend(dst.Strengths, src.Strengths)
	dst.Recommendations = unionAppend(dst.Recommendations, src.Recommendations)

	if len(src.Findings) > 0 {
		findings := make([]report.SecurityFinding, 0, len(src.Findings))
		for _, item := range src.Findings {
			findings = append(findings, item.SecurityFinding)
		}
		dst.Findings = findings
	}
}

func overrideString(dst *string, src string) {
	if strings.TrimSpace(src) != "" {
		*dst = src
	}
}

// unionAppend 基础条目在前，去重后追加增强独有条目。
// 从不移除基础条目：归并对列表是单调的。
func unionAppend(base, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, item := range base {
		key := strings.ToLower(strings.TrimSpace(item))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	for _, item := range extra {
		if strings.TrimSpace(item) == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(item))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
