package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VectorBits/Chainsight/internal/report"
)

func baseReport() *report.ProtocolReport {
	return &report.ProtocolReport{
		Summary: report.ProtocolSummary{
			Name:        "Proto",
			Description: "base description",
			Category:    "DeFi Protocol",
			KeyFeatures: []string{"Feature A", "Feature B"},
		},
		Architecture: report.Architecture{
			DesignPatterns: []string{"Access Control"},
		},
		Security: report.SecurityAssessment{
			Rating:    "B",
			Strengths: []string{"Strength 1"},
			Findings: []report.SecurityFinding{
				{Name: "Base finding", Severity: report.SeverityLow},
			},
			Recommendations: []string{"Rec 1"},
		},
		Timestamp: time.Now(),
	}
}

func TestMergeNilEnhancementKeepsBase(t *testing.T) {
	base := baseReport()
	merged := Merge(base, nil)
	assert.Equal(t, *base, merged)
}

func TestMergeNilBase(t *testing.T) {
	merged := Merge(nil, &EnhancementReport{})
	assert.Equal(t, report.ProtocolReport{}, merged)
}

func TestMergeScalarOverride(t *testing.T) {
	base := baseReport()
	enh := &EnhancementReport{
		Summary: &SummaryEnhancement{
			Description: "enhanced description",
			Overview:    "",
		},
		Security: &SecurityEnhancement{Rating: "A-"},
	}
	merged := Merge(base, enh)
	assert.Equal(t, "enhanced description", merged.Summary.Description)
	// 空的增强值不覆盖基础值
	assert.Equal(t, base.Summary.Overview, merged.Summary.Overview)
	assert.Equal(t, "A-", merged.Security.Rating)
	// 基础报告自身不被修改
	assert.Equal(t, "base description", base.Summary.Description)
}

func TestMergeListUnionKeepsBaseEntries(t *testing.T) {
	base := baseReport()
	enh := &EnhancementReport{
		Summary: &SummaryEnhancement{
			KeyFeatures: []string{"Feature B", "Feature C", ""},
		},
		Architecture: &ArchitectureEnhancement{
			DesignPatterns: []string{"Factory"},
		},
		Security: &SecurityEnhancement{
			Strengths:       []string{"Strength 2"},
			Recommendations: []string{"rec 1", "Rec 2"},
		},
	}
	merged := Merge(base, enh)

	// 基础条目在前，增强独有条目追加，去重
	assert.Equal(t, []string{"Feature A", "Feature B", "Feature C"}, merged.Summary.KeyFeatures)
	assert.Equal(t, []string{"Access Control", "Factory"}, merged.Architecture.DesignPatterns)
	assert.Equal(t, []string{"Strength 1", "Strength 2"}, merged.Security.Strengths)
	// 去重不区分大小写："rec 1" 和 "Rec 1" 视为同一条
	assert.Equal(t, []string{"Rec 1", "Rec 2"}, merged.Security.Recommendations)
}

func TestMergeFindingsFullReplace(t *testing.T) {
	base := baseReport()
	enh := &EnhancementReport{
		Security: &SecurityEnhancement{
			Findings: []FindingItem{
				{SecurityFinding: report.SecurityFinding{Name: "Enh finding", Severity: report.SeverityCritical}},
			},
		},
	}
	merged := Merge(base, enh)
	require.Len(t, merged.Security.Findings, 1)
	assert.Equal(t, "Enh finding", merged.Security.Findings[0].Name)

	// 增强没给发现时保留基础发现
	merged = Merge(base, &EnhancementReport{Security: &SecurityEnhancement{}})
	require.Len(t, merged.Security.Findings, 1)
	assert.Equal(t, "Base finding", merged.Security.Findings[0].Name)
}

func TestMergeNeverPanics(t *testing.T) {
	// 畸形但类型合法的输入不会把 panic 泄漏给调用方
	base := baseReport()
	weird := &EnhancementReport{
		Summary:      &SummaryEnhancement{EconomicModel: &EconomicModelEnhancement{}},
		Architecture: &ArchitectureEnhancement{GasAnalysis: &GasAnalysisEnhancement{}},
		Security:     &SecurityEnhancement{Findings: []FindingItem{}},
	}
	assert.NotPanics(t, func() {
		merged := Merge(base, weird)
		assert.Equal(t, base.Summary.Description, merged.Summary.Description)
	})
}

func TestCoerceFinding(t *testing.T) {
	f := CoerceFinding("  reentrancy risk in withdraw ")
	assert.Equal(t, "reentrancy risk in withdraw", f.Name)
	assert.Equal(t, report.SeverityMedium, f.Severity)
	assert.NotEmpty(t, f.Mitigation)
}
