package report

import (
	"encoding/json"
	"fmt"
	"time"
)

// ExportVersion 导出格式版本，结构变更时递增
const ExportVersion = "1.0"

type ExportMetadata struct {
	Name       string    `json:"name"`
	AnalyzedAt time.Time `json:"analyzed_at"`
	ExportedAt time.Time `json:"exported_at"`
	Version    string    `json:"version"`
}

type ExportRecord struct {
	Metadata     ExportMetadata     `json:"metadata"`
	Summary      ProtocolSummary    `json:"summary"`
	Architecture Architecture       `json:"architecture"`
	Security     SecurityAssessment `json:"security"`
}

// Export 把报告序列化为带版本号的 JSON 记录
func Export(report *ProtocolReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("nil report")
	}
	record := ExportRecord{
		Metadata: ExportMetadata{
			Name:       report.Summary.Name,
			AnalyzedAt: report.Timestamp,
			ExportedAt: time.Now().UTC(),
			Version:    ExportVersion,
		},
		Summary:      report.Summary,
		Architecture: report.Architecture,
		Security:     report.Security,
	}
	return json.MarshalIndent(record, "", "  ")
}
