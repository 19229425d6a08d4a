package report

import "time"

// Severity 安全发现的严重等级
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Exploitability 可利用性等级
type Exploitability string

const (
	ExploitabilityHigh   Exploitability = "High"
	ExploitabilityMedium Exploitability = "Medium"
	ExploitabilityLow    Exploitability = "Low"
)

// ProtocolReport 一次分析运行的完整产出
type ProtocolReport struct {
	Summary      ProtocolSummary    `json:"summary"`
	Architecture Architecture       `json:"architecture"`
	Security     SecurityAssessment `json:"security"`
	Timestamp    time.Time          `json:"timestamp"`
}

type ProtocolSummary struct {
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Category        string        `json:"category"`
	ComplexityScore float64       `json:"complexity_score"`
	Overview        string        `json:"overview"`
	KeyFeatures     []string      `json:"key_features"`
	Fundamentals    string        `json:"fundamentals"`
	EconomicModel   EconomicModel `json:"economic_model"`
}

type EconomicModel struct {
	Model          string `json:"model"`
	TokenUtility   string `json:"token_utility"`
	ValueAccrual   string `json:"value_accrual"`
	Sustainability string `json:"sustainability"`
}

type Architecture struct {
	Contracts          []ContractOverview `json:"contracts"`
	Dependencies       []string           `json:"dependencies"`
	DataFlowDiagram    string             `json:"data_flow_diagram"`
	SequenceDiagram    string             `json:"sequence_diagram"`
	InheritanceDiagram string             `json:"inheritance_diagram"`
	DesignPatterns     []string           `json:"design_patterns"`
	GasAnalysis        GasAnalysis        `json:"gas_analysis"`
}

type ContractOverview struct {
	Name          string `json:"name"`
	FileName      string `json:"file_name"`
	FunctionCount int    `json:"function_count"`
	Purpose       string `json:"purpose"`
}

type GasAnalysis struct {
	Estimate      string   `json:"estimate"`
	Concerns      []string `json:"concerns"`
	Optimizations []string `json:"optimizations"`
}

type SecurityAssessment struct {
	Rating          string            `json:"rating"`
	BusinessLogic   string            `json:"business_logic"`
	Strengths       []string          `json:"strengths"`
	Findings        []SecurityFinding `json:"findings"`
	Recommendations []string          `json:"recommendations"`
	AuditStatus     string            `json:"audit_status"`
}

type SecurityFinding struct {
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Severity       Severity       `json:"severity"`
	Exploitability Exploitability `json:"exploitability"`
	Category       string         `json:"category"`
	Mitigation     string         `json:"mitigation"`
	CodeReference  string         `json:"code_reference,omitempty"`
	DocMismatch    bool           `json:"doc_mismatch,omitempty"`
}
