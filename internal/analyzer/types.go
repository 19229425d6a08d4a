package analyzer

import "strings"

// Visibility 函数可见性
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityInternal Visibility = "internal"
	VisibilityExternal Visibility = "external"
)

// Mutability 函数状态可变性
type Mutability string

const (
	MutabilityView       Mutability = "view"
	MutabilityPure       Mutability = "pure"
	MutabilityPayable    Mutability = "payable"
	MutabilityNonPayable Mutability = "nonpayable"
)

type FunctionFact struct {
	Name       string     `json:"name"`
	Visibility Visibility `json:"visibility"`
	Mutability Mutability `json:"mutability"`
	Parameters string     `json:"parameters"`
	Returns    string     `json:"returns"`
	Modifiers  []string   `json:"modifiers"`
}

// ContractFacts 单个合约源文件的结构化摘要
type ContractFacts struct {
	FileName        string         `json:"file_name"`
	ContractName    string         `json:"contract_name"`
	Functions       []FunctionFact `json:"functions"`
	Events          []string       `json:"events"`
	Modifiers       []string       `json:"modifiers"`
	Imports         []string       `json:"imports"`
	Inheritance     []string       `json:"inheritance"`
	ComplexityScore float64        `json:"complexity_score"`
}

// HasFunction 按名称查找函数，不区分大小写
func (f *ContractFacts) HasFunction(name string) bool {
	for _, fn := range f.Functions {
		if strings.EqualFold(fn.Name, name) {
			return true
		}
	}
	return false
}
