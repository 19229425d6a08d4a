package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/VectorBits/Chainsight/internal/analyzer"
)

func contract(name string, fns ...string) *analyzer.ContractFacts {
	facts := &analyzer.ContractFacts{ContractName: name}
	for _, fn := range fns {
		facts.Functions = append(facts.Functions, analyzer.FunctionFact{Name: fn})
	}
	return facts
}

func TestEmptyTemplates(t *testing.T) {
	// 零合约必须返回文档化的固定模板
	assert.Equal(t, emptyDataFlow, DataFlow(nil))
	assert.Equal(t, emptySequence, Sequence(nil))
	assert.Equal(t, "classDiagram", Inheritance(nil))
}

func TestDataFlowBusySubChain(t *testing.T) {
	vault := contract("Vault", "deposit", "withdraw", "pause", "unpause", "sweep", "rebalance")
	small := contract("Oracle", "peek")

	out := DataFlow([]*analyzer.ContractFacts{vault, small})
	assert.Contains(t, out, "Entry --> Vault[Vault]")
	assert.Contains(t, out, "Vault --> VaultLogic[Business Logic]")
	assert.Contains(t, out, "VaultLogic --> VaultState[State Update]")
	// 函数数不超过阈值的合约没有子链
	assert.NotContains(t, out, "OracleLogic")
}

func TestSequenceFirstThreeContracts(t *testing.T) {
	facts := []*analyzer.ContractFacts{
		contract("Router", "swap"),
		contract("Pool", "mint"),
		contract("Oracle", "peek"),
		contract("Treasury", "collect"),
	}
	out := Sequence(facts)
	assert.Contains(t, out, "User->>Router: swap()")
	assert.Contains(t, out, "Router->>Pool: mint()")
	assert.Contains(t, out, "Pool->>Oracle: peek()")
	assert.Contains(t, out, "Oracle->>Storage: write state")
	// 发现顺序下只取前三个合约
	assert.NotContains(t, out, "Treasury")
}

func TestInheritancePlaceholderAndUses(t *testing.T) {
	vault := contract("Vault", "swapRouter")
	vault.Inheritance = []string{"Ownable"}
	vault.Modifiers = []string{"onlyOwner"}
	router := contract("Router", "route")
	factory := contract("PairFactory", "createPair")

	out := Inheritance([]*analyzer.ContractFacts{vault, router, factory})
	assert.Contains(t, out, "class Vault {")
	assert.Contains(t, out, "+swapRouter()")
	assert.Contains(t, out, "#onlyOwner")
	// Ownable 不在分析集合里，合成外部接口占位节点
	assert.Contains(t, out, "class Ownable {\n        <<interface>>")
	assert.Contains(t, out, "Ownable <|-- Vault")
	// 函数名包含对方合约名 → uses 边
	assert.Contains(t, out, "Vault ..> Router : uses")
	// factory 类合约对所有人都是 uses 目标
	assert.Contains(t, out, "Router ..> PairFactory : uses")
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "MyToken2", SanitizeID("My-Token_2"))
	assert.Equal(t, "Contract", SanitizeID("***"))
	// 已知碰撞情形：不同名字可以坍缩到同一标识，不做消歧
	assert.Equal(t, SanitizeID("Vault-V2"), SanitizeID("VaultV2"))
}

func TestInheritanceTruncation(t *testing.T) {
	big := contract("Big", "a", "b", "c", "d", "e", "f", "g")
	out := Inheritance([]*analyzer.ContractFacts{big})
	assert.Contains(t, out, "+e()")
	assert.NotContains(t, out, "+f()")
	assert.Equal(t, 5, strings.Count(out, "+"))
}
