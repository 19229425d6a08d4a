// Package diagram 从合约事实渲染三类 Mermaid 图，仅供下游展示，
// 不参与评分。节点标识通过剥离非字母数字字符得到；两个不同合约
// 名坍缩为同一标识时不做消歧，这是已知未解决的碰撞情形。
package diagram

import (
	"fmt"
	"strings"

	"github.com/VectorBits/Chainsight/internal/analyzer"
)

// 一个合约的函数数量超过该值时，数据流图追加业务逻辑/状态更新子链
const busyFunctionThreshold = 5

const emptyDataFlow = `graph TD
    User[User] --> Entry[Protocol Entry Point]
    Entry --> Core[Core Contract]
    Core --> External[External Calls]
    Core --> Events[Event Logs]`

const emptySequence = `sequenceDiagram
    participant User
    participant Protocol
    User->>Protocol: interact()
    Protocol-->>User: result`

// SanitizeID Mermaid 节点标识，剥离所有非字母数字字符
func SanitizeID(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Contract"
	}
	return b.String()
}

// DataFlow 数据流图。零合约时返回固定模板。
func DataFlow(facts []*analyzer.ContractFacts) string {
	if len(facts) == 0 {
		return emptyDataFlow
	}

	var b strings.Builder
	b.WriteString("graph TD\n")
	b.WriteString("    User[User] --> Entry[Protocol Entry Point]\n")
	for _, f := range facts {
		id := SanitizeID(f.ContractName)
		fmt.Fprintf(&b, "    Entry --> %s[%s]\n", id, f.ContractName)
		if len(f.Functions) > busyFunctionThreshold {
			fmt.Fprintf(&b, "    %s --> %sLogic[Business Logic]\n", id, id)
			fmt.Fprintf(&b, "    %sLogic --> %sState[State Update]\n", id, id)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Sequence 交互时序图，最多取发现顺序下的前三个合约
func Sequence(facts []*analyzer.ContractFacts) string {
	if len(facts) == 0 {
		return emptySequence
	}

	chain := facts
	if len(chain) > 3 {
		chain = chain[:3]
	}

	var b strings.Builder
	b.WriteString("sequenceDiagram\n")
	b.WriteString("    participant User\n")
	for _, f := range chain {
		fmt.Fprintf(&b, "    participant %s\n", SanitizeID(f.ContractName))
	}
	b.WriteString("    participant Storage\n")

	prev := "User"
	for _, f := range chain {
		id := SanitizeID(f.ContractName)
		call := "interact()"
		if len(f.Functions) > 0 {
			call = f.Functions[0].Name + "()"
		}
		fmt.Fprintf(&b, "    %s->>%s: %s\n", prev, id, call)
		prev = id
	}
	fmt.Fprintf(&b, "    %s->>Storage: write state\n", prev)
	fmt.Fprintf(&b, "    Storage-->>User: confirmation\n")
	return strings.TrimRight(b.String(), "\n")
}

// Inheritance 继承/类图：每个合约一个类节点（至多 5 个函数、3 个
// 修饰器），声明的父类画继承边，父类不在分析集合内时合成外部接口
// 占位节点，另按名称包含关系推断 uses 边。
func Inheritance(facts []*analyzer.ContractFacts) string {
	var b strings.Builder
	b.WriteString("classDiagram\n")

	known := map[string]bool{}
	for _, f := range facts {
		known[f.ContractName] = true
	}

	for _, f := range facts {
		id := SanitizeID(f.ContractName)
		fmt.Fprintf(&b, "    class %s {\n", id)
		for i, fn := range f.Functions {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "        +%s()\n", fn.Name)
		}
		for i, mod := range f.Modifiers {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "        #%s\n", mod)
		}
		b.WriteString("    }\n")
	}

	placeholders := map[string]bool{}
	for _, f := range facts {
		id := SanitizeID(f.ContractName)
		for _, parent := range f.Inheritance {
			pid := SanitizeID(parent)
			if !known[parent] && !placeholders[pid] {
				placeholders[pid] = true
				fmt.Fprintf(&b, "    class %s {\n        <<interface>>\n    }\n", pid)
			}
			fmt.Fprintf(&b, "    %s <|-- %s\n", pid, id)
		}
	}

	for _, f := range facts {
		for _, other := range facts {
			if f == other {
				continue
			}
			if usesContract(f, other) {
				fmt.Fprintf(&b, "    %s ..> %s : uses\n", SanitizeID(f.ContractName), SanitizeID(other.ContractName))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// usesContract 启发式调用关系：函数名包含对方合约名，或对方是
// factory/manager 类合约
func usesContract(from, to *analyzer.ContractFacts) bool {
	target := strings.ToLower(to.ContractName)
	if strings.Contains(target, "factory") || strings.Contains(target, "manager") {
		return true
	}
	for _, fn := range from.Functions {
		if strings.Contains(strings.ToLower(fn.Name), target) {
			return true
		}
	}
	return false
}
