package analyzer

import (
	"regexp"
	"strings"
)

// 复杂度线性公式的固定权重，评分范围 [0,10]。
// 这是一个代理指标，不是真正的圈复杂度，下游依赖其精确值，不要调整。
const (
	complexityBase     = 3.0
	functionWeight     = 0.5
	modifierWeight     = 0.3
	conditionalWeight  = 0.2
	loopWeight         = 0.4
	complexityScoreMax = 10.0
)

var (
	contractRe = regexp.MustCompile(`(?m)\bcontract\s+([A-Za-z_]\w*)\s*(?:is\s+([^{]+?))?\s*\{`)
	functionRe = regexp.MustCompile(`(?m)\bfunction\s+([A-Za-z_]\w*)\s*\(([^)]*)\)([^{;]*)`)
	eventRe    = regexp.MustCompile(`(?m)\bevent\s+([A-Za-z_]\w*)`)
	modifierRe = regexp.MustCompile(`(?m)\bmodifier\s+([A-Za-z_]\w*)`)
	importRe   = regexp.MustCompile(`(?m)\bimport\s+(?:\{[^}]*\}\s+from\s+)?["']([^"']+)["']`)
	returnsRe  = regexp.MustCompile(`\breturns\s*\(([^)]*)\)`)
	ifRe       = regexp.MustCompile(`\bif\s*\(`)
	loopRe     = regexp.MustCompile(`\b(?:for|while)\s*\(`)
	identRe    = regexp.MustCompile(`^[A-Za-z_]\w*`)
)

// 函数尾部中不算修饰器的声明关键字
var declKeywords = map[string]bool{
	"public": true, "private": true, "internal": true, "external": true,
	"view": true, "pure": true, "payable": true, "nonpayable": true,
	"virtual": true, "override": true, "returns": true, "memory": true,
	"calldata": true, "storage": true,
}

// Analyze 对单个源文件做单遍词法提取，产出 ContractFacts。
// 返回 false 表示文件中没有 contract 声明，这是正常情况而不是错误。
//
// 已知限制（保留自既有行为，勿默默修复）：
//   - 每个文件只分析第一个 contract 声明，后续声明被忽略；
//   - 模式匹配不排除注释与字符串字面量，文档性文本可能产生误报。
func Analyze(fileName, source string) (*ContractFacts, bool) {
	m := contractRe.FindStringSubmatch(source)
	if m == nil {
		return nil, false
	}

	facts := &ContractFacts{
		FileName:     fileName,
		ContractName: m[1],
		Functions:    []FunctionFact{},
		Events:       []string{},
		Modifiers:    []string{},
		Imports:      []string{},
		Inheritance:  parseInheritance(m[2]),
	}

	for _, fm := range functionRe.FindAllStringSubmatch(source, -1) {
		facts.Functions = append(facts.Functions, parseFunction(fm))
	}
	for _, em := range eventRe.FindAllStringSubmatch(source, -1) {
		facts.Events = append(facts.Events, em[1])
	}
	for _, mm := range modifierRe.FindAllStringSubmatch(source, -1) {
		facts.Modifiers = append(facts.Modifiers, mm[1])
	}
	for _, im := range importRe.FindAllStringSubmatch(source, -1) {
		target := strings.TrimSpace(im[1])
		// 只保留外部包风格的引用作为依赖候选
		if target == "" || strings.HasPrefix(target, ".") {
			continue
		}
		facts.Imports = append(facts.Imports, target)
	}

	facts.ComplexityScore = complexityScore(
		len(facts.Functions),
		len(facts.Modifiers),
		len(ifRe.FindAllStringIndex(source, -1)),
		len(loopRe.FindAllStringIndex(source, -1)),
	)

	return facts, true
}

func parseInheritance(clause string) []string {
	parents := []string{}
	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		// 去掉带参数的基类构造调用，如 ERC20("Name", "SYM")
		if id := identRe.FindString(part); id != "" {
			parents = append(parents, id)
		}
	}
	return parents
}

func parseFunction(m []string) FunctionFact {
	fn := FunctionFact{
		Name:       m[1],
		Visibility: VisibilityExternal,
		Mutability: MutabilityNonPayable,
		Parameters: strings.TrimSpace(m[2]),
		Modifiers:  []string{},
	}

	tail := m[3]
	if rm := returnsRe.FindStringSubmatch(tail); rm != nil {
		fn.Returns = strings.TrimSpace(rm[1])
		tail = returnsRe.ReplaceAllString(tail, " ")
	}

	for _, tok := range strings.Fields(tail) {
		// 修饰器可能带参数，如 onlyRole(ADMIN)
		name := identRe.FindString(tok)
		if name == "" {
			continue
		}
		switch name {
		case "public", "private", "internal", "external":
			fn.Visibility = Visibility(name)
		case "view", "pure", "payable":
			fn.Mutability = Mutability(name)
		default:
			if !declKeywords[name] {
				fn.Modifiers = append(fn.Modifiers, name)
			}
		}
	}
	return fn
}

func complexityScore(functions, modifiers, conditionals, loops int) float64 {
	score := complexityBase +
		float64(functions)*functionWeight +
		float64(modifiers)*modifierWeight +
		float64(conditionals)*conditionalWeight +
		float64(loops)*loopWeight
	return Clamp(score, 0, complexityScoreMax)
}

// Clamp 把 v 限制在 [lo, hi] 区间
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
