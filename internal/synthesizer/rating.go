package synthesizer

import "math"

// 安全评分的固定权重。分数只是字母等级的中间量，不对外暴露。
const (
	ratingBase                 = 70.0
	accessControlBonus         = 10.0
	eventUsageBonus            = 5.0
	pauseBonus                 = 5.0
	complexityPenalty          = 10.0
	complexityPenaltyThreshold = 7.0
)

// gradeTable 有序阈值表，首个满足 score >= Min 的条目生效。
// 末项下界为 -Inf，映射对任意实数都是全函数。
var gradeTable = []struct {
	Min   float64
	Grade string
}{
	{95, "A+"},
	{90, "A"},
	{85, "A-"},
	{80, "B+"},
	{75, "B"},
	{70, "B-"},
	{65, "C+"},
	{60, "C"},
	{50, "D"},
	{math.Inf(-1), "F"},
}

// SecurityScore 基准分加权加减
func SecurityScore(s Signals) float64 {
	score := ratingBase
	if s.HasAccessControl {
		score += accessControlBonus
	}
	if s.HasEvents {
		score += eventUsageBonus
	}
	if s.HasPause {
		score += pauseBonus
	}
	if s.AvgComplexity > complexityPenaltyThreshold {
		score -= complexityPenalty
	}
	return score
}

// GradeFor 把任意分数映射到固定等级集合
func GradeFor(score float64) string {
	for _, entry := range gradeTable {
		if score >= entry.Min {
			return entry.Grade
		}
	}
	return "F"
}

// SecurityRating 便捷组合
func SecurityRating(s Signals) string {
	return GradeFor(SecurityScore(s))
}
