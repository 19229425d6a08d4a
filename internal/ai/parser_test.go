package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VectorBits/Chainsight/internal/report"
)

func TestParseSummaryDirectJSON(t *testing.T) {
	out := ParseSummary(`{"description":"a dex","key_features":["swap"]}`)
	require.NotNil(t, out)
	assert.Equal(t, "a dex", out.Description)
	assert.Equal(t, []string{"swap"}, out.KeyFeatures)
}

func TestParseSummaryFencedMarkdown(t *testing.T) {
	resp := "Here is the analysis:\n```json\n{\"overview\":\"fine\"}\n```\nthanks"
	out := ParseSummary(resp)
	require.NotNil(t, out)
	assert.Equal(t, "fine", out.Overview)
}

func TestParseEmbeddedObject(t *testing.T) {
	resp := `The model says {"business_logic":"ok","strengths":["s1"]} trailing noise`
	out := ParseSecurity(resp)
	require.NotNil(t, out)
	assert.Equal(t, "ok", out.BusinessLogic)
}

func TestParseGarbageReturnsNil(t *testing.T) {
	assert.Nil(t, ParseSummary("I cannot help with that."))
	assert.Nil(t, ParseArchitecture(""))
	assert.Nil(t, ParseSecurity("{broken json"))
}

func TestParseSecurityStringFindingsCoerced(t *testing.T) {
	resp := `{"findings":["missing zero-address check",{"name":"Reentrancy","severity":"critical","exploitability":"high"}]}`
	out := ParseSecurity(resp)
	require.NotNil(t, out)
	require.Len(t, out.Findings, 2)

	// 纯字符串的发现被强转成 Medium 级别的结构化记录
	coerced := out.Findings[0].SecurityFinding
	assert.Equal(t, "missing zero-address check", coerced.Name)
	assert.Equal(t, report.SeverityMedium, coerced.Severity)

	// 不可信的等级字符串被归一化
	assert.Equal(t, report.SeverityCritical, out.Findings[1].Severity)
	assert.Equal(t, report.ExploitabilityHigh, out.Findings[1].Exploitability)
}

func TestExtractFirstJSONObjectStringAware(t *testing.T) {
	// 字符串里的括号不影响配平
	s := `prefix {"a":"}{","b":1} suffix`
	obj, ok := extractFirstJSONObject(s)
	require.True(t, ok)
	assert.Equal(t, `{"a":"}{","b":1}`, obj)

	_, ok = extractFirstJSONObject("no object here")
	assert.False(t, ok)
}
