package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fetchqb/internal/session"
)

func intPtr(n int) *int { return &n }

func sampleResult() *Result {
	r := NewResult()
	r.XML = "<fetch mapping=\"logical\">\n  <entity name=\"account\"></entity>\n</fetch>"
	r.Fields = []string{"name", "revenue"}
	r.Entity = "account"
	r.Conditions = 2
	r.Emitted = []session.Change{{Seq: 1}, {Seq: 2}}
	return r
}

func TestEvaluateExpect_AllPass(t *testing.T) {
	errs := EvaluateExpect(sampleResult(), Expect{
		XML:         "<fetch mapping=\"logical\">\n  <entity name=\"account\"></entity>\n</fetch>\n",
		Contains:    []string{`<entity name="account">`},
		NotContains: []string{"<filter"},
		Fields:      []string{"name", "revenue"},
		Entity:      "account",
		Emitted:     intPtr(2),
		Conditions:  intPtr(2),
	})
	assert.Empty(t, errs)
}

func TestEvaluateExpect_EmptyExpectAlwaysPasses(t *testing.T) {
	assert.Empty(t, EvaluateExpect(sampleResult(), Expect{}))
}

func TestEvaluateExpect_Failures(t *testing.T) {
	tests := []struct {
		name   string
		expect Expect
		want   string
	}{
		{"xml", Expect{XML: "<fetch />"}, "Expectation failed: xml"},
		{"contains", Expect{Contains: []string{"<filter"}}, `document containing "<filter"`},
		{"not_contains", Expect{NotContains: []string{"account"}}, `document without "account"`},
		{"fields", Expect{Fields: []string{"revenue", "name"}}, "[revenue name]"},
		{"entity", Expect{Entity: "contact"}, "Expected: contact"},
		{"emitted", Expect{Emitted: intPtr(0)}, "Expectation failed: emitted"},
		{"conditions", Expect{Conditions: intPtr(5)}, "Expectation failed: conditions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateExpect(sampleResult(), tt.expect)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestEvaluateExpect_EmptyFieldListIsChecked(t *testing.T) {
	errs := EvaluateExpect(sampleResult(), Expect{Fields: []string{}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Expectation failed: fields")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
