package modelmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"complete", `{"precision":0.9,"recall":0.8,"accuracy":0.85,"f1_score":0.84}`, true},
		{"extra fields", `{"precision":1,"recall":1,"accuracy":1,"f1_score":1,"auc":0.99}`, true},
		{"missing f1", `{"precision":0.9,"recall":0.8,"accuracy":0.85}`, false},
		{"malformed", `{"precision":`, false},
		{"empty", ``, false},
		{"array", `[1,2,3]`, false},
		{"null", `null`, false},
		{"string value", `{"precision":"high","recall":0.8,"accuracy":0.85,"f1_score":0.84}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Validate(tc.raw))
		})
	}
}

func TestParse_Percentages(t *testing.T) {
	m, err := Parse(`{"precision":0.912,"recall":0.5,"accuracy":0.75,"f1_score":0.25}`)
	require.NoError(t, err)

	p := m.Percentages()
	assert.InDelta(t, 91.2, p[0], 1e-9)
	assert.InDelta(t, 50.0, p[1], 1e-9)
	assert.InDelta(t, 75.0, p[2], 1e-9)
	assert.InDelta(t, 25.0, p[3], 1e-9)
}

func TestParse_MissingFieldError(t *testing.T) {
	_, err := Parse(`{"precision":0.9}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "recall")
}
