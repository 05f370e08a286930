package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/effectlint/internal/syntax"
)

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"ERROR", SeverityError, false},
		{"warning", SeverityWarning, false},
		{"warn", SeverityWarning, false},
		{" Info ", SeverityInfo, false},
		{"OFF", SeverityOff, false},
		{"fatal", SeverityError, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeverity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigRuleYAML(t *testing.T) {
	t.Parallel()

	src := `
severity: WARNING
data:
  suffix: Effect
`
	var rule ConfigRule
	require.NoError(t, yaml.Unmarshal([]byte(src), &rule))
	assert.Equal(t, SeverityWarning, rule.Severity)
	assert.Equal(t, "Effect", rule.Data["suffix"])

	out, err := yaml.Marshal(ConfigRule{Severity: SeverityWarning})
	require.NoError(t, err)
	assert.Equal(t, "severity: WARNING\n", string(out))
}

func TestPosition(t *testing.T) {
	t.Parallel()

	p := Position("a.tsx", syntax.Position{Offset: 7, Line: 2, Column: 3})
	assert.Equal(t, "a.tsx:2:3", p.String())
	assert.Equal(t, 7, p.Offset)
}
