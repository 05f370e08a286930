package types

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/gnolang/effectlint/internal/syntax"
)

// Issue represents a lint issue found in the code base.
type Issue struct {
	Rule       string
	Category   string
	Filename   string
	MessageID  string
	Message    string
	Suggestion string
	Note       string
	Start      token.Position
	End        token.Position
	Fix        *TextEdit
	Confidence float64 // 0.0 to 1.0, used by the fixer
	Severity   Severity
}

// TextEdit replaces the bytes in Range with NewText.
type TextEdit struct {
	Range   syntax.Range
	NewText string
}

// Severity of a lint issue.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity parses a severity name, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return SeverityError, nil
	case "WARNING", "WARN":
		return SeverityWarning, nil
	case "INFO":
		return SeverityInfo, nil
	case "OFF":
		return SeverityOff, nil
	default:
		return SeverityError, fmt.Errorf("unknown severity %q", s)
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ConfigRule is the per-rule section of the configuration file.
type ConfigRule struct {
	Severity Severity       `yaml:"severity"`
	Data     map[string]any `yaml:"data,omitempty"`
}

// Position converts a syntax position into a token.Position for filename.
func Position(filename string, p syntax.Position) token.Position {
	return token.Position{
		Filename: filename,
		Offset:   p.Offset,
		Line:     p.Line,
		Column:   p.Column,
	}
}
