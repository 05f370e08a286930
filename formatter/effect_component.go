package formatter

// EffectComponentFormatter shows only the first line of the flagged
// declaration; whole component bodies are rarely useful in the report.
type EffectComponentFormatter struct{}

func (f *EffectComponentFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .StartLine .MaxLineNumWidth .CommonIndent .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .StartLine .StartColumn (firstLineEnd .SnippetLines .StartLine .EndLine .EndColumn) .SnippetLines .CommonIndent -}}
{{suggestion .Suggestion .Padding .MaxLineNumWidth .SuggestionLine .CommonIndent -}}
{{note .Note}}
`
}
