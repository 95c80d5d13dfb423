package llm

import (
	"bytes"
	"regexp"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/exitexam/internal/model"
)

var questionTagRegex = regexp.MustCompile(`(?i)</?\s*(question|system-instructions)\b[^>]*>`)

const maxFieldRunes = 4000

var explanationTemplate = template.Must(template.New("explanation").Funcs(template.FuncMap{
	"letter": func(i int) string { return string(rune('A' + i)) },
}).Parse(
	`<system-instructions>
You write short explanations for a multiple-choice exam in {{.Subject}}.
Explain in two or three sentences why the correct answer is correct and,
where useful, why a tempting wrong option is wrong. Do not restate the question.
Respond ONLY with a JSON object: {"explanation": "<text>"}
</system-instructions>

<question>
{{.Text}}
{{range $i, $o := .Options}}
{{$i | letter}}) {{$o}}{{end}}

Correct answer: {{.CorrectAnswer}}
</question>
`))

type explanationData struct {
	Subject       string
	Text          string
	Options       []string
	CorrectAnswer string
}

// buildExplanationPrompt renders the drafting prompt for q. Bank content is
// stripped of prompt delimiters and truncated.
func buildExplanationPrompt(q model.Question) (string, error) {
	data := explanationData{
		Subject:       sanitize(q.Subject),
		Text:          sanitize(q.Text),
		CorrectAnswer: sanitize(q.CorrectAnswer),
	}
	for _, o := range q.Options {
		data.Options = append(data.Options, sanitize(o))
	}

	var buf bytes.Buffer
	if err := explanationTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitize(s string) string {
	s = questionTagRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxFieldRunes {
		s = string([]rune(s)[:maxFieldRunes]) + " [truncated]"
	}
	return s
}
