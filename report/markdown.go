package report

import (
	"strings"
)

// markdownEscaper backslash-escapes the punctuation goldmark would read as markup
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
	"!", `\!`,
	"~", `\~`,
	"&", `\&`,
)

// EscapeMarkdown escapes s for use as literal inline markdown text
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Markdown renders the document as markdown: the title as a level one
// heading, the header lines as paragraphs and every section as a level two
// heading followed by one "**Label** : Value" paragraph per line.
func Markdown(doc Document) string {
	var sb strings.Builder

	sb.WriteString("# " + EscapeMarkdown(doc.Title) + "\n\n")
	for _, h := range doc.Header {
		sb.WriteString(EscapeMarkdown(h) + "\n\n")
	}

	for _, s := range doc.Sections {
		sb.WriteString("## " + EscapeMarkdown(s.Heading) + "\n\n")
		for _, l := range s.Lines {
			sb.WriteString("**" + EscapeMarkdown(l.Label) + "** : " + EscapeMarkdown(l.Value) + "\n\n")
		}
	}

	return sb.String()
}
