package siadctl

import (
	"fmt"
	"html"
	"io"
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

var anchorPattern = regexp.MustCompile(`(?s)<a\s[^>]*>(.*?)</a>`)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true).
			Padding(0, 1)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	bubbleStyle = lipgloss.NewStyle().
			Padding(0, 2).
			MarginBottom(1)
)

// plainText turns an HTML reply back into terminal text.
func plainText(reply string) string {
	return html.UnescapeString(anchorPattern.ReplaceAllString(reply, "$1"))
}

func printUser(w io.Writer, message string) {
	_, _ = fmt.Fprintln(w, userLabelStyle.Render("Você"))
	_, _ = fmt.Fprintln(w, bubbleStyle.Render(message))
}

func printAssistant(w io.Writer, reply string) {
	_, _ = fmt.Fprintln(w, assistantLabelStyle.Render("Siad.AI"))
	_, _ = fmt.Fprintln(w, bubbleStyle.Render(plainText(reply)))
}

func printNotices(w io.Writer, notices []string) {
	for _, notice := range notices {
		_, _ = fmt.Fprintln(w, noticeStyle.Render("! "+notice))
	}
}
