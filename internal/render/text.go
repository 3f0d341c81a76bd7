package render

import (
	"fmt"
	"io"
	"strings"
)

// WriteText renders the page as plain text, alerts first
func WriteText(w io.Writer, page *Page) error {
	for _, a := range page.Alerts {
		if _, err := fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(a.Severity)), a.Message); err != nil {
			return err
		}
	}
	for i, c := range page.Results {
		line := fmt.Sprintf("%d. %s", i+1, c.Caption)
		if c.ImageSrc != "" && c.Data == nil {
			line += " " + string(c.ImageSrc)
		}
		if c.Data != nil {
			line += fmt.Sprintf(" (%d bytes inline)", len(c.Data))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
