// Package extraction turns a photographed donation form into a name and amount.
//
// A vision model is asked to answer with "Name: ..." and "Amount: ..." lines;
// ParseFields reads that text back leniently, since models rarely follow the
// format exactly.
package extraction

import "strings"

// Fields are the values read off one form. Either may be empty.
type Fields struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// ParseFields scans "Key: Value" lines. Keys containing "name" set the name,
// keys containing "amount" set the amount. Later lines win. Lines without a
// colon are ignored.
func ParseFields(text string) Fields {
	var f Fields
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch {
		case strings.Contains(key, "name"):
			f.Name = value
		case strings.Contains(key, "amount"):
			f.Amount = CleanAmount(value)
		}
	}
	return f
}

// CleanAmount keeps digits and the first decimal point, e.g.
// "$1,234.50 USD" becomes "1234.50".
func CleanAmount(value string) string {
	var b strings.Builder
	seenDot := false
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		}
	}
	return b.String()
}
