package validation

import (
	"regexp"
	"strconv"
	"strings"
)

// Violation is the first schema error reported for a document.
type Violation struct {
	// Line is the 1-based line in the document, or 0 when unknown.
	Line int `json:"line,omitempty"`

	// Element is the offending element name, when the validator named one.
	Element string `json:"element,omitempty"`

	// Value is the rejected text, when it could be recovered.
	Value string `json:"value,omitempty"`

	// Message is the validator's description without the location prefix.
	Message string `json:"message"`

	// Raw is the validator output as received.
	Raw string `json:"raw"`
}

var (
	// -:12: element ZIP: Schemas validity error : Element 'ZIP': [facet 'pattern'] ...
	lintLineRe = regexp.MustCompile(`^(.*?):(\d+): (?:element (\S+): )?[A-Za-z ]*error\s*:\s*(.*)$`)

	elementNameRe = regexp.MustCompile(`Element '([^']+)'`)

	valuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`value '([^']*)'`),
		regexp.MustCompile(`value "([^"]*)"`),
		regexp.MustCompile(`'([^']*)' is not a valid value`),
	}
)

// ParseLintOutput extracts the first error from xmllint diagnostics. Lines
// that do not carry a location, such as the trailing "fails to validate"
// summary, are skipped unless nothing else is present.
func ParseLintOutput(output string) Violation {
	v := Violation{Raw: strings.TrimSpace(output)}

	var fallback string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := lintLineRe.FindStringSubmatch(line)
		if m == nil {
			if fallback == "" {
				fallback = line
			}
			continue
		}

		v.Line, _ = strconv.Atoi(m[2])
		v.Element = m[3]
		v.Message = strings.TrimSpace(m[4])
		if v.Element == "" {
			if em := elementNameRe.FindStringSubmatch(v.Message); em != nil {
				v.Element = em[1]
			}
		}
		v.Value = extractValue(v.Message)
		return v
	}

	v.Message = fallback
	v.Value = extractValue(fallback)
	return v
}

func extractValue(message string) string {
	for _, re := range valuePatterns {
		if m := re.FindStringSubmatch(message); m != nil {
			return m[1]
		}
	}
	return ""
}

// valueFromDocument reads the text of element on the given line of doc.
func valueFromDocument(doc []byte, line int, element string) (string, bool) {
	if line <= 0 || element == "" {
		return "", false
	}
	lines := strings.Split(string(doc), "\n")
	if line > len(lines) {
		return "", false
	}
	re := regexp.MustCompile(`<` + regexp.QuoteMeta(element) + `>([^<]*)</` + regexp.QuoteMeta(element) + `>`)
	m := re.FindStringSubmatch(lines[line-1])
	if m == nil {
		return "", false
	}
	return m[1], true
}
