package preview

import (
	"regexp"
	"strings"
)

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// voidElements never take a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// UnclosedTags scans markup for start tags with no matching closing tag
// later in the source and returns their names in source order. Closing
// tags, self-closing tags, void elements, comments and the doctype are
// skipped. The scan is a heuristic over raw text, not a full parse: it
// flags likely truncation, it does not prove well-formedness.
func UnclosedTags(html string) []string {
	var unclosed []string

	locations := tagRegex.FindAllStringIndex(html, -1)
	for _, loc := range locations {
		tag := html[loc[0]:loc[1]]
		if strings.HasPrefix(tag, "</") || strings.HasPrefix(tag, "<!") || strings.HasSuffix(tag, "/>") {
			continue
		}

		name := tagName(tag)
		if name == "" || voidElements[name] {
			continue
		}

		rest := strings.ToLower(html[loc[1]:])
		if !hasClosingTag(rest, name) {
			unclosed = append(unclosed, name)
		}
	}

	return unclosed
}

// tagName extracts the lowercased element name from a raw start tag.
func tagName(tag string) string {
	body := strings.TrimPrefix(tag, "<")
	end := strings.IndexFunc(body, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '>' || r == '/'
	})
	if end == -1 {
		return ""
	}
	return strings.ToLower(body[:end])
}

func hasClosingTag(lowerRest, name string) bool {
	search := lowerRest
	for {
		i := strings.Index(search, "</"+name)
		if i == -1 {
			return false
		}
		after := search[i+len("</"+name):]
		trimmed := strings.TrimLeft(after, " \t\n")
		if strings.HasPrefix(trimmed, ">") {
			return true
		}
		search = after
	}
}
