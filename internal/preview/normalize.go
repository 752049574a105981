package preview

import (
	"fmt"
	"strings"
)

// documentShell wraps a fragment into a minimal standalone document. The
// application targets Hebrew-speaking users, so the shell carries RTL base
// styling.
const documentShell = `<!DOCTYPE html>
<html lang="he" dir="rtl">
<head>
  <meta charset="UTF-8">
  <title>תצוגה מקדימה</title>
  <style>
    body {
      direction: rtl;
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
      text-align: right;
    }
  </style>
</head>
<body>
%s
</body>
</html>`

// EnsureDocument converts a code artifact into a complete standalone
// document. Code that already starts with a document-root marker is assumed
// self-sufficient and returned unchanged; anything else is placed verbatim
// inside the body of the document shell. Every path that moves code from
// "extracted" to "rendered" must go through here, whether the code came
// from the chat or from the editor.
func EnsureDocument(code string) string {
	trimmed := strings.TrimSpace(code)
	if strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html") {
		return code
	}
	return fmt.Sprintf(documentShell, code)
}
