package planschema

import (
	"regexp"
	"strings"
)

// fencedObjectPattern matches a JSON object inside a markdown code block.
var fencedObjectPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")

// ExtractObject returns the JSON object in a model reply, unwrapping a
// markdown code fence when present. The object text itself is never
// rewritten, so malformed JSON stays malformed.
func ExtractObject(content string) string {
	content = strings.TrimSpace(content)
	if m := fencedObjectPattern.FindStringSubmatch(content); len(m) > 1 {
		return m[1]
	}
	return content
}
