// Package partials loads partial files and renders them with parameters:
// the optional `{{ k="v" }}` first line supplies defaults, call-site
// overrides win, and `{{ name }}` placeholders are replaced in the body.
package partials

import (
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-partials/internal/params"
)

// Document is a partial split into its body and the defaults declared on its
// first line. The defaults line is never part of Body.
type Document struct {
	Body     string
	Defaults params.Assignments
}

// Parse splits partial text into a Document. The first line is removed only
// when it declares at least one default.
func Parse(text string) (Document, error) {
	if text == "" {
		return Document{Defaults: params.Assignments{}}, nil
	}

	defaults, err := params.ParseParamDefaults(text)
	if err != nil {
		return Document{}, err
	}
	if len(defaults) == 0 {
		return Document{Body: text, Defaults: defaults}, nil
	}

	body := ""
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		body = text[idx+1:]
	}
	return Document{Body: body, Defaults: defaults}, nil
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([\w-]+)\s*\}\}`)

// Substitute replaces every `{{ name }}` placeholder with its value.
// Placeholders without a value are left untouched and their names returned
// sorted and de-duplicated.
func Substitute(body string, values map[string]string) (string, []string) {
	missing := map[string]struct{}{}
	out := placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := values[name]; ok {
			return value
		}
		missing[name] = struct{}{}
		return match
	})

	if len(missing) == 0 {
		return out, nil
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return out, names
}
