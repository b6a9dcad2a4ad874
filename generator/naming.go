package generator

import (
	"go/token"
	"strings"
	"unicode"
)

// commonInitialisms are rendered in upper case, as golint expects.
var commonInitialisms = map[string]bool{
	"api": true, "id": true, "ip": true, "json": true, "sql": true,
	"uri": true, "url": true, "uuid": true, "http": true, "html": true,
}

// ToPascalCase converts a snake_case or camelCase name to an exported Go
// identifier: "user_name" -> "UserName", "id" -> "ID", "firstName" ->
// "FirstName". Names that would not start with a letter get an "X" prefix.
func ToPascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	var b strings.Builder
	for _, part := range parts {
		if commonInitialisms[strings.ToLower(part)] {
			b.WriteString(strings.ToUpper(part))
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	out := b.String()
	if out == "" {
		return ""
	}
	if first := []rune(out)[0]; !unicode.IsLetter(first) {
		out = "X" + out
	}
	return out
}

// ValidPackageName reports whether name can be used as a package clause.
func ValidPackageName(name string) bool {
	return token.IsIdentifier(name) && !token.IsKeyword(name) && name != "_"
}
