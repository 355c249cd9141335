package catalog

import "strings"

// JoinFQN joins name parts with the fqn separator. Parts are used as given.
func JoinFQN(parts ...string) string {
	return strings.Join(parts, ".")
}

// QuoteName quotes a name that contains the separator so the fqn stays
// splittable. Names already quoted are returned unchanged.
func QuoteName(name string) string {
	if strings.Contains(name, ".") && !(strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`)) {
		return `"` + name + `"`
	}
	return name
}

// BuildFQN joins parts, quoting each one that needs it. This is how the
// server names resources, and it may differ from JoinFQN.
func BuildFQN(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = QuoteName(p)
	}
	return JoinFQN(quoted...)
}

// SplitFQN splits an fqn into its parts, honoring quoted names.
func SplitFQN(fqn string) []string {
	var parts []string
	var b strings.Builder
	inQuotes := false
	for _, r := range fqn {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			b.WriteRune(r)
		case r == '.' && !inQuotes:
			parts = append(parts, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	return append(parts, b.String())
}

// IsChildOf reports whether fqn is a strict dot-extension of parent.
func IsChildOf(fqn, parent string) bool {
	return strings.HasPrefix(fqn, parent+".") && len(fqn) > len(parent)+1
}

// esReserved are the characters the search backend treats as operators.
const esReserved = `\[]#+=&|><!(){}^"~*?:/-`

// EscapeReserved backslash-escapes search reserved characters in term.
func EscapeReserved(term string) string {
	if !strings.ContainsAny(term, esReserved) {
		return term
	}
	var b strings.Builder
	b.Grow(len(term) * 2)
	for _, r := range term {
		if strings.ContainsRune(esReserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SearchTerm builds the wildcard query used to look up a resource by name.
func SearchTerm(name string) string {
	return "*" + EscapeReserved(name) + "*"
}
