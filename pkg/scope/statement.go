package scope

import "strings"

// splitStatements splits on ';' outside quotes and brackets.
func splitStatements(src string) []string {
	var out []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ';' && depth == 0:
			if s := strings.TrimSpace(src[start:i]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(src[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// splitAssignment recognizes "name = expr" where name is a plain identifier.
func splitAssignment(stmt string) (name, rhs string, ok bool) {
	i := strings.IndexByte(stmt, '=')
	if i <= 0 || i+1 >= len(stmt) || stmt[i+1] == '=' {
		return "", "", false
	}
	switch stmt[i-1] {
	case '!', '<', '>', '=':
		return "", "", false
	}
	name = strings.TrimSpace(stmt[:i])
	if !isIdent(name) {
		return "", "", false
	}
	return name, strings.TrimSpace(stmt[i+1:]), true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		letter := c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !letter && (i == 0 || c < '0' || c > '9') {
			return false
		}
	}
	return true
}
