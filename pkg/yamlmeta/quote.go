// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// unescapeQuoted decodes the body of a double-quoted scalar (the bytes
// between the opening and closing '"', not yet consumed), honoring the
// escape set \" \\ \a \b \e \f \n \r \t \v \uNNNN. Returns the decoded
// string and the number of source bytes consumed from body up to and
// including the closing quote, or an error.
func unescapeQuoted(body string) (string, int, error) {
	var out strings.Builder
	i := 0
	for i < len(body) {
		c := body[i]
		if c == '"' {
			return out.String(), i + 1, nil
		}
		if c == '\n' {
			return "", 0, fmt.Errorf("missing closing quote")
		}
		if c != '\\' {
			out.WriteByte(c)
			i++
			continue
		}

		if i+1 >= len(body) {
			return "", 0, fmt.Errorf("missing closing quote")
		}
		esc := body[i+1]
		switch esc {
		case '"':
			out.WriteByte('"')
			i += 2
		case '\\':
			out.WriteByte('\\')
			i += 2
		case 'a':
			out.WriteByte('\a')
			i += 2
		case 'b':
			out.WriteByte('\b')
			i += 2
		case 'e':
			out.WriteByte(0x1b)
			i += 2
		case 'f':
			out.WriteByte('\f')
			i += 2
		case 'n':
			out.WriteByte('\n')
			i += 2
		case 'r':
			out.WriteByte('\r')
			i += 2
		case 't':
			out.WriteByte('\t')
			i += 2
		case 'v':
			out.WriteByte('\v')
			i += 2
		case 'u':
			if i+6 > len(body) {
				return "", 0, fmt.Errorf("invalid backslash")
			}
			var r rune
			if _, err := fmt.Sscanf(body[i+2:i+6], "%04x", &r); err != nil {
				return "", 0, fmt.Errorf("invalid backslash")
			}
			out.WriteRune(r)
			i += 6
		default:
			return "", 0, fmt.Errorf("invalid backslash")
		}
	}
	return "", 0, fmt.Errorf("missing closing quote")
}

// escapeQuoted re-escapes a string for quoted output: the same escape set
// unescapeQuoted understands, plus \uNNNN for any rune outside the ASCII
// printable range.
func escapeQuoted(s string) string {
	var out strings.Builder
	out.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			out.WriteString(`\"`)
		case '\\':
			out.WriteString(`\\`)
		case '\a':
			out.WriteString(`\a`)
		case '\b':
			out.WriteString(`\b`)
		case 0x1b:
			out.WriteString(`\e`)
		case '\f':
			out.WriteString(`\f`)
		case '\n':
			out.WriteString(`\n`)
		case '\r':
			out.WriteString(`\r`)
		case '\t':
			out.WriteString(`\t`)
		case '\v':
			out.WriteString(`\v`)
		default:
			if r < 0x20 || r > 0x7e {
				fmt.Fprintf(&out, `\u%04x`, r)
			} else {
				out.WriteRune(r)
			}
		}
	}
	out.WriteByte('"')
	return out.String()
}

// NeedsQuoting implements the packer's scalar quoting decision: a string
// must be quoted if it is empty; starts with any of !&*-"{[#.; contains :
// or # or a non-printable byte; starts or ends with a space; or equals ~
// or null.
func NeedsQuoting(s string) bool {
	if s == "" {
		return true
	}
	if strings.ContainsAny(string(s[0]), `!&*-"{[#.`) {
		return true
	}
	if strings.ContainsAny(s, ":#") {
		return true
	}
	if strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		return true
	}
	if s == "~" || s == "null" {
		return true
	}
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return true
		}
	}
	return false
}

// FormatScalarString renders a string scalar for packer output, quoting it
// when NeedsQuoting requires it.
func FormatScalarString(s string) string {
	if NeedsQuoting(s) {
		return escapeQuoted(s)
	}
	return s
}

// FormatScalarLiteral renders a non-string scalar (null, bool, uint, int,
// double) for packer output. Null packs as "~", doubles use the ".Inf"/
// "-.Inf"/".NaN" spellings rather than the parser's lowercase input
// spellings.
func FormatScalarLiteral(kind ScalarKind, value interface{}) string {
	switch kind {
	case ScalarNull:
		return "~"
	case ScalarBool:
		if value.(bool) {
			return "true"
		}
		return "false"
	case ScalarUint:
		return strconv.FormatUint(value.(uint64), 10)
	case ScalarInt:
		return strconv.FormatInt(value.(int64), 10)
	case ScalarDouble:
		return formatDouble(value.(float64))
	default:
		return ""
	}
}

func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".Inf"
	case math.IsInf(f, -1):
		return "-.Inf"
	case math.IsNaN(f):
		return ".NaN"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
