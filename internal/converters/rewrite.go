package converters

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
)

// rewrite is a whole-value regular expression match followed by a
// capture-group substitution. A nil rewrite passes values through.
type rewrite struct {
	re       *regexp.Regexp
	template string
}

// compileRewrite builds a rewrite from a pattern and its replacement. An
// empty pattern yields nil. A pattern without replacement, or a replacement
// without pattern, is a configuration error.
//
// Replacements use $n and ${name} group references; \$ is a literal dollar.
func compileRewrite(pattern string, replacement *string, key string) (*rewrite, error) {
	if pattern == "" {
		if replacement != nil {
			return nil, fmt.Errorf("%s replacement without pattern: %w", key, domain.ErrInvalidConfig)
		}
		return nil, nil
	}
	if replacement == nil {
		return nil, fmt.Errorf("%s pattern %q without replacement: %w", key, pattern, domain.ErrInvalidConfig)
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("%s pattern %q: %v: %w", key, pattern, err, domain.ErrInvalidConfig)
	}
	template, err := expandTemplate(*replacement, re)
	if err != nil {
		return nil, fmt.Errorf("%s replacement %q: %w", key, *replacement, err)
	}
	return &rewrite{re: re, template: template}, nil
}

// Apply returns the substituted value, or false when value does not match
// the pattern in full.
func (r *rewrite) Apply(value string) (string, bool) {
	if r == nil {
		return value, true
	}
	m := r.re.FindStringSubmatchIndex(value)
	if m == nil {
		return "", false
	}
	return string(r.re.ExpandString(nil, r.template, value, m)), true
}

// expandTemplate turns a $n style replacement into a regexp.Expand template.
// Multi-digit references are read greedily for as long as the group exists,
// so "$12" means group 1 followed by "2" when there are fewer than 12 groups.
func expandTemplate(replacement string, re *regexp.Regexp) (string, error) {
	groups := re.NumSubexp()
	var b strings.Builder
	for i := 0; i < len(replacement); i++ {
		c := replacement[i]
		switch c {
		case '\\':
			i++
			if i == len(replacement) {
				return "", fmt.Errorf("trailing backslash: %w", domain.ErrInvalidConfig)
			}
			if replacement[i] == '$' {
				b.WriteString("$$")
			} else {
				b.WriteByte(replacement[i])
			}
		case '$':
			i++
			if i == len(replacement) {
				return "", fmt.Errorf("dangling $: %w", domain.ErrInvalidConfig)
			}
			if replacement[i] == '{' {
				end := strings.IndexByte(replacement[i:], '}')
				if end < 2 {
					return "", fmt.Errorf("malformed group name: %w", domain.ErrInvalidConfig)
				}
				name := replacement[i+1 : i+end]
				if re.SubexpIndex(name) < 0 {
					return "", fmt.Errorf("no group named %q: %w", name, domain.ErrInvalidConfig)
				}
				b.WriteString("${" + name + "}")
				i += end
				continue
			}
			if !isDigit(replacement[i]) {
				return "", fmt.Errorf("illegal group reference: %w", domain.ErrInvalidConfig)
			}
			n := int(replacement[i] - '0')
			if n > groups {
				return "", fmt.Errorf("no group %d: %w", n, domain.ErrInvalidConfig)
			}
			for i+1 < len(replacement) && isDigit(replacement[i+1]) {
				next := n*10 + int(replacement[i+1]-'0')
				if next > groups {
					break
				}
				n = next
				i++
			}
			fmt.Fprintf(&b, "${%d}", n)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
