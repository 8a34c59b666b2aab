package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var errNotList = errors.New("skill tags are not a list literal")

// ParseSkillTags decodes the textual list literal stored in the skill_tags
// column, e.g. ['Python', "Data Analysis"]. Non-string elements (numbers,
// None) are skipped. Duplicate tags collapse; first occurrence order is kept.
// A blank cell is an empty list.
func ParseSkillTags(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, errNotList
	}

	p := &literalParser{src: s[1 : len(s)-1]}
	var tags []string
	seen := make(map[string]struct{})
	for {
		p.skipSpace()
		if p.done() {
			break
		}
		str, isString, err := p.element()
		if err != nil {
			return nil, err
		}
		if isString {
			if _, dup := seen[str]; !dup {
				seen[str] = struct{}{}
				tags = append(tags, str)
			}
		}
		p.skipSpace()
		if p.done() {
			break
		}
		if p.src[p.pos] != ',' {
			return nil, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos], p.pos+1)
		}
		p.pos++
	}
	return tags, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) done() bool { return p.pos >= len(p.src) }

func (p *literalParser) skipSpace() {
	for !p.done() && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

// element reads one list element. Quoted elements return isString=true.
func (p *literalParser) element() (string, bool, error) {
	c := p.src[p.pos]
	if c == '\'' || c == '"' {
		s, err := p.quoted(c)
		return s, true, err
	}
	start := p.pos
	for !p.done() && p.src[p.pos] != ',' {
		switch p.src[p.pos] {
		case '[', ']', '{', '}', '(', ')', '\'', '"':
			return "", false, fmt.Errorf("unsupported element at offset %d", start+1)
		}
		p.pos++
	}
	if strings.TrimSpace(p.src[start:p.pos]) == "" {
		return "", false, fmt.Errorf("empty element at offset %d", start+1)
	}
	return "", false, nil
}

func (p *literalParser) quoted(q byte) (string, error) {
	start := p.pos
	p.pos++
	var b strings.Builder
	for !p.done() {
		c := p.src[p.pos]
		switch {
		case c == q:
			p.pos++
			return b.String(), nil
		case c == '\\' && p.pos+1 < len(p.src):
			p.pos++
			switch e := p.src[p.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
		p.pos++
	}
	return "", fmt.Errorf("unterminated string starting at offset %d", start+1)
}
