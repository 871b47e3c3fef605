package bibtex

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// ParseError reports a syntax problem with its byte offset and, when
// known, the citation key of the entry being parsed.
type ParseError struct {
	Offset int
	Key    string
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("bibtex: entry %s: %s (offset %d)", e.Key, e.Msg, e.Offset)
	}
	return fmt.Sprintf("bibtex: %s (offset %d)", e.Msg, e.Offset)
}

// ParseFile parses a .bib file into entries.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse parses BibTeX source into entries, in source order.
//
// @comment and @preamble blocks are skipped. @string macros are
// recorded and substituted into bare (unbraced, unquoted) field values.
// Field names are lowercased; values are trimmed and have runs of
// internal whitespace collapsed to single spaces.
func Parse(r io.Reader) ([]Entry, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	p := &parser{src: string(src), macros: make(map[string]string)}
	return p.parse()
}

type parser struct {
	src    string
	pos    int
	macros map[string]string
}

func (p *parser) parse() ([]Entry, error) {
	var entries []Entry

	for {
		// Everything outside @...{...} blocks is commentary.
		at := strings.IndexByte(p.src[p.pos:], '@')
		if at < 0 {
			return entries, nil
		}
		p.pos += at + 1

		kind := strings.ToLower(p.ident())
		if kind == "" {
			return nil, p.errf("expected entry type after @")
		}

		switch kind {
		case "comment", "preamble":
			if err := p.skipBlock(); err != nil {
				return nil, err
			}
		case "string":
			if err := p.parseString(); err != nil {
				return nil, err
			}
		default:
			entry, err := p.parseEntry(kind)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}
}

// parseEntry parses @type{key, name = value, ...}.
func (p *parser) parseEntry(kind string) (Entry, error) {
	if !p.expect('{') {
		return Entry{}, p.errf("expected { after @%s", kind)
	}

	p.skipSpace()
	key := p.until(",}")
	key = strings.TrimSpace(key)
	if key == "" {
		return Entry{}, p.errf("missing citation key in @%s entry", kind)
	}

	entry := Entry{Key: key, Type: kind}

	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return entry, nil
		}
		if p.peek() == ',' {
			p.pos++
			p.skipSpace()
			// Trailing comma before closing brace is common.
			if p.peek() == '}' {
				p.pos++
				return entry, nil
			}
		}

		name := strings.ToLower(p.ident())
		if name == "" {
			return Entry{}, p.keyErrf(key, "expected field name")
		}

		p.skipSpace()
		if !p.expect('=') {
			return Entry{}, p.keyErrf(key, "expected = after field %q", name)
		}

		value, err := p.parseValue(key)
		if err != nil {
			return Entry{}, err
		}

		entry.Fields = append(entry.Fields, Field{Name: name, Value: collapseSpace(value)})
	}
}

// parseValue parses a field value: braced, quoted, or bare parts joined
// with the # concatenation operator.
func (p *parser) parseValue(key string) (string, error) {
	var b strings.Builder

	for {
		p.skipSpace()
		switch c := p.peek(); {
		case c == '{':
			part, err := p.braced()
			if err != nil {
				return "", p.keyErrf(key, "%v", err)
			}
			b.WriteString(part)
		case c == '"':
			part, err := p.quoted()
			if err != nil {
				return "", p.keyErrf(key, "%v", err)
			}
			b.WriteString(part)
		default:
			bare := p.until(",}#\n")
			bare = strings.TrimSpace(bare)
			if bare == "" {
				return "", p.keyErrf(key, "empty field value")
			}
			// Bare values are macro references or numbers.
			if val, ok := p.macros[strings.ToLower(bare)]; ok {
				b.WriteString(val)
			} else {
				b.WriteString(bare)
			}
		}

		p.skipSpace()
		if p.peek() != '#' {
			return b.String(), nil
		}
		p.pos++
	}
}

// parseString parses @string{name = value}.
func (p *parser) parseString() error {
	if !p.expect('{') {
		return p.errf("expected { after @string")
	}
	p.skipSpace()

	name := strings.ToLower(p.ident())
	if name == "" {
		return p.errf("expected macro name in @string")
	}

	p.skipSpace()
	if !p.expect('=') {
		return p.errf("expected = in @string")
	}

	value, err := p.parseValue("@string " + name)
	if err != nil {
		return err
	}
	p.macros[name] = collapseSpace(value)

	p.skipSpace()
	if !p.expect('}') {
		return p.errf("unterminated @string")
	}
	return nil
}

// skipBlock skips a balanced {...} block (@comment, @preamble).
func (p *parser) skipBlock() error {
	p.skipSpace()
	if p.peek() != '{' {
		return nil // bare @comment with no block
	}
	_, err := p.braced()
	if err != nil {
		return p.errf("%v", err)
	}
	return nil
}

// braced consumes a {...} group, returning its contents with the outer
// braces removed and nested braces preserved.
func (p *parser) braced() (string, error) {
	start := p.pos
	depth := 0
	for i := p.pos; i < len(p.src); i++ {
		switch p.src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				p.pos = i + 1
				return p.src[start+1 : i], nil
			}
		}
	}
	p.pos = len(p.src)
	return "", fmt.Errorf("unbalanced braces")
}

// quoted consumes a "..." value. Braces inside quotes protect literal
// quote characters, per BibTeX convention.
func (p *parser) quoted() (string, error) {
	start := p.pos
	depth := 0
	for i := p.pos + 1; i < len(p.src); i++ {
		switch p.src[i] {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				p.pos = i + 1
				return p.src[start+1 : i], nil
			}
		}
	}
	p.pos = len(p.src)
	return "", fmt.Errorf("unterminated quoted value")
}

// ident consumes an identifier (entry type, field name, macro name).
func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) || c == '_' || c == '-' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// until consumes characters up to (not including) any byte in stop.
func (p *parser) until(stop string) string {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(stop, rune(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c byte) bool {
	p.skipSpace()
	if p.peek() != c {
		return false
	}
	p.pos++
	return true
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) errf(format string, args ...interface{}) error {
	return &ParseError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) keyErrf(key, format string, args ...interface{}) error {
	return &ParseError{Offset: p.pos, Key: key, Msg: fmt.Sprintf(format, args...)}
}

// collapseSpace trims a value and collapses internal whitespace runs
// (including line breaks from wrapped .bib files) to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
