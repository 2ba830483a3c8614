package link

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var linkageWords = map[string]Linkage{
	"external":     External,
	"weak":         Weak,
	"weak_odr":     Weak,
	"linkonce":     Weak,
	"linkonce_odr": Weak,
	"common":       Weak,
	"private":      Local,
	"internal":     Local,
}

// Parse reads one module payload. name identifies the module in the unit and
// in errors; when empty, the payload's ModuleID header is used.
func Parse(name string, src []byte) (*Unit, error) {
	p := parser{name: name, lines: strings.Split(string(src), "\n")}
	return p.parse()
}

type parser struct {
	name   string
	lines  []string
	linked []string
	u      *Unit
}

func (p *parser) fail(line int, format string, args ...any) error {
	return &Error{Kind: ErrSyntax, Module: p.name, Line: line + 1, Detail: fmt.Sprintf(format, args...)}
}

func (p *parser) parse() (*Unit, error) {
	if p.name == "" {
		p.name = moduleID(p.lines)
	}
	p.u = newUnit(p.name)

	for i := 0; i < len(p.lines); i++ {
		line := strings.TrimRight(p.lines[i], " \t\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case strings.HasPrefix(trimmed, ";"):
			p.comment(trimmed)
		case strings.HasPrefix(trimmed, "source_filename"):
		case strings.HasPrefix(trimmed, "target datalayout"):
			v, err := quotedValue(trimmed)
			if err != nil {
				return nil, p.fail(i, "bad data layout: %v", err)
			}
			p.u.layout, p.u.layoutFrom = v, p.name
		case strings.HasPrefix(trimmed, "target triple"):
			v, err := quotedValue(trimmed)
			if err != nil {
				return nil, p.fail(i, "bad triple: %v", err)
			}
			p.u.triple = v
		case strings.HasPrefix(trimmed, "declare "):
			sym, err := p.declaration(i, trimmed)
			if err != nil {
				return nil, err
			}
			p.u.declare(sym)
		case strings.HasPrefix(trimmed, "define "):
			end, sym, err := p.definition(i)
			if err != nil {
				return nil, err
			}
			if err := p.add(i, sym); err != nil {
				return nil, err
			}
			i = end
		case strings.HasPrefix(trimmed, "@"):
			sym, decl, err := p.global(i, trimmed)
			if err != nil {
				return nil, err
			}
			if decl {
				p.u.declare(sym)
				continue
			}
			if err := p.add(i, sym); err != nil {
				return nil, err
			}
		default:
			return nil, p.fail(i, "unsupported top-level entity %q", firstWord(trimmed))
		}
	}

	if len(p.linked) > 0 {
		p.u.modules = p.linked
	} else {
		p.u.modules = []string{p.name}
	}
	return p.u, nil
}

func (p *parser) comment(line string) {
	body := strings.TrimSpace(strings.TrimPrefix(line, ";"))
	if rest, ok := strings.CutPrefix(body, "linked:"); ok {
		for _, m := range strings.Split(rest, ",") {
			if m = strings.TrimSpace(m); m != "" {
				p.linked = append(p.linked, m)
			}
		}
	}
}

func (p *parser) add(line int, sym *Symbol) error {
	if prev := p.u.define(sym); prev != nil {
		return p.fail(line, "symbol @%s defined twice", sym.Name)
	}
	return nil
}

func (p *parser) declaration(line int, text string) (*Symbol, error) {
	name, err := symbolName(text)
	if err != nil {
		return nil, p.fail(line, "declare: %v", err)
	}
	return &Symbol{Name: name, Kind: Function, Linkage: External, Module: p.name, Text: text}, nil
}

// definition consumes a function from the header line to the closing brace
// and returns the index of the last line.
func (p *parser) definition(start int) (int, *Symbol, error) {
	header := strings.TrimSpace(p.lines[start])
	if !strings.HasSuffix(header, "{") {
		return 0, nil, p.fail(start, "define without a body")
	}
	name, err := symbolName(header)
	if err != nil {
		return 0, nil, p.fail(start, "define: %v", err)
	}
	fields := strings.Fields(header)
	linkage := External
	if len(fields) > 1 {
		if l, ok := linkageWords[fields[1]]; ok {
			linkage = l
		}
	}

	for end := start + 1; end < len(p.lines); end++ {
		if strings.TrimRight(p.lines[end], " \t\r") == "}" {
			body := make([]string, 0, end-start+1)
			for _, l := range p.lines[start : end+1] {
				body = append(body, strings.TrimRight(l, " \t\r"))
			}
			return end, &Symbol{
				Name:    name,
				Kind:    Function,
				Linkage: linkage,
				Module:  p.name,
				Text:    strings.Join(body, "\n"),
			}, nil
		}
	}
	return 0, nil, p.fail(start, "unterminated body of @%s", name)
}

// global parses "@name = [linkage] ... global|constant ...". An explicit
// external or extern_weak linkage never carries an initializer, so such a
// line only references a variable defined elsewhere and decl is true.
func (p *parser) global(line int, text string) (sym *Symbol, decl bool, err error) {
	name, err := symbolName(text)
	if err != nil {
		return nil, false, p.fail(line, "global: %v", err)
	}
	_, rhs, ok := strings.Cut(text, "=")
	if !ok {
		return nil, false, p.fail(line, "global @%s without initializer", name)
	}
	linkage := External
	isVar := false
	for _, w := range strings.Fields(rhs) {
		if w == "external" || w == "extern_weak" {
			decl = true
			continue
		}
		if l, ok := linkageWords[w]; ok {
			linkage = l
			continue
		}
		if w == "global" || w == "constant" {
			isVar = true
			break
		}
	}
	if !isVar {
		return nil, false, p.fail(line, "@%s is neither global nor constant", name)
	}
	return &Symbol{Name: name, Kind: Global, Linkage: linkage, Module: p.name, Text: text}, decl, nil
}

// symbolName returns the first @-name in s.
func symbolName(s string) (string, error) {
	at := strings.IndexByte(s, '@')
	if at < 0 {
		return "", errors.New("no symbol name")
	}
	rest := s[at+1:]
	if strings.HasPrefix(rest, `"`) {
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return "", errors.New("unterminated quoted name")
		}
		return rest[1 : end+1], nil
	}
	n := 0
	for n < len(rest) && isNameChar(rest[n]) {
		n++
	}
	if n == 0 {
		return "", errors.New("empty symbol name")
	}
	return rest[:n], nil
}

func isNameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '.', c == '$', c == '-':
		return true
	}
	return false
}

func quotedValue(line string) (string, error) {
	_, v, ok := strings.Cut(line, "=")
	if !ok {
		return "", errors.New("missing '='")
	}
	return strconv.Unquote(strings.TrimSpace(v))
}

func moduleID(lines []string) string {
	for _, l := range lines {
		l = strings.TrimSpace(l)
		rest, ok := strings.CutPrefix(l, "; ModuleID =")
		if !ok {
			continue
		}
		return strings.Trim(strings.TrimSpace(rest), "'")
	}
	return ""
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return s
}
