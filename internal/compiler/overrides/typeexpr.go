package overrides

import (
	"fmt"
	"strings"

	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
)

// RemoveExpr is the expression that marks an argument as removed.
const RemoveExpr = "remove"

// ParseOverride parses a method override expression, which is either a type
// expression or RemoveExpr.
func ParseOverride(expr string) (Override, error) {
	if strings.TrimSpace(expr) == RemoveExpr {
		return Override{Remove: true}, nil
	}
	d, err := ParseType(expr)
	if err != nil {
		return Override{}, err
	}
	return Override{Type: d}, nil
}

// ParseType parses a type expression:
//
//	string | integer | float | boolean | bytes | io-bytes | timestamp | any | none | stream
//	list<T> | iterator<T> | map<K,V> | union<T,...>
//	ref<Name> | resource<Name> | literal<Name:a|b|c>
func ParseType(expr string) (descriptor.Descriptor, error) {
	p := &typeParser{src: expr}
	d, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos:], p.pos)
	}
	return d, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		if p.pos >= len(p.src) {
			return fmt.Errorf("expected %q, got end of expression", c)
		}
		return fmt.Errorf("expected %q at offset %d", c, p.pos)
	}
	p.pos++
	return nil
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// until consumes up to (not including) the first of stops.
func (p *typeParser) until(stops string) string {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(stops, rune(p.src[p.pos])) {
		p.pos++
	}
	return strings.TrimSpace(p.src[start:p.pos])
}

func (p *typeParser) parseType() (descriptor.Descriptor, error) {
	name := p.ident()
	if name == "" {
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("empty type expression")
		}
		return nil, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos], p.pos)
	}

	p.skipSpace()
	if p.peek() != '<' {
		prim, ok := descriptor.LookupPrimitive(name)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", name)
		}
		return prim, nil
	}
	p.pos++

	switch name {
	case "list", "iterator":
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		if name == "iterator" {
			return descriptor.NewIterator(elem), nil
		}
		return descriptor.NewSequence(elem), nil

	case "map":
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		value, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return descriptor.NewMapping(key, value), nil

	case "union":
		var members []descriptor.Descriptor
		for {
			member, err := p.parseType()
			if err != nil {
				return nil, err
			}
			members = append(members, member)
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return descriptor.NewUnion(members...), nil

	case "ref", "resource":
		target := p.until(">")
		if target == "" {
			return nil, fmt.Errorf("%s<> requires a name", name)
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		if name == "resource" {
			return descriptor.NewResourceReference(target), nil
		}
		return descriptor.NewNamedReference(target), nil

	case "literal":
		literalName := p.until(":>")
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		raw := p.until(">")
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		var options []string
		for _, opt := range strings.Split(raw, "|") {
			if opt = strings.TrimSpace(opt); opt != "" {
				options = append(options, opt)
			}
		}
		if literalName == "" || len(options) == 0 {
			return nil, fmt.Errorf("literal<Name:a|b> requires a name and options")
		}
		return descriptor.NewEnum(literalName, options), nil
	}

	return nil, fmt.Errorf("unknown type constructor %q", name)
}
