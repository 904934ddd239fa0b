package logic

import (
	"strconv"
	"strings"
)

// Context is the read-only mapping every expression, template and pointer
// segment is evaluated against.
type Context map[string]any

type segKind int

const (
	segKey segKind = iota
	segIndex
	segSub
)

type segment struct {
	kind  segKind
	key   string
	index int
	sub   *Pointer
}

// Pointer addresses a value inside nested associative data. Segments are
// literal keys, literal indices, or sub-pointers resolved against the
// evaluation context immediately before use ("indirect" segments).
type Pointer struct {
	src  string
	segs []segment
}

// ParsePointer parses a textual path expression such as "user.name",
// "item[0]" or "item[n][a.b]" (bracketed non-integers are sub-pointers).
func ParsePointer(src string) (Pointer, error) {
	p := &pointerParser{src: src}
	segs, err := p.parse()
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{src: src, segs: segs}, nil
}

// MustParsePointer is ParsePointer that panics on error. For tests and
// statically known pointers.
func MustParsePointer(src string) Pointer {
	p, err := ParsePointer(src)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pointer) String() string {
	if p.src != "" {
		return p.src
	}
	var b strings.Builder
	for i, s := range p.segs {
		switch s.kind {
		case segKey:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.key)
		case segIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
		case segSub:
			b.WriteByte('[')
			b.WriteString(s.sub.String())
			b.WriteByte(']')
		}
	}
	return b.String()
}

// IsZero reports whether the pointer is empty (unparsed).
func (p Pointer) IsZero() bool { return len(p.segs) == 0 }

// Direct reports whether the pointer contains no indirect segments.
func (p Pointer) Direct() bool {
	for _, s := range p.segs {
		if s.kind == segSub {
			return false
		}
	}
	return true
}

// Path returns the literal segments of a direct pointer: string keys and
// int indices. It returns nil for indirect pointers.
func (p Pointer) Path() []any {
	if !p.Direct() {
		return nil
	}
	path := make([]any, 0, len(p.segs))
	for _, s := range p.segs {
		if s.kind == segKey {
			path = append(path, s.key)
		} else {
			path = append(path, s.index)
		}
	}
	return path
}

// Get traverses root and returns the addressed value. Missing intermediate
// containers, unresolved indirect segments and type mismatches all yield
// (nil, false) rather than an error.
func (p Pointer) Get(root any, ctx Context) (any, bool) {
	cur := root
	for _, seg := range p.segs {
		key, idx, isIndex, err := p.resolve(seg, ctx)
		if err != nil {
			return nil, false
		}
		if isIndex {
			s, ok := cur.([]any)
			if !ok || idx < 0 || idx >= len(s) {
				return nil, false
			}
			cur = s[idx]
			continue
		}
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set writes value at the pointer path, returning a new data tree.
// Containers along the path are copied, so the input tree is left intact
// and unchanged substructure is shared. Missing intermediate containers
// are created on demand; writing past the end of an existing sequence is
// a PointerError (appending at exactly its length is allowed).
func (p Pointer) Set(root map[string]any, ctx Context, value any) (map[string]any, error) {
	if len(p.segs) == 0 {
		return nil, &PointerError{Pointer: p.String(), Msg: "empty pointer"}
	}
	out, err := p.setIn(root, p.segs, ctx, value)
	if err != nil {
		return nil, err
	}
	m, ok := out.(map[string]any)
	if !ok {
		return nil, &PointerError{Pointer: p.String(), Msg: "root must be a mapping"}
	}
	return m, nil
}

func (p Pointer) setIn(cur any, segs []segment, ctx Context, value any) (any, error) {
	if len(segs) == 0 {
		return value, nil
	}
	seg := segs[0]
	key, idx, isIndex, err := p.resolve(seg, ctx)
	if err != nil {
		return nil, err
	}

	if isIndex {
		var s []any
		switch v := cur.(type) {
		case nil:
			// Fresh sequence, sized to hold the target index.
			s = make([]any, idx+1)
		case []any:
			if idx > len(v) {
				return nil, &PointerError{
					Pointer: p.String(),
					Msg:     "index " + strconv.Itoa(idx) + " out of range for sequence of length " + strconv.Itoa(len(v)),
				}
			}
			if idx == len(v) {
				s = make([]any, len(v)+1)
				copy(s, v)
			} else {
				s = make([]any, len(v))
				copy(s, v)
			}
		default:
			return nil, &PointerError{Pointer: p.String(), Msg: "cannot index into non-sequence value"}
		}
		child, err := p.setIn(s[idx], segs[1:], ctx, value)
		if err != nil {
			return nil, err
		}
		s[idx] = child
		return s, nil
	}

	var m map[string]any
	switch v := cur.(type) {
	case nil:
		m = make(map[string]any, 1)
	default:
		src, ok := asMap(v)
		if !ok {
			return nil, &PointerError{Pointer: p.String(), Msg: "cannot set key " + strconv.Quote(key) + " on non-mapping value"}
		}
		m = make(map[string]any, len(src)+1)
		for k, val := range src {
			m[k] = val
		}
	}
	child, err := p.setIn(m[key], segs[1:], ctx, value)
	if err != nil {
		return nil, err
	}
	m[key] = child
	return m, nil
}

// resolve turns a segment into a concrete key or index. Indirect segments
// are read from the evaluation context at this moment, never earlier.
func (p Pointer) resolve(seg segment, ctx Context) (key string, idx int, isIndex bool, err error) {
	switch seg.kind {
	case segKey:
		return seg.key, 0, false, nil
	case segIndex:
		return "", seg.index, true, nil
	}
	v, ok := seg.sub.Get(map[string]any(ctx), ctx)
	if !ok {
		return "", 0, false, &PointerError{
			Pointer: p.String(),
			Msg:     "indirect segment [" + seg.sub.String() + "] is not defined in the context",
		}
	}
	switch n := v.(type) {
	case int:
		return "", n, true, nil
	case int64:
		return "", int(n), true, nil
	case float64:
		if n != float64(int(n)) {
			return "", 0, false, &PointerError{Pointer: p.String(), Msg: "indirect index is not an integer"}
		}
		return "", int(n), true, nil
	case string:
		return n, 0, false, nil
	default:
		return "", 0, false, &PointerError{Pointer: p.String(), Msg: "indirect segment must resolve to an integer or string"}
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Context:
		return map[string]any(m), true
	default:
		return nil, false
	}
}

type pointerParser struct {
	src string
	pos int
}

func (p *pointerParser) errorf(msg string) error {
	return &SyntaxError{Src: p.src, Pos: p.pos, Msg: msg}
}

func (p *pointerParser) parse() ([]segment, error) {
	if strings.TrimSpace(p.src) == "" {
		return nil, p.errorf("empty pointer")
	}
	var segs []segment
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '.':
			if len(segs) == 0 {
				return nil, p.errorf("pointer cannot start with '.'")
			}
			p.pos++
			seg, err := p.parseKey()
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
		case c == '[':
			if len(segs) == 0 {
				return nil, p.errorf("pointer cannot start with '['")
			}
			seg, err := p.parseBracket()
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
		case len(segs) == 0:
			seg, err := p.parseKey()
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
		default:
			return nil, p.errorf("unexpected character " + strconv.QuoteRune(rune(c)))
		}
	}
	return segs, nil
}

func isKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

func (p *pointerParser) parseKey() (segment, error) {
	start := p.pos
	for p.pos < len(p.src) && isKeyChar(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return segment{}, p.errorf("empty segment")
	}
	key := p.src[start:p.pos]
	if key[0] >= '0' && key[0] <= '9' {
		return segment{}, p.errorf("segment cannot start with a digit")
	}
	return segment{kind: segKey, key: key}, nil
}

func (p *pointerParser) parseBracket() (segment, error) {
	open := p.pos
	p.pos++ // consume '['
	depth := 1
	start := p.pos
	for p.pos < len(p.src) && depth > 0 {
		switch p.src[p.pos] {
		case '[':
			depth++
		case ']':
			depth--
		}
		p.pos++
	}
	if depth != 0 {
		p.pos = open
		return segment{}, p.errorf("unbalanced '['")
	}
	inner := p.src[start : p.pos-1]
	if strings.TrimSpace(inner) == "" {
		p.pos = open
		return segment{}, p.errorf("empty brackets")
	}
	if idx, err := strconv.Atoi(inner); err == nil {
		if idx < 0 {
			p.pos = open
			return segment{}, p.errorf("negative index")
		}
		return segment{kind: segIndex, index: idx}, nil
	}
	sub, err := ParsePointer(inner)
	if err != nil {
		return segment{}, err
	}
	return segment{kind: segSub, sub: &sub}, nil
}
