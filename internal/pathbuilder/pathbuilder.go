// Package pathbuilder implements spec.md §4.3's current_path operation: a
// scan-only pass over a token.Token stream that reports the element path
// at an arbitrary byte position without ever building a DOM. It is
// grounded on the teacher's internal/parser's LL(1) lookahead style
// (track just enough state to make the next decision, never backtrack),
// generalized from AST-node construction to path-string accumulation.
package pathbuilder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shapestone/shape-core/pkg/ast"

	"github.com/shapestone/xmlindent/internal/token"
	"github.com/shapestone/xmlindent/internal/tokenizer"
)

// Mode selects which path components current_path includes. Modes
// combine freely: WithNamespace | WithIndex | WithIdentity is valid.
type Mode uint8

const (
	// NameOnly renders "a/b/c".
	NameOnly Mode = 0
	// WithNamespace keeps the element's namespace prefix in its name,
	// e.g. "ns:a/ns:b" instead of stripping it to "a/b".
	WithNamespace Mode = 1 << iota
	// WithIndex appends "[n]", the element's 1-based position among
	// same-named siblings, when n > 1, e.g. "a/b[2]/c". The first of
	// several same-named siblings renders without an index, since siblings
	// after the scanned position are not yet known.
	WithIndex
	// WithIdentity embeds an element's registered identity attribute
	// (spec §4.3: "previously registered ... on the formatter's
	// configuration" -- see New/Reset's identityAttrs) as a predicate,
	// e.g. `a/b[@id="x"]`.
	WithIdentity
)

func (m Mode) has(flag Mode) bool { return m&flag != 0 }

// element tracks the bookkeeping current_path needs for one open element
// on the path stack.
type element struct {
	rawName    string // as written in the source, e.g. "ns:name"
	localName  string // with any namespace prefix stripped
	siblingIdx int     // this element's 1-based index among same-named siblings
	identity   string  // rendered identity predicate, e.g. `[@id="x"]`, or ""
}

// Builder scans a token stream once, tracking the open-element stack and
// each level's sibling-name counts, so CurrentPath can answer for any
// byte offset reached so far without rescanning from the start.
type Builder struct {
	tok  *tokenizer.Tokenizer
	src  []byte
	mode Mode

	stack        []element
	siblingCount []map[string]int // one map per open scope, keyed by local name

	curAttrName string
	done        bool

	// identityAttrs holds the attribute names previously registered as an
	// element's identity (spec §4.3: "previously registered ... on the
	// formatter's configuration"). Unqualified name match, and a
	// namespace-qualified attribute matches by its local part, so
	// registering "id" also recognizes "xml:id".
	identityAttrs map[string]bool

	// pending holds a token already pulled from the tokenizer whose
	// offset turned out to be past the requested position; CurrentPath
	// is typically driven with monotonically increasing positions, so
	// the next call resumes from here instead of losing the token.
	pending *token.Token
}

// defaultIdentityAttrs is what current_path recognizes when the caller
// registers no identity attributes of its own.
var defaultIdentityAttrs = []string{"id"}

// New creates a Builder over src that renders paths according to mode.
// identityAttrs registers the attribute names WithIdentity treats as an
// element's identity; with none given, only "id" (and any namespace-
// qualified "*:id") is recognized.
func New(src []byte, mode Mode, identityAttrs ...string) *Builder {
	b := &Builder{}
	b.Reset(src, mode, identityAttrs...)
	return b
}

// Reset reinitializes the builder over a new (or the same) buffer, mode,
// and identity-attribute registration (spec §5: reuse requires an
// explicit reset).
func (b *Builder) Reset(src []byte, mode Mode, identityAttrs ...string) {
	b.tok = tokenizer.New(src)
	b.src = src
	b.mode = mode
	b.stack = b.stack[:0]
	b.siblingCount = b.siblingCount[:0]
	b.curAttrName = ""
	b.done = false
	b.pending = nil

	if len(identityAttrs) == 0 {
		identityAttrs = defaultIdentityAttrs
	}
	b.identityAttrs = make(map[string]bool, len(identityAttrs))
	for _, name := range identityAttrs {
		b.identityAttrs[name] = true
	}
}

// CurrentPath scans forward (if necessary) until the tokenizer reaches or
// passes bytePosition, and returns the path of the innermost element that
// contains it. It returns ("", false) if bytePosition falls before the
// first element or past the end of the document. Calls are expected with
// monotonically increasing bytePosition, matching a single left-to-right
// pass over the document; the scan never rewinds.
func (b *Builder) CurrentPath(bytePosition int) (string, bool) {
	for {
		var t token.Token
		if b.pending != nil {
			t = *b.pending
			b.pending = nil
		} else if b.done {
			break
		} else {
			t = b.tok.ParseNext()
			if t.Kind == token.EndOfFile {
				b.done = true
				break
			}
		}
		if t.Offset > bytePosition {
			b.pending = &t
			break
		}
		b.step(t)
		if t.End() > bytePosition {
			break
		}
	}
	if len(b.stack) == 0 {
		return "", false
	}
	return b.render(), true
}

// Position reports bytePosition as a row/column pair, in the same
// {offset, row, column} shape the teacher's own parser attaches to AST
// nodes, so callers can include a human-readable location alongside a
// path string in error messages or CLI output.
func (b *Builder) Position(bytePosition int) ast.Position {
	if bytePosition < 0 || bytePosition > len(b.src) {
		return ast.ZeroPosition()
	}
	row, col := 1, 1
	for _, c := range b.src[:bytePosition] {
		if c == '\n' {
			row++
			col = 1
			continue
		}
		col++
	}
	return ast.NewPosition(bytePosition, row, col)
}

func (b *Builder) step(t token.Token) {
	switch t.Kind {
	case token.TagOpening:
		// The element is considered "open" (and so part of the path) from
		// its very first byte, well before its attribute list and
		// opening-tag terminator are known.
		b.push(string(t.Bytes(b.src)[1:])) // drop leading '<'
		b.curAttrName = ""

	case token.AttrName:
		b.curAttrName = string(t.Bytes(b.src))

	case token.AttrValue:
		if b.isIdentityAttr(b.curAttrName) && len(b.stack) > 0 {
			value := strings.Trim(string(t.Bytes(b.src)), `"'`)
			b.stack[len(b.stack)-1].identity = fmt.Sprintf(`[@%s="%s"]`, b.curAttrName, value)
		}

	case token.TagSelfClosingEnd:
		b.pop()

	case token.TagClosing:
		b.pop()
	}
}

func (b *Builder) push(rawName string) {
	local := rawName
	if idx := strings.IndexByte(rawName, ':'); idx >= 0 && !b.mode.has(WithNamespace) {
		local = rawName[idx+1:]
	}
	if len(b.siblingCount) < len(b.stack)+1 {
		b.siblingCount = append(b.siblingCount, map[string]int{})
	}
	counts := b.siblingCount[len(b.stack)]
	counts[local]++
	b.stack = append(b.stack, element{
		rawName:    rawName,
		localName:  local,
		siblingIdx: counts[local],
	})
}

func (b *Builder) pop() {
	if len(b.stack) == 0 {
		return
	}
	// Drop the counts of the closed element's children; the counts of its
	// own level stay, so later same-named siblings keep numbering.
	b.siblingCount = b.siblingCount[:len(b.stack)]
	b.stack = b.stack[:len(b.stack)-1]
}

// render composes the path string for the current stack according to
// mode.
func (b *Builder) render() string {
	parts := make([]string, len(b.stack))
	for i, el := range b.stack {
		name := el.localName
		if b.mode.has(WithNamespace) {
			name = el.rawName
		}
		var sb strings.Builder
		sb.WriteString(name)
		if b.mode.has(WithIndex) {
			total := 0
			if i < len(b.siblingCount) {
				total = b.siblingCount[i][el.localName]
			}
			if total > 1 {
				sb.WriteByte('[')
				sb.WriteString(strconv.Itoa(el.siblingIdx))
				sb.WriteByte(']')
			}
		}
		if b.mode.has(WithIdentity) && el.identity != "" {
			sb.WriteString(el.identity)
		}
		parts[i] = sb.String()
	}
	return strings.Join(parts, "/")
}

// isIdentityAttr reports whether name was registered (directly, or via
// its namespace-qualified local part) as an identity attribute for this
// Builder.
func (b *Builder) isIdentityAttr(name string) bool {
	if b.identityAttrs[name] {
		return true
	}
	if idx := strings.LastIndexByte(name, ':'); idx >= 0 {
		return b.identityAttrs[name[idx+1:]]
	}
	return false
}
