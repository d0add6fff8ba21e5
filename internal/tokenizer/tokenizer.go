// Package tokenizer implements the streaming XML lexical classifier
// described in spec.md §4.1: a cursor over an immutable source buffer
// that produces a lazy, finite sequence of Tokens without ever building a
// DOM. Its cursor is built on github.com/shapestone/shape-core/pkg/
// tokenizer's Stream/ByteStream/FindByte primitives, the same primitives
// the teacher's own internal/tokenizer package composes into
// StringMatcher/NameMatcher/TextMatcher; the token-kind bitfield,
// DeclarationDepth bracket tracking, and preserve stack this package adds
// on top have no equivalent in the teacher's flat Matcher-list framework
// (see cursor.go's doc comment for the detailed boundary).
package tokenizer

import (
	"strings"

	"github.com/shapestone/xmlindent/internal/token"
)

// Tokenizer is a lexical classifier over an immutable byte buffer. It is
// not a general XML parser: its contract is "every byte is accounted
// for, and structural boundaries are correctly identified even in the
// presence of quoted attribute values and nested declaration brackets".
//
// A Tokenizer is a single-use forward-only state machine; see Reset for
// reuse (spec §5: "reuse after a completed run requires an explicit
// reset that reinitializes cursor... and the look-ahead FIFO").
type Tokenizer struct {
	cur      *cursor
	ctx      token.Context
	preserve token.PreserveStack

	// pendingPreserve records that the attribute just closed
	// (xml:space="preserve") should force the *next* element completion
	// to push true onto the preserve stack instead of inheriting the
	// parent's top (spec §4.1, "Attribute-value semantics").
	pendingPreserve bool
	lastAttrName    string

	// fifo holds tokens already produced by next_structure_token's
	// lookahead that ParseNext must drain before pulling fresh ones.
	// Bounded in practice by the distance to the next structural token
	// (spec §5).
	fifo []token.Token
}

// New creates a Tokenizer over src. src must outlive every Token produced
// (spec §5: "Tokens hold references into the source buffer").
func New(src []byte) *Tokenizer {
	t := &Tokenizer{}
	t.Reset(src)
	return t
}

// Reset reinitializes the tokenizer over a new (or the same) buffer,
// clearing the cursor, parsing context, preserve stack, and look-ahead
// FIFO so the instance can be reused without reallocation.
func (t *Tokenizer) Reset(src []byte) {
	t.cur = newCursor(src)
	t.ctx = token.Context{}
	t.preserve.Reset()
	t.pendingPreserve = false
	t.lastAttrName = ""
	t.fifo = t.fifo[:0]
}

// Source returns the buffer the tokenizer is reading from.
func (t *Tokenizer) Source() []byte {
	return t.cur.buf
}

// ParseNext returns the next token, advancing the cursor. Once the
// buffer is exhausted it returns EndOfFile repeatedly.
func (t *Tokenizer) ParseNext() token.Token {
	if len(t.fifo) > 0 {
		tok := t.fifo[0]
		t.fifo = t.fifo[1:]
		return tok
	}
	return t.parseNextRaw()
}

// ParseUntil advances the tokenizer until it produces a token whose kind
// is a member of mask, and returns that token. It returns EndOfFile if
// mask is never matched before the buffer is exhausted.
func (t *Tokenizer) ParseUntil(mask token.Set) token.Token {
	for {
		tok := t.ParseNext()
		if mask.Has(tok.Kind) || tok.Kind == token.EndOfFile {
			return tok
		}
	}
}

// NextStructureToken peeks ahead past any Text/Whitespace/LineBreak and
// returns the next structural token, without permanently consuming the
// skipped tokens: they are placed in the look-ahead FIFO, where
// subsequent ParseNext calls drain them before pulling fresh ones. This
// lookahead is idempotent -- repeated calls without an intervening
// ParseNext return the same token -- because it only ever appends to the
// FIFO and returns the first structural entry already queued there.
func (t *Tokenizer) NextStructureToken() token.Token {
	for _, tok := range t.fifo {
		if token.IsStructural(tok.Kind) || tok.Kind == token.EndOfFile {
			return tok
		}
	}
	for {
		tok := t.parseNextRaw()
		t.fifo = append(t.fifo, tok)
		if token.IsStructural(tok.Kind) || tok.Kind == token.EndOfFile {
			return tok
		}
	}
}

// IsSpacePreserve reports whether the current top of the preserve stack
// is preserving whitespace. When inOpeningTag is true, the element
// currently being opened has not yet pushed its own frame, so the answer
// reflects its parent's scope (spec §4.1: "when mid-opening-tag, the
// element being opened has not yet pushed").
func (t *Tokenizer) IsSpacePreserve(inOpeningTag bool) bool {
	_ = inOpeningTag // the parent's top is always what Top() reports pre-push
	return t.preserve.Top()
}

// parseNextRaw is the actual recognizer; it never consults or mutates
// the FIFO, so NextStructureToken can drive it directly while queuing
// results.
func (t *Tokenizer) parseNextRaw() token.Token {
	if t.cur.eof() {
		return token.EOF(t.cur.pos, t.ctx)
	}

	// A DOCTYPE-style internal subset closes with "]>" at the current
	// declaration depth; this must be checked before any other dispatch
	// because ']' is otherwise ordinary text.
	if t.ctx.DeclarationDepth > 0 && t.cur.hasPrefix("]>") {
		return t.emitDeclarationEnd()
	}

	if t.ctx.InOpeningTag {
		return t.nextInOpeningTag()
	}
	if t.ctx.InClosingTag {
		return t.nextInClosingTag()
	}

	b := t.cur.peek()
	switch {
	case b == '<':
		return t.nextAtTagOpen()
	case isLineBreakByte(b):
		return t.nextLineBreak()
	case isSpaceTab(b):
		return t.nextWhitespace()
	default:
		return t.nextText()
	}
}

func (t *Tokenizer) nextLineBreak() token.Token {
	start := t.cur.pos
	for !t.cur.eof() {
		b := t.cur.peek()
		if b == '\r' {
			t.cur.readN(1)
			if !t.cur.eof() && t.cur.peek() == '\n' {
				t.cur.readN(1)
			}
			continue
		}
		if b == '\n' {
			t.cur.readN(1)
			continue
		}
		break
	}
	return t.tok(token.LineBreak, start)
}

func (t *Tokenizer) nextWhitespace() token.Token {
	start := t.cur.pos
	t.cur.readWhile(isSpaceTab)
	return t.tok(token.Whitespace, start)
}

func (t *Tokenizer) nextText() token.Token {
	start := t.cur.pos
	end := len(t.cur.buf) - t.cur.pos
	if idx := t.cur.indexFrom("<"); idx != -1 {
		end = idx
	}
	// A line break also ends the run, so text on separate source lines is
	// separated by LineBreak tokens.
	for i, b := range t.cur.buf[t.cur.pos : t.cur.pos+end] {
		if isLineBreakByte(b) {
			end = i
			break
		}
	}
	t.cur.readN(end)
	return t.tok(token.Text, start)
}

// nextAtTagOpen dispatches every construct that begins with '<'.
func (t *Tokenizer) nextAtTagOpen() token.Token {
	start := t.cur.pos
	switch {
	case t.cur.hasPrefix("<!--"):
		return t.emitSearch(token.Comment, start, "-->")
	case t.cur.hasPrefix("<![CDATA["):
		return t.emitSearch(token.CDATA, start, "]]>")
	case t.cur.hasPrefix("<?"):
		return t.emitSearch(token.Instruction, start, "?>")
	case t.cur.hasPrefix("<!"):
		return t.emitDeclarationOpen(start)
	case t.cur.hasPrefix("</"):
		return t.emitEndTagOpen(start)
	default:
		return t.emitStartTagOpen(start)
	}
}

// emitSearch consumes from start through the first occurrence of
// terminator (inclusive) and emits a single token of kind. If terminator
// never occurs, the token spans to end-of-buffer (spec §4.1/§7:
// unterminated constructs extend to EOF and emission continues).
func (t *Tokenizer) emitSearch(kind token.Kind, start int, terminator string) token.Token {
	t.cur.readUntil(terminator)
	return t.tok(kind, start)
}

// emitStartTagOpen recognizes "<name" and flips in_opening_tag on.
func (t *Tokenizer) emitStartTagOpen(start int) token.Token {
	t.cur.readN(1) // '<'
	t.cur.readWord(false)
	t.ctx.InOpeningTag = true
	tok := t.tok(token.TagOpening, start)
	t.lastAttrName = ""
	t.pendingPreserve = false
	return tok
}

// emitEndTagOpen recognizes "</name" and flips in_closing_tag on.
func (t *Tokenizer) emitEndTagOpen(start int) token.Token {
	t.cur.readN(2) // '</'
	t.cur.readWord(false)
	t.ctx.InClosingTag = true
	return t.tok(token.TagClosing, start)
}

// emitDeclarationOpen recognizes the three "<!" shapes: a comment and
// CDATA have already been ruled out by the caller, so this handles
// "<!DOCTYPE ... [" (DeclarationBeg), and "<!DOCTYPE ...>" or
// "<!ELEMENT ...>" (DeclarationSelfClosing), by scanning for whichever of
// '[' or '>' occurs first at bracket depth 0.
func (t *Tokenizer) emitDeclarationOpen(start int) token.Token {
	t.cur.readN(2) // '<!'
	for {
		if t.cur.eof() {
			// Unterminated: extend to EOF as a self-closing declaration.
			return t.tok(token.DeclarationSelfClosing, start)
		}
		b := t.cur.peek()
		switch b {
		case '"', '\'':
			quote := b
			t.cur.readN(1)
			for !t.cur.eof() && t.cur.peek() != quote {
				t.cur.readN(1)
			}
			t.cur.readN(1)
		case '[':
			t.cur.readN(1)
			t.ctx.DeclarationDepth++
			return t.tok(token.DeclarationBeg, start)
		case '>':
			t.cur.readN(1)
			return t.tok(token.DeclarationSelfClosing, start)
		default:
			t.cur.readN(1)
		}
	}
}

func (t *Tokenizer) emitDeclarationEnd() token.Token {
	start := t.cur.pos
	t.cur.readN(2) // ']>'
	if t.ctx.DeclarationDepth > 0 {
		t.ctx.DeclarationDepth--
	}
	return t.tok(token.DeclarationEnd, start)
}

// nextInOpeningTag handles the sub-grammar active between TagOpening and
// its terminating TagOpeningEnd/TagSelfClosingEnd: attribute name/=/value
// triples, interleaved whitespace, and the two terminators.
func (t *Tokenizer) nextInOpeningTag() token.Token {
	b := t.cur.peek()
	switch {
	case isLineBreakByte(b):
		return t.nextLineBreak()
	case isSpaceTab(b):
		return t.nextWhitespace()
	case t.cur.hasPrefix("/>"):
		return t.emitTagEnd(token.TagSelfClosingEnd, 2)
	case b == '>':
		return t.emitTagEnd(token.TagOpeningEnd, 1)
	case b == '=':
		start := t.cur.pos
		t.cur.readN(1)
		return t.tok(token.Equal, start)
	case b == '"' || b == '\'':
		return t.emitAttrValueQuoted()
	case isNameStartByte(b):
		return t.emitAttrName()
	default:
		// Unrecognized punctuation inside a tag (spec §7: the tokenizer
		// never throws on malformed input) -- consume one byte as an
		// isolated attribute value so the cursor always makes progress.
		start := t.cur.pos
		t.cur.readN(1)
		return t.tok(token.AttrValue, start)
	}
}

func (t *Tokenizer) emitAttrName() token.Token {
	start := t.cur.pos
	t.cur.readWord(false)
	t.lastAttrName = string(t.cur.buf[start:t.cur.pos])
	return t.tok(token.AttrName, start)
}

func (t *Tokenizer) emitAttrValueQuoted() token.Token {
	start := t.cur.pos
	quote := t.cur.peek()
	t.cur.readN(1)
	for !t.cur.eof() && t.cur.peek() != quote {
		t.cur.readN(1)
	}
	t.cur.readN(1) // closing quote, if present; no-op at EOF
	tok := t.tok(token.AttrValue, start)
	t.checkSpacePreserve(tok)
	return tok
}

// checkSpacePreserve implements spec §4.1's "Attribute-value semantics":
// when the attribute just closed was named xml:space and its unquoted
// value is "preserve", the *next* element completion pushes true onto
// the preserve stack instead of inheriting the parent's top.
func (t *Tokenizer) checkSpacePreserve(valueTok token.Token) {
	if t.lastAttrName != "xml:space" {
		return
	}
	raw := string(valueTok.Bytes(t.cur.buf))
	raw = strings.Trim(raw, `"'`)
	if raw == "preserve" {
		t.pendingPreserve = true
	}
}

// emitTagEnd handles both TagOpeningEnd ('>') and TagSelfClosingEnd
// ('/>'): push/pop the preserve stack as appropriate and clear
// in_opening_tag.
func (t *Tokenizer) emitTagEnd(kind token.Kind, width int) token.Token {
	start := t.cur.pos
	t.cur.readN(width)
	t.ctx.InOpeningTag = false

	switch kind {
	case token.TagOpeningEnd:
		t.preserve.Push(t.pendingPreserve)
	case token.TagSelfClosingEnd:
		// A self-closing element does not open a scope that needs
		// closing later; pushing then popping immediately keeps
		// Depth() consistent with open-element depth without the
		// scope ever being observable as "open" (spec §4.2: "a
		// self-closing element does not open a scope").
		t.preserve.Push(t.pendingPreserve)
		t.preserve.Pop()
	}
	t.pendingPreserve = false
	t.lastAttrName = ""
	return t.tok(kind, start)
}

// nextInClosingTag handles the sub-grammar after TagClosing: optional
// whitespace, then the terminating '>'.
func (t *Tokenizer) nextInClosingTag() token.Token {
	b := t.cur.peek()
	switch {
	case isLineBreakByte(b):
		return t.nextLineBreak()
	case isSpaceTab(b):
		return t.nextWhitespace()
	case b == '>':
		start := t.cur.pos
		t.cur.readN(1)
		t.ctx.InClosingTag = false
		t.preserve.Pop()
		return t.tok(token.TagClosingEnd, start)
	default:
		// Malformed closing tag content; consume a byte as Text so the
		// cursor keeps making progress (spec §7).
		start := t.cur.pos
		t.cur.readN(1)
		return t.tok(token.Text, start)
	}
}

func (t *Tokenizer) tok(kind token.Kind, start int) token.Token {
	return token.Token{
		Kind:    kind,
		Offset:  start,
		Length:  t.cur.pos - start,
		Context: t.ctx,
	}
}
