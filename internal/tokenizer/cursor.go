package tokenizer

import (
	shapetokenizer "github.com/shapestone/shape-core/pkg/tokenizer"
)

// cursor wraps the immutable source buffer and the current byte offset,
// exposing the primitive read operations the recognition rules in
// Tokenizer.parseNext are built from. Single-byte peek/advance and
// delimiter search are backed by github.com/shapestone/shape-core/pkg/
// tokenizer's Stream/ByteStream and FindByte -- the same primitives the
// teacher's own internal/tokenizer composes into StringMatcher,
// NameMatcher, and TextMatcher (FindByte locates a closing quote or the
// next '<' in one SWAR pass; PeekByte/NextByte drive everything that
// can't be expressed as a single delimiter search). pos is read back from
// the stream rather than kept as an independent counter, so the two can
// never drift.
//
// What is deliberately not reused is the teacher's higher-level
// NewTokenizer(matchers ...Matcher) framework: that recognizes one flat,
// string-keyed token per call and has no notion of nesting. It has
// nothing resembling DeclarationDepth (the bracket-nesting a DOCTYPE
// internal subset needs) or an xml:space preserve stack -- the teacher's
// own matcher list doesn't track either, because its grammar has no
// concept of "the element currently being opened" carrying state forward
// across tokens. Those two pieces, and the Kind bitfield + Context they
// feed, are hand-written on top of the Stream primitives below, the same
// way the teacher's own CommentMatcher hand-loops PeekChar/NextChar
// rather than reaching for a Matcher combinator to find "-->".
type cursor struct {
	buf    []byte
	stream shapetokenizer.ByteStream
	pos    int
}

func newCursor(buf []byte) *cursor {
	stream := shapetokenizer.NewStream(string(buf)).(shapetokenizer.ByteStream)
	return &cursor{buf: buf, stream: stream}
}

func (c *cursor) eof() bool {
	_, ok := c.stream.PeekByte()
	return !ok
}

func (c *cursor) peek() byte {
	b, ok := c.stream.PeekByte()
	if !ok {
		return 0
	}
	return b
}

func (c *cursor) peekAt(offset int) (byte, bool) {
	p := c.pos + offset
	if p < 0 || p >= len(c.buf) {
		return 0, false
	}
	return c.buf[p], true
}

// readN advances the cursor by up to n bytes, returning the number
// actually consumed (less than n only at end of buffer).
func (c *cursor) readN(n int) int {
	consumed := 0
	for consumed < n {
		if _, ok := c.stream.NextByte(); !ok {
			break
		}
		consumed++
	}
	c.pos = c.stream.BytePosition()
	return consumed
}

// hasPrefix reports whether s occurs at the current position without
// consuming it.
func (c *cursor) hasPrefix(s string) bool {
	end := c.pos + len(s)
	if end > len(c.buf) {
		return false
	}
	return string(c.buf[c.pos:end]) == s
}

// consumePrefix consumes s if it occurs at the current position and
// reports whether it did.
func (c *cursor) consumePrefix(s string) bool {
	if !c.hasPrefix(s) {
		return false
	}
	c.readN(len(s))
	return true
}

// indexFrom returns the offset (relative to the current position) of the
// first occurrence of sep at or after the cursor, or -1 if sep never
// occurs before the end of the buffer. The search for sep's first byte
// uses shape-core's FindByte (SWAR, several bytes at a time -- the same
// primitive the teacher's StringMatcher/TextMatcher use to find a closing
// quote or the next '<'); each candidate is verified against the full
// separator, since FindByte itself only locates a single byte.
func (c *cursor) indexFrom(sep string) int {
	if len(sep) == 0 {
		return 0
	}
	rest := c.buf[c.pos:]
	first := sep[0]
	from := 0
	for {
		rel := shapetokenizer.FindByte(rest[from:], first)
		if rel == -1 {
			return -1
		}
		at := from + rel
		if at+len(sep) <= len(rest) && string(rest[at:at+len(sep)]) == sep {
			return at
		}
		from = at + 1
	}
}

// readUntil advances the cursor past the first occurrence of sep
// (inclusive) and returns the number of bytes consumed. If sep never
// occurs, the cursor advances to end-of-buffer and ok is false -- this is
// how unterminated constructs (spec §4.1 rule 3-6, §7 "malformed lexical
// input") are handled: the token spans to EOF and scanning continues.
func (c *cursor) readUntil(sep string) (n int, ok bool) {
	idx := c.indexFrom(sep)
	if idx == -1 {
		n = len(c.buf) - c.pos
		c.readN(n)
		return n, false
	}
	n = idx + len(sep)
	c.readN(n)
	return n, true
}

// readUntilSkipping advances past the first occurrence of sep that is not
// inside a range opened by skipOpen and closed by skipClose, tracking
// nesting depth of skipOpen/skipClose along the way. It can scan a
// DOCTYPE's internal subset ("<!DOCTYPE x [ <!ELEMENT y (#PCDATA)> ]>")
// without stopping at its inner '>': with skipOpen="[", skipClose="]",
// sep=">" the inner '>' is skipped because depth > 0 when it is seen.
// depth is the starting nesting depth (e.g. 1 once the opening '[' is
// consumed) and the returned depth is the ending nesting depth. The
// Tokenizer itself does not call it: it emits the internal subset as
// separate tokens between DeclarationBeg and DeclarationEnd, tracking
// the depth in Context.DeclarationDepth. There is no
// FindByte shortcut here: the scan has to branch on three distinct bytes
// at once, so it advances one byte at a time through PeekByte/readN,
// same as the teacher's own CommentMatcher does for its own multi-
// condition loop.
func (c *cursor) readUntilSkipping(sep, skipOpen, skipClose byte, depth int) (consumed int, endDepth int, ok bool) {
	start := c.pos
	for {
		b, hasByte := c.stream.PeekByte()
		if !hasByte {
			break
		}
		switch {
		case b == skipOpen:
			depth++
			c.readN(1)
		case b == skipClose && depth > 0:
			depth--
			c.readN(1)
		case b == sep && depth == 0:
			c.readN(1)
			return c.pos - start, depth, true
		default:
			c.readN(1)
		}
	}
	return c.pos - start, depth, false
}

// readWhile consumes a maximal run of bytes for which pred returns true,
// returning the number of bytes consumed.
func (c *cursor) readWhile(pred func(byte) bool) int {
	start := c.pos
	for {
		b, ok := c.stream.PeekByte()
		if !ok || !pred(b) {
			break
		}
		c.readN(1)
	}
	return c.pos - start
}

// readWord reads the longest run of XML name characters starting at the
// cursor. If skipQuoted is true and the cursor is sitting on a quote
// character, the quoted run (including both quotes) is treated as part of
// the word instead of terminating it -- used when reading an unquoted
// attribute-value-like run that may itself embed a quoted chunk.
func (c *cursor) readWord(skipQuoted bool) int {
	start := c.pos
	for {
		b, ok := c.stream.PeekByte()
		if !ok {
			break
		}
		if skipQuoted && (b == '"' || b == '\'') {
			quote := b
			c.readN(1)
			for {
				b2, ok2 := c.stream.PeekByte()
				if !ok2 || b2 == quote {
					break
				}
				c.readN(1)
			}
			if _, ok2 := c.stream.PeekByte(); ok2 {
				c.readN(1) // consume closing quote
			}
			continue
		}
		if !isNameByte(b) {
			break
		}
		c.readN(1)
	}
	return c.pos - start
}

func isNameStartByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_' || b == ':'
}

func isNameByte(b byte) bool {
	return isNameStartByte(b) || (b >= '0' && b <= '9') || b == '.' || b == '-'
}

func isSpaceTab(b byte) bool {
	return b == ' ' || b == '\t'
}

func isLineBreakByte(b byte) bool {
	return b == '\r' || b == '\n'
}
