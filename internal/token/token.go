package token

// Token is a value object describing a lexical unit found at
// [Offset, Offset+Length) within some source buffer. Tokens do not own
// their character payload: they must be resolved against the buffer they
// were produced from, e.g. buf[t.Offset : t.Offset+t.Length]. Tokens may
// be freely copied.
type Token struct {
	Kind    Kind
	Offset  int
	Length  int
	Context Context
}

// End returns the exclusive end offset of the token's range.
func (t Token) End() int {
	return t.Offset + t.Length
}

// Bytes resolves the token's byte range against src. It panics if the
// token's range does not fit within src, which would indicate a tokenizer
// defect rather than malformed input (malformed input is handled by
// clamping ranges to len(src) at production time, never afterward).
func (t Token) Bytes(src []byte) []byte {
	return src[t.Offset:t.End()]
}

// EOF is the canonical End-of-file token returned once the tokenizer has
// exhausted its buffer; further ParseNext calls return copies of it
// forever, with Offset pinned at the buffer length.
func EOF(offset int, ctx Context) Token {
	return Token{Kind: EndOfFile, Offset: offset, Length: 0, Context: ctx}
}
