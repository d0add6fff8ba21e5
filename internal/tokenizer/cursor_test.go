package tokenizer

import "testing"

func TestCursor_HasPrefixAndConsume(t *testing.T) {
	c := newCursor([]byte("<?xml?>"))
	if !c.hasPrefix("<?xml") {
		t.Fatal("expected prefix match")
	}
	if !c.consumePrefix("<?") {
		t.Fatal("expected consumePrefix to succeed")
	}
	if c.pos != 2 {
		t.Fatalf("pos = %d, want 2", c.pos)
	}
}

func TestCursor_ReadUntil_Terminated(t *testing.T) {
	c := newCursor([]byte("<!-- x -->rest"))
	c.readN(4) // consume "<!--"
	n, ok := c.readUntil("-->")
	if !ok {
		t.Fatal("expected terminator to be found")
	}
	if n != len(" x -->") {
		t.Fatalf("consumed %d bytes, want %d", n, len(" x -->"))
	}
	if c.peek() != 'r' {
		t.Fatalf("cursor left at %q, want 'r'", c.peek())
	}
}

func TestCursor_ReadUntil_Unterminated(t *testing.T) {
	c := newCursor([]byte("<!-- never closes"))
	c.readN(4)
	_, ok := c.readUntil("-->")
	if ok {
		t.Fatal("expected terminator not to be found")
	}
	if !c.eof() {
		t.Fatal("expected cursor to have advanced to EOF")
	}
}

func TestCursor_ReadUntilSkipping_NestedBrackets(t *testing.T) {
	// "[ <!ELEMENT greeting (#PCDATA)> ]>" -- the inner '>' must not
	// terminate the scan; only the final "]>" at depth 0 should.
	c := newCursor([]byte(" <!ELEMENT greeting (#PCDATA)> ]>rest"))
	_, depth, ok := c.readUntilSkipping('>', '[', ']', 1)
	// Starting at depth 1 (the opening '[' already consumed), the inner
	// '>' is skipped and the scan ends at the '>' after the closing ']'.
	if !ok {
		t.Fatal("expected to find '>'")
	}
	if depth != 0 {
		t.Fatalf("depth = %d, want 0", depth)
	}
}

func TestCursor_ReadWord(t *testing.T) {
	c := newCursor([]byte("ns:element-name rest"))
	n := c.readWord(false)
	if got := string(c.buf[:n]); got != "ns:element-name" {
		t.Fatalf("readWord = %q, want %q", got, "ns:element-name")
	}
}

func TestCursor_ReadWhile(t *testing.T) {
	c := newCursor([]byte("   x"))
	n := c.readWhile(isSpaceTab)
	if n != 3 {
		t.Fatalf("readWhile consumed %d, want 3", n)
	}
}
