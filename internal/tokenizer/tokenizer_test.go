package tokenizer

import (
	"testing"

	"github.com/shapestone/xmlindent/internal/token"
)

// collect drains every token from t and resolves each one's text against
// src, for assertions that want to see the whole stream at once.
func collect(t *Tokenizer, src []byte) []string {
	var out []string
	for {
		tok := t.ParseNext()
		out = append(out, tok.Kind.String()+":"+string(tok.Bytes(src)))
		if tok.Kind == token.EndOfFile {
			break
		}
		if len(out) > 10000 {
			panic("tokenizer did not terminate")
		}
	}
	return out
}

func TestParseNext_SimpleElement(t *testing.T) {
	src := []byte(`<a><b/></a>`)
	tok := New(src)

	want := []token.Kind{
		token.TagOpening, token.TagOpeningEnd,
		token.TagOpening, token.TagSelfClosingEnd,
		token.TagClosing, token.TagClosingEnd,
		token.EndOfFile,
	}
	for i, k := range want {
		got := tok.ParseNext()
		if got.Kind != k {
			t.Fatalf("token %d: got %s, want %s", i, got.Kind, k)
		}
	}
}

func TestParseNext_Attributes(t *testing.T) {
	src := []byte(`<a id="1" class='x'/>`)
	tok := New(src)

	want := []token.Kind{
		token.TagOpening,
		token.Whitespace, token.AttrName, token.Equal, token.AttrValue,
		token.Whitespace, token.AttrName, token.Equal, token.AttrValue,
		token.TagSelfClosingEnd,
		token.EndOfFile,
	}
	for i, k := range want {
		got := tok.ParseNext()
		if got.Kind != k {
			t.Fatalf("token %d: got %s (%q), want %s", i, got.Kind, got.Bytes(src), k)
		}
	}
}

func TestParseNext_CommentCDATAInstruction(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  token.Kind
	}{
		{"comment", "<!-- hi -->", token.Comment},
		{"multiline comment", "<!-- line1\nline2 -->", token.Comment},
		{"unterminated comment", "<!-- hi", token.Comment},
		{"cdata", "<![CDATA[<not a tag>]]>", token.CDATA},
		{"instruction", `<?xml version="1.0"?>`, token.Instruction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := New([]byte(tt.input))
			got := tok.ParseNext()
			if got.Kind != tt.want {
				t.Errorf("got %s, want %s", got.Kind, tt.want)
			}
			if got.Offset != 0 || got.Length != len(tt.input) {
				t.Errorf("token did not span whole input: offset=%d length=%d", got.Offset, got.Length)
			}
		})
	}
}

func TestParseNext_Declaration(t *testing.T) {
	src := []byte(`<!DOCTYPE greeting [ <!ELEMENT greeting (#PCDATA)> ]>`)
	tok := New(src)

	beg := tok.ParseNext()
	if beg.Kind != token.DeclarationBeg {
		t.Fatalf("got %s, want DeclarationBeg", beg.Kind)
	}
	if beg.Context.DeclarationDepth != 1 {
		t.Errorf("DeclarationBeg's own context depth = %d, want 1 (stamped after its '[' is consumed)", beg.Context.DeclarationDepth)
	}

	// Drain until DeclarationEnd, verifying depth stayed positive
	// throughout per the invariant in spec.md §3.
	for {
		tok2 := tok.ParseNext()
		if tok2.Kind == token.DeclarationEnd {
			break
		}
		if tok2.Kind == token.EndOfFile {
			t.Fatal("reached EOF before DeclarationEnd")
		}
		if tok2.Context.DeclarationDepth <= 0 {
			t.Errorf("%s inside the declaration has depth %d, want > 0", tok2.Kind, tok2.Context.DeclarationDepth)
		}
	}

	eof := tok.ParseNext()
	if eof.Kind != token.EndOfFile {
		t.Errorf("got %s after DeclarationEnd, want EndOfFile", eof.Kind)
	}
}

func TestParseNext_SelfClosingDeclaration(t *testing.T) {
	src := []byte(`<!ELEMENT greeting (#PCDATA)>`)
	tok := New(src)
	got := tok.ParseNext()
	if got.Kind != token.DeclarationSelfClosing {
		t.Fatalf("got %s, want DeclarationSelfClosing", got.Kind)
	}
	if string(got.Bytes(src)) != string(src) {
		t.Errorf("token did not span whole declaration: %q", got.Bytes(src))
	}
}

func TestParseNext_LineBreaks(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"lone cr", "a\rb"},
		{"lone lf", "a\nb"},
		{"crlf", "a\r\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := New([]byte(tt.input))
			first := tok.ParseNext() // "a" as Text
			if first.Kind != token.Text {
				t.Fatalf("got %s, want Text", first.Kind)
			}
			second := tok.ParseNext()
			if second.Kind != token.LineBreak {
				t.Fatalf("got %s, want LineBreak", second.Kind)
			}
			third := tok.ParseNext()
			if third.Kind != token.Text {
				t.Fatalf("got %s, want Text", third.Kind)
			}
		})
	}
}

func TestParseUntil(t *testing.T) {
	src := []byte(`<a>text<b/></a>`)
	tok := New(src)
	got := tok.ParseUntil(token.Of(token.TagSelfClosingEnd, token.TagClosingEnd))
	if got.Kind != token.TagSelfClosingEnd {
		t.Fatalf("got %s, want TagSelfClosingEnd", got.Kind)
	}
}

func TestParseUntil_NeverMatches(t *testing.T) {
	tok := New([]byte(`<a></a>`))
	got := tok.ParseUntil(token.Of(token.CDATA))
	if got.Kind != token.EndOfFile {
		t.Fatalf("got %s, want EndOfFile", got.Kind)
	}
}

func TestNextStructureToken_Idempotent(t *testing.T) {
	src := []byte(`<a>   <b/></a>`)
	tok := New(src)
	tok.ParseNext() // consume TagOpening
	tok.ParseNext() // consume TagOpeningEnd

	first := tok.NextStructureToken()
	second := tok.NextStructureToken()
	if first != second {
		t.Fatalf("repeated NextStructureToken calls disagreed: %+v vs %+v", first, second)
	}
	if first.Kind != token.TagOpening {
		t.Fatalf("got %s, want TagOpening", first.Kind)
	}

	// ParseNext must drain the queued whitespace before returning the
	// structural token itself.
	drained := tok.ParseNext()
	if drained.Kind != token.Whitespace {
		t.Fatalf("got %s, want Whitespace drained from FIFO first", drained.Kind)
	}
	structural := tok.ParseNext()
	if structural.Kind != token.TagOpening {
		t.Fatalf("got %s, want TagOpening", structural.Kind)
	}
}

func TestIsSpacePreserve(t *testing.T) {
	src := []byte(`<a xml:space="preserve"><b>  x  </b></a>`)
	tok := New(src)

	for {
		got := tok.ParseNext()
		if got.Kind == token.TagOpeningEnd {
			break
		}
		if got.Kind == token.EndOfFile {
			t.Fatal("did not find TagOpeningEnd for <a>")
		}
	}
	if !tok.IsSpacePreserve(false) {
		t.Fatal("expected preserve scope active after <a xml:space=\"preserve\">")
	}

	// Enter <b>, which does not declare xml:space itself; it inherits.
	tok.ParseNext() // TagOpening <b
	tok.ParseNext() // TagOpeningEnd
	if !tok.IsSpacePreserve(false) {
		t.Fatal("expected <b> to inherit preserve from <a>")
	}
}

func TestTokenStream_RoundTripsEveryByte(t *testing.T) {
	src := []byte("<r a=\"1\"><!-- c --><![CDATA[x]]>text<b/></r>\r\n")
	tok := New(src)

	var covered int
	for {
		got := tok.ParseNext()
		if got.Kind == token.EndOfFile {
			break
		}
		if got.Offset != covered {
			t.Fatalf("gap before offset %d: token started at %d (%q)", covered, got.Offset, got.Kind)
		}
		covered = got.End()
	}
	if covered != len(src) {
		t.Fatalf("tokens covered %d bytes, source has %d", covered, len(src))
	}
}

func TestReset(t *testing.T) {
	tok := New([]byte(`<a/>`))
	tok.ParseNext()
	tok.Reset([]byte(`<b/>`))
	got := tok.ParseNext()
	if string(got.Bytes(tok.Source())) != "<b" {
		t.Fatalf("got %q after reset, want %q", got.Bytes(tok.Source()), "<b")
	}
}

func collectKinds(src string) []token.Kind {
	tok := New([]byte(src))
	var out []token.Kind
	for {
		got := tok.ParseNext()
		out = append(out, got.Kind)
		if got.Kind == token.EndOfFile {
			return out
		}
	}
}

func TestParseNext_MixedContent(t *testing.T) {
	kinds := collectKinds(`<a>hello<b/>world</a>`)
	want := []token.Kind{
		token.TagOpening, token.TagOpeningEnd,
		token.Text,
		token.TagOpening, token.TagSelfClosingEnd,
		token.Text,
		token.TagClosing, token.TagClosingEnd,
		token.EndOfFile,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], want[i])
		}
	}
}
