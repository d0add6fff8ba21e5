// Package token defines the lexical vocabulary shared by the tokenizer and
// the formatter: the token kind bitfield, the token value object, the
// parser context snapshot, and the xml:space preserve stack.
package token

import "strings"

// Kind identifies the lexical category of a Token. Kinds are encoded as
// independent bits rather than an enum so that callers (notably
// Tokenizer.ParseUntil) can ask for "the next token matching any of this
// set" by OR-ing kinds together into a Set.
type Kind uint32

const (
	Undefined Kind = 0

	// TagOpening is the "<name" of an element start tag.
	TagOpening Kind = 1 << (iota - 1)
	// TagClosing is the "</name" of an element end tag.
	TagClosing
	// TagOpeningEnd is the ">" that terminates a start tag.
	TagOpeningEnd
	// TagClosingEnd is the ">" that terminates an end tag.
	TagClosingEnd
	// TagSelfClosingEnd is the "/>" of a self-closing element.
	TagSelfClosingEnd
	// AttrName is an attribute name.
	AttrName
	// AttrValue is an attribute value, including its surrounding quotes.
	AttrValue
	// Equal is the "=" between an attribute name and its value.
	Equal
	// Text is character data between tags.
	Text
	// Whitespace is a run of space/tab inside a text position.
	Whitespace
	// LineBreak is a run of \r, \n, or \r\n.
	LineBreak
	// Instruction is a full "<?...?>" processing instruction.
	Instruction
	// DeclarationBeg is the opening of a "<!...[" declaration that contains
	// a nested "[...]" section (e.g. an internal DOCTYPE subset).
	DeclarationBeg
	// DeclarationEnd is the closing "]>" of such a declaration.
	DeclarationEnd
	// DeclarationSelfClosing is a "<!...>" declaration with no internal subset.
	DeclarationSelfClosing
	// Comment is a full "<!-- ... -->" block, multi-line permitted.
	Comment
	// CDATA is a full "<![CDATA[ ... ]]>" block.
	CDATA
	// EndOfFile is the virtual terminal token.
	EndOfFile
)

// Set is a union of Kinds, used by Tokenizer.ParseUntil to describe
// "stop at the next token matching any of these kinds".
type Set uint32

// Of builds a Set from the given kinds.
func Of(kinds ...Kind) Set {
	var s Set
	for _, k := range kinds {
		s |= Set(k)
	}
	return s
}

// Has reports whether k is a member of the set.
func (s Set) Has(k Kind) bool {
	return s&Set(k) != 0
}

// structural is the set of kinds that are not Text, Whitespace, or
// LineBreak -- i.e. every kind a next_structure_token lookahead should
// stop at.
var structural = Of(
	TagOpening, TagClosing, TagOpeningEnd, TagClosingEnd, TagSelfClosingEnd,
	AttrName, AttrValue, Equal,
	Instruction, DeclarationBeg, DeclarationEnd, DeclarationSelfClosing,
	Comment, CDATA, EndOfFile,
)

// IsStructural reports whether k is a "structural token" per the
// glossary: anything that is not Text, Whitespace, or LineBreak.
func IsStructural(k Kind) bool {
	return structural.Has(k)
}

var names = map[Kind]string{
	Undefined:              "Undefined",
	TagOpening:              "TagOpening",
	TagClosing:              "TagClosing",
	TagOpeningEnd:           "TagOpeningEnd",
	TagClosingEnd:           "TagClosingEnd",
	TagSelfClosingEnd:       "TagSelfClosingEnd",
	AttrName:                "AttrName",
	AttrValue:               "AttrValue",
	Equal:                   "Equal",
	Text:                    "Text",
	Whitespace:              "Whitespace",
	LineBreak:               "LineBreak",
	Instruction:             "Instruction",
	DeclarationBeg:          "DeclarationBeg",
	DeclarationEnd:          "DeclarationEnd",
	DeclarationSelfClosing:  "DeclarationSelfClosing",
	Comment:                 "Comment",
	CDATA:                   "CDATA",
	EndOfFile:               "EndOfFile",
}

// String renders the kind's name for diagnostics; combined values render
// as their member names joined by "|" (in no fixed order), and values with
// no known bit render as "Undefined".
func (k Kind) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	var parts []string
	for bit, name := range names {
		if bit != Undefined && k&bit != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "Undefined"
	}
	return strings.Join(parts, "|")
}
