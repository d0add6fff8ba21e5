package pathbuilder

import "testing"

func TestCurrentPath_NameOnly(t *testing.T) {
	src := []byte("<a><b><c/></b></a>")
	b := New(src, NameOnly)
	// offset into "<c" (index 6)
	got, ok := b.CurrentPath(7)
	if !ok {
		t.Fatal("expected ok")
	}
	if got != "a/b/c" {
		t.Errorf("got %q, want %q", got, "a/b/c")
	}
}

func TestCurrentPath_BeforeFirstElement(t *testing.T) {
	src := []byte("   <a/>")
	b := New(src, NameOnly)
	got, ok := b.CurrentPath(0)
	if ok {
		t.Errorf("expected not ok, got %q", got)
	}
}

func TestCurrentPath_WithIndex(t *testing.T) {
	src := []byte("<root><item/><item/><item/></root>")
	b := New(src, NameOnly|WithIndex)
	got, ok := b.CurrentPath(22) // inside the third <item/>, which starts at offset 20
	if !ok {
		t.Fatal("expected ok")
	}
	if got != "root/item[3]" {
		t.Errorf("got %q, want %q", got, "root/item[3]")
	}
}

func TestCurrentPath_WithIdentity(t *testing.T) {
	src := []byte(`<root><item id="x1"/><item id="x2"/></root>`)
	b := New(src, NameOnly|WithIdentity)
	got, ok := b.CurrentPath(30) // inside the second <item .../>
	if !ok {
		t.Fatal("expected ok")
	}
	want := `root/item[@id="x2"]`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCurrentPath_WithIdentity_CustomRegisteredAttr(t *testing.T) {
	src := []byte(`<root><item key="x1"/><item key="x2"/></root>`)
	b := New(src, NameOnly|WithIdentity, "key")
	got, ok := b.CurrentPath(32) // inside the second <item .../>, at its key value
	if !ok {
		t.Fatal("expected ok")
	}
	want := `root/item[@key="x2"]`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCurrentPath_WithIdentity_UnregisteredAttrIgnored(t *testing.T) {
	// "key" is not registered here, so it must not become a predicate even
	// though WithIdentity is set -- only explicitly registered names (or
	// the "id" default when none are registered) count.
	src := []byte(`<root><item key="x1"/></root>`)
	b := New(src, NameOnly|WithIdentity, "id")
	got, ok := b.CurrentPath(17) // at the key value, so the attribute has been read
	if !ok {
		t.Fatal("expected ok")
	}
	if got != "root/item" {
		t.Errorf("got %q, want %q", got, "root/item")
	}
}

func TestCurrentPath_WithNamespace(t *testing.T) {
	src := []byte(`<ns:root><ns:item/></ns:root>`)
	b := New(src, WithNamespace)
	got, ok := b.CurrentPath(12)
	if !ok {
		t.Fatal("expected ok")
	}
	if got != "ns:root/ns:item" {
		t.Errorf("got %q, want %q", got, "ns:root/ns:item")
	}
}

func TestCurrentPath_NamespaceStrippedByDefault(t *testing.T) {
	src := []byte(`<ns:root><ns:item/></ns:root>`)
	b := New(src, NameOnly)
	got, ok := b.CurrentPath(12)
	if !ok {
		t.Fatal("expected ok")
	}
	if got != "root/item" {
		t.Errorf("got %q, want %q", got, "root/item")
	}
}

func TestCurrentPath_MonotonicCallsAdvanceWithoutRescan(t *testing.T) {
	src := []byte("<a><b/><c/></a>")
	b := New(src, NameOnly)
	p1, ok := b.CurrentPath(4) // inside <b/>
	if !ok || p1 != "a/b" {
		t.Fatalf("first call: got %q, ok=%v", p1, ok)
	}
	p2, ok := b.CurrentPath(8) // inside <c/>
	if !ok || p2 != "a/c" {
		t.Fatalf("second call: got %q, ok=%v", p2, ok)
	}
}

func TestPosition_RowAndColumn(t *testing.T) {
	src := []byte("<a>\n<b/>\n</a>")
	b := New(src, NameOnly)
	pos := b.Position(4) // the '<' of <b/>, first byte on line 2
	if pos.Row != 2 || pos.Column != 1 {
		t.Errorf("got row=%d col=%d, want row=2 col=1", pos.Row, pos.Column)
	}
}

func TestCurrentPath_PastEndOfDocument(t *testing.T) {
	src := []byte("<a/>")
	b := New(src, NameOnly)
	_, ok := b.CurrentPath(1000)
	if ok {
		t.Error("expected not ok past end of document")
	}
}
