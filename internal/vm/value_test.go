package vm

import "testing"

func TestEqualScalarAndCrossKind(t *testing.T) {
	if !Equal(Int(65), Str("A")) {
		t.Fatal("expected int 65 to equal the one-character string \"A\"")
	}
	if !Equal(Str("A"), Int(65)) {
		t.Fatal("cross-kind equality must be symmetric")
	}
	if Equal(Int(65), Str("AB")) {
		t.Fatal("a multi-character string must never equal an int")
	}
	if Equal(Int(1), Bool(true)) {
		t.Fatal("int and bool must never compare equal")
	}
}

func TestEqualListIsStructural(t *testing.T) {
	a := List([]Value{Int(1), Str("x")})
	b := List([]Value{Int(1), Str("x")})
	if !Equal(a, b) {
		t.Fatal("expected structurally identical lists (different backing arrays) to be equal")
	}
	c := List([]Value{Int(1), Str("y")})
	if Equal(a, c) {
		t.Fatal("lists differing in an element must not be equal")
	}
}

func TestEqualMapIsReferenceIdentity(t *testing.T) {
	m1 := NewMapCell()
	m1.Set("k", Int(1))
	m2 := NewMapCell()
	m2.Set("k", Int(1))
	if Equal(Map(m1), Map(m2)) {
		t.Fatal("two distinct map cells with identical contents must not be equal (reference identity by design)")
	}
	if !Equal(Map(m1), Map(m1)) {
		t.Fatal("a map must equal itself")
	}
}

func TestCloneProducesIndependentStorage(t *testing.T) {
	orig := Str("hello")
	clone := orig.Clone()
	clone.Str.Data[0] = 'H'
	if orig.StringVal() == clone.StringVal() {
		t.Fatal("cloning a string must not alias the original's backing bytes")
	}

	origList := List([]Value{Int(1), Int(2)})
	cloneList := origList.Clone()
	cloneList.List.Items[0] = Int(99)
	if origList.List.Items[0].Int == 99 {
		t.Fatal("cloning a list must not alias the original's backing slice")
	}
}

func TestCloneScalarsAreNoOps(t *testing.T) {
	if Clone := Int(5).Clone(); Clone.Int != 5 {
		t.Fatal("cloning an int must preserve its value")
	}
}

func TestPrintVsPrintv(t *testing.T) {
	s := Str("hi")
	if s.Print() != "hi" {
		t.Fatalf("Print should render a string's raw text, got %q", s.Print())
	}
	if s.Printv() != `"hi"` {
		t.Fatalf("Printv should quote a string, got %q", s.Printv())
	}
	if Int(5).Printv() != "5" {
		t.Fatalf("Printv on a non-string should match Print")
	}
}

func TestMapCellInsertionOrderPreserved(t *testing.T) {
	m := NewMapCell()
	m.Set("z", Int(1))
	m.Set("a", Int(2))
	m.Set("z", Int(3)) // re-setting an existing key must not move it
	want := []string{"z", "a"}
	if len(m.Keys) != 2 || m.Keys[0] != want[0] || m.Keys[1] != want[1] {
		t.Fatalf("got key order %v, want %v", m.Keys, want)
	}
	v, _ := m.Get("z")
	if v.Int != 3 {
		t.Fatalf("expected the re-set value to take effect, got %d", v.Int)
	}
}
