package vm

import "testing"

func TestScopeGetWalksParents(t *testing.T) {
	root := NewScope(nil)
	root.Bind("x", Int(1))
	child := NewScope(root)
	v, ok := child.Get("x")
	if !ok || v.Int != 1 {
		t.Fatalf("expected to find x=1 through the parent chain, got %+v, ok=%v", v, ok)
	}
}

func TestScopeBindShadowsParent(t *testing.T) {
	root := NewScope(nil)
	root.Bind("x", Int(1))
	child := NewScope(root)
	child.Bind("x", Int(2))

	v, _ := child.Get("x")
	if v.Int != 2 {
		t.Fatalf("expected the child's own binding to shadow the parent, got %d", v.Int)
	}
	parentV, _ := root.Get("x")
	if parentV.Int != 1 {
		t.Fatalf("shadowing in a child must not mutate the parent's binding, got %d", parentV.Int)
	}
}

// lookup monotonicity: once a name is bound at some depth, it remains
// visible at every greater depth, and a set reaches up to the nearest
// scope that actually declared it rather than creating a new one.
func TestSetReachesNearestDeclaringScope(t *testing.T) {
	root := NewScope(nil)
	root.Bind("x", Int(1))
	child := NewScope(root)
	grandchild := NewScope(child)

	if !grandchild.Set("x", Int(99)) {
		t.Fatal("expected Set to find x in an ancestor scope")
	}
	if _, ok := grandchild.Binds["x"]; ok {
		t.Fatal("Set must not create a new binding in the scope it was called on")
	}
	v, _ := root.Get("x")
	if v.Int != 99 {
		t.Fatalf("expected the root's binding to be updated, got %d", v.Int)
	}
}

func TestSetFailsForUnboundName(t *testing.T) {
	s := NewScope(nil)
	if s.Set("nope", Int(1)) {
		t.Fatal("expected Set to fail for a name no scope in the chain binds")
	}
}

func TestQualifiedLookup(t *testing.T) {
	global := NewScope(nil)
	strScope := NewScope(nil)
	strScope.Bind("length", Int(7))
	global.Modules = map[string]*Scope{"str": strScope}

	v, ok := global.GetQualified([]string{"str", "length"})
	if !ok || v.Int != 7 {
		t.Fatalf("expected str::length to resolve to 7, got %+v, ok=%v", v, ok)
	}
}

func TestModuleLookupAscendsToParent(t *testing.T) {
	global := NewScope(nil)
	strScope := NewScope(nil)
	strScope.Bind("length", Int(7))
	global.Modules = map[string]*Scope{"str": strScope}

	inner := NewScope(global)
	v, ok := inner.GetQualified([]string{"str", "length"})
	if !ok || v.Int != 7 {
		t.Fatalf("expected module resolution to ascend to the parent scope, got %+v, ok=%v", v, ok)
	}
}

func TestPublishModuleOverwritesExistingBindings(t *testing.T) {
	global := NewScope(nil)
	existing := NewScope(nil)
	existing.Bind("a", Int(1))
	existing.Bind("b", Int(2))
	global.Modules = map[string]*Scope{"m": existing}

	fresh := NewScope(nil)
	fresh.Bind("b", Int(20))
	fresh.Bind("c", Int(3))
	fresh.PublishModule(global, "m")

	merged := global.Modules["m"]
	a, _ := merged.Get("a")
	b, _ := merged.Get("b")
	c, _ := merged.Get("c")
	if a.Int != 1 || b.Int != 20 || c.Int != 3 {
		t.Fatalf("expected a=1 (kept), b=20 (overwritten), c=3 (added); got a=%d b=%d c=%d", a.Int, b.Int, c.Int)
	}
}
