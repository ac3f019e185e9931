package arena

import "testing"

func TestDestroyCascadesToChildren(t *testing.T) {
	root := Root()
	child := root.New()
	grandchild := child.New()

	var order []string
	root.OnDestroy(func() { order = append(order, "root") })
	child.OnDestroy(func() { order = append(order, "child") })
	grandchild.OnDestroy(func() { order = append(order, "grandchild") })

	root.Destroy()

	if !root.Destroyed() || !child.Destroyed() || !grandchild.Destroyed() {
		t.Fatalf("expected root, child, and grandchild all destroyed")
	}
	if len(order) != 3 || order[0] != "grandchild" || order[2] != "root" {
		t.Fatalf("expected children-first destroy order, got %v", order)
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	root := Root()
	calls := 0
	root.OnDestroy(func() { calls++ })
	root.Destroy()
	root.Destroy()
	if calls != 1 {
		t.Fatalf("expected OnDestroy callback to fire exactly once, got %d", calls)
	}
}

func TestOnDestroyLIFO(t *testing.T) {
	root := Root()
	var order []int
	root.OnDestroy(func() { order = append(order, 1) })
	root.OnDestroy(func() { order = append(order, 2) })
	root.OnDestroy(func() { order = append(order, 3) })
	root.Destroy()
	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Fatalf("expected LIFO cleanup order, got %v", order)
	}
}

func TestStrdupCopiesBytes(t *testing.T) {
	root := Root()
	b := []byte("hello")
	s := root.Strdup(string(b))
	b[0] = 'H'
	if s != "hello" {
		t.Fatalf("strdup should be independent of source bytes, got %q", s)
	}
}
