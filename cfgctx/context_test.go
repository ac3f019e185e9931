package cfgctx

import "testing"

func TestMainParentIsEngine(t *testing.T) {
	eng := NewEngineContext(0)
	main := NewMainContext(eng, 0)
	if main.Parent != eng {
		t.Fatalf("main context's parent must be the engine context")
	}
}

func TestLocationRequiresSite(t *testing.T) {
	eng := NewEngineContext(0)
	main := NewMainContext(eng, 0)
	if err := main.OpenState(); err != nil {
		t.Fatal(err)
	}
	_, err := main.CreateChild(KindLocation, "location", "/api", 0, nil)
	if err == nil {
		t.Fatalf("expected error creating a location without a site ancestor")
	}
}

func TestOpenCloseLifecycle(t *testing.T) {
	eng := NewEngineContext(0)
	main := NewMainContext(eng, 0)
	if err := main.RequireOpen(); err == nil {
		t.Fatalf("expected RequireOpen to fail before Open")
	}
	if err := main.OpenState(); err != nil {
		t.Fatal(err)
	}
	if err := main.RequireOpen(); err != nil {
		t.Fatalf("expected RequireOpen to succeed once open: %v", err)
	}
	if err := main.OpenState(); err == nil {
		t.Fatalf("expected double-open to fail")
	}
	if err := main.CloseState(); err != nil {
		t.Fatal(err)
	}
	if err := main.RequireOpen(); err == nil {
		t.Fatalf("expected RequireOpen to fail once closed")
	}
}

func TestDestroyCascadesToChildren(t *testing.T) {
	eng := NewEngineContext(0)
	main := NewMainContext(eng, 0)
	main.OpenState()
	child, err := main.CreateChild(KindSite, "site", "www", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	eng.Destroy()
	if !child.Arena.Destroyed() {
		t.Fatalf("destroying the engine context must cascade to descendant contexts")
	}
}
