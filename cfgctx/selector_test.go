package cfgctx

import "testing"

func newTestTree(t *testing.T) (*Tree, *Context) {
	t.Helper()
	eng := NewEngineContext(0)
	main := NewMainContext(eng, 0)
	return NewTree(eng, main), main
}

func siteWithLocation(name string, hosts []string, path string) (*Site, *Location, *Context) {
	site := &Site{Name: name, Hosts: hosts}
	ctx := newContext(nil, KindLocation, "location", path, 0)
	ctx.Site = site
	loc := &Location{Path: path, Site: site, Context: ctx}
	loc.Context = ctx
	site.Locations = append(site.Locations, loc)
	ctx.Location = loc
	return site, loc, ctx
}

func TestSelectFallsBackToMain(t *testing.T) {
	tree, main := newTestTree(t)
	got, err := tree.Select(Selectable{Kind: EntityTx, Host: "nowhere.test", Path: "/x"})
	if err != nil {
		t.Fatal(err)
	}
	if got != main {
		t.Fatalf("expected fallback to main context when nothing matches")
	}
}

func TestSelectHostSuffixOrderDeterminesWinner(t *testing.T) {
	// S6: sites A={hosts:["example.com"]}, B={hosts:["www.example.com"]}.
	// Whichever is registered first wins when both match.
	siteA, _, ctxA := siteWithLocation("A", []string{"example.com"}, "")
	siteB, _, ctxB := siteWithLocation("B", []string{"www.example.com"}, "")

	tree, _ := newTestTree(t)
	tree.RegisterSite(siteB)
	tree.RegisterSite(siteA)

	got, err := tree.Select(Selectable{Kind: EntityTx, Host: "www.example.com", Path: "/"})
	if err != nil {
		t.Fatal(err)
	}
	if got != ctxB {
		t.Fatalf("expected B (registered first) to win, got %v", got)
	}

	tree2, _ := newTestTree(t)
	tree2.RegisterSite(siteA)
	tree2.RegisterSite(siteB)
	got2, err := tree2.Select(Selectable{Kind: EntityTx, Host: "www.example.com", Path: "/"})
	if err != nil {
		t.Fatal(err)
	}
	if got2 != ctxA {
		t.Fatalf("expected A (registered first) to win when order flipped, got %v", got2)
	}
}

func TestConnNeverSelectsSiteLocation(t *testing.T) {
	site, _, _ := siteWithLocation("A", nil, "")
	tree, main := newTestTree(t)
	tree.RegisterSite(site)
	got, err := tree.Select(Selectable{Kind: EntityConn})
	if err != nil {
		t.Fatal(err)
	}
	if got != main {
		t.Fatalf("connections must never bind to a site/location context, got %v", got)
	}
}

func TestEmptyHostMatchesOnlyWildcard(t *testing.T) {
	wildcardSite, _, wildcardCtx := siteWithLocation("wild", []string{"*"}, "")
	specificSite, _, _ := siteWithLocation("specific", []string{"example.com"}, "")
	anySite, _, anyCtx := siteWithLocation("any", nil, "")

	tree, _ := newTestTree(t)
	tree.RegisterSite(specificSite)
	tree.RegisterSite(wildcardSite)
	got, err := tree.Select(Selectable{Kind: EntityTx, Host: "", Path: "/"})
	if err != nil {
		t.Fatal(err)
	}
	if got != wildcardCtx {
		t.Fatalf("empty host must match only a wildcard host entry, got %v", got)
	}

	tree2, _ := newTestTree(t)
	tree2.RegisterSite(anySite)
	got2, _ := tree2.Select(Selectable{Kind: EntityTx, Host: "", Path: "/"})
	if got2 == anyCtx {
		t.Fatalf("empty host must not match a site with an empty (implicit any) host list")
	}
}

func TestPathPrefixMatch(t *testing.T) {
	site, _, ctx := siteWithLocation("www", []string{"x.test"}, "/api")
	tree, main := newTestTree(t)
	tree.RegisterSite(site)

	got, _ := tree.Select(Selectable{Kind: EntityTx, Host: "x.test", Path: "/api/v1/users"})
	if got != ctx {
		t.Fatalf("expected path-prefix match to select location context")
	}
	got2, _ := tree.Select(Selectable{Kind: EntityTx, Host: "x.test", Path: "/other"})
	if got2 != main {
		t.Fatalf("expected non-prefix path to fall back to main, got %v", got2)
	}
}
