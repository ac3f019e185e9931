package cfgctx

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("context selection", func() {
	var (
		tree       *Tree
		engineCtx  *Context
		mainCtx    *Context
		firstCtx   *Context
		secondCtx  *Context
	)

	BeforeEach(func() {
		engineCtx = NewEngineContext(0)
		mainCtx = NewMainContext(engineCtx, 0)
		tree = NewTree(engineCtx, mainCtx)

		siteA := &Site{Name: "a", Hosts: []string{"*"}}
		locA := &Location{Path: "", Site: siteA}
		firstCtx, _ = mainCtx.CreateChild(KindSite, "", "a", 0, nil)
		locA.Context = firstCtx
		siteA.Locations = []*Location{locA}

		siteB := &Site{Name: "b", Hosts: []string{"*"}}
		locB := &Location{Path: "", Site: siteB}
		secondCtx, _ = mainCtx.CreateChild(KindSite, "", "b", 0, nil)
		locB.Context = secondCtx
		siteB.Locations = []*Location{locB}

		tree.RegisterSite(siteA)
		tree.RegisterSite(siteB)
	})

	It("deterministically returns the same context for the same input", func() {
		ent := Selectable{Kind: EntityTx, Host: "x.test", Path: "/a"}
		for i := 0; i < 5; i++ {
			got, err := tree.Select(ent)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(firstCtx))
		}
	})

	It("breaks overlapping matches by registration order, not by specificity", func() {
		ent := Selectable{Kind: EntityTx, Host: "anything", Path: "/whatever"}
		got, err := tree.Select(ent)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(firstCtx), "first-registered site should win even though both match")
		Expect(got).NotTo(Equal(secondCtx))
	})

	It("falls back to the main context when nothing matches", func() {
		ent := Selectable{Kind: EntityConn}
		got, err := tree.Select(ent)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(mainCtx))
	})
})
