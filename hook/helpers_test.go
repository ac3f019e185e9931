package hook

import "github.com/httpinspect/engine/arena"

func rootArenaForTest() *arena.Arena { return arena.Root() }
