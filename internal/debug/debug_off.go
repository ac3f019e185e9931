// +build !debug

// Package debug provides assertion helpers compiled in only under the
// `debug` build tag; this file supplies the zero-cost no-op variants used
// in production builds, mirroring the teacher's cmn/debug split.
package debug

import "sync"

func Assert(cond bool, a ...interface{})            {}
func Assertf(cond bool, f string, a ...interface{})  {}
func AssertNoErr(err error)                          {}
func AssertMutexLocked(m *sync.Mutex)                {}
func AssertRWMutexLocked(m *sync.RWMutex)             {}

func Enabled() bool { return false }
