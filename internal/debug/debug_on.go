// +build debug

// Package debug provides assertion helpers compiled in only under the
// `debug` build tag, mirroring the teacher's cmn/debug split.
package debug

import (
	"bytes"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/golang/glog"
)

func Assert(cond bool, a ...interface{}) {
	if !cond {
		_panic(a...)
	}
}

func Assertf(cond bool, f string, a ...interface{}) {
	if !cond {
		_panic(fmt.Sprintf(f, a...))
	}
}

func AssertNoErr(err error) {
	if err != nil {
		_panic(err)
	}
}

func AssertMutexLocked(m *sync.Mutex) {
	state := mutexState(m)
	Assertf(state&1 == 1, "mutex not locked")
}

func AssertRWMutexLocked(m *sync.RWMutex) {
	state := rwMutexWState(m)
	Assertf(state&1 == 1, "rwmutex not locked")
}

func Enabled() bool { return true }

func _panic(a ...interface{}) {
	msg := "DEBUG PANIC: "
	if len(a) > 0 {
		msg += fmt.Sprint(a...)
	}
	buf := bytes.NewBufferString(msg)
	for i := 2; i < 9; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok || !strings.Contains(file, "httpinspect") {
			break
		}
		if buf.Len() > len(msg) {
			buf.WriteString(" <- ")
		}
		fmt.Fprintf(buf, "%s:%d", filepath.Base(file), line)
	}
	glog.Errorf("%s", buf.String())
	glog.Flush()
	panic(msg)
}
