// +build debug

package debug

import (
	"reflect"
	"sync"
)

func mutexState(m *sync.Mutex) int64 {
	return reflect.ValueOf(m).Elem().FieldByName("state").Int()
}

func rwMutexWState(m *sync.RWMutex) int64 {
	return reflect.ValueOf(m).Elem().FieldByName("w").FieldByName("state").Int()
}
