package engine

import (
	"testing"

	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/hostiface"
	"github.com/httpinspect/engine/internal/status"
)

type fakeServer struct{ desc hostiface.Descriptor }

func (f *fakeServer) ErrorResponse(tx *entity.Transaction, statusCode int) status.Code { return status.OK }
func (f *fakeServer) ErrorHeader(tx *entity.Transaction, name, value string) status.Code {
	return status.ENotImpl
}
func (f *fakeServer) ErrorBody(tx *entity.Transaction, data []byte) status.Code { return status.ENotImpl }
func (f *fakeServer) Header(tx *entity.Transaction, dir hostiface.HeaderDirection, action hostiface.HeaderAction, name, value string) status.Code {
	return status.ENotImpl
}
func (f *fakeServer) Close(conn *entity.Connection, tx *entity.Transaction) status.Code { return status.OK }
func (f *fakeServer) Descriptor() hostiface.Descriptor                                   { return f.desc }

func TestEngineRefusesIncompatibleServer(t *testing.T) {
	_, code := New(&fakeServer{desc: hostiface.Descriptor{Vernum: Vernum + 1}})
	if code != status.EIncompat {
		t.Fatalf("expected eincompat, got %v", code)
	}
}

func TestEngineLifecycle(t *testing.T) {
	eng, code := New(&fakeServer{desc: hostiface.Descriptor{Vernum: Vernum}})
	if code != status.OK {
		t.Fatalf("unexpected %v", code)
	}
	if eng.State() != Created {
		t.Fatalf("expected Created, got %v", eng.State())
	}
	if code := eng.BeginConfigure(); code != status.OK {
		t.Fatal(code)
	}
	if code := eng.FinishConfigure(); code != status.OK {
		t.Fatal(code)
	}
	if eng.State() != Running {
		t.Fatalf("expected Running, got %v", eng.State())
	}

	conn := eng.CreateConnection()
	tx := eng.CreateTransaction(conn)
	if tx == nil {
		t.Fatal("expected a transaction")
	}

	eng.Destroy()
	if !eng.PrimaryArena.Destroyed() {
		t.Fatalf("expected primary arena destroyed")
	}
	eng.Destroy() // idempotent
}

func TestLinkModuleAssignsIndex(t *testing.T) {
	eng, _ := New(&fakeServer{desc: hostiface.Descriptor{Vernum: Vernum}})
	eng.BeginConfigure()

	var gotEng interface{}
	m := hostiface.Module{
		Name:   "probe",
		Abinum: Abinum,
		Init: func(e interface{}) (interface{}, error) {
			gotEng = e
			return nil, nil
		},
	}
	if code := eng.LinkModule(m); code != status.OK {
		t.Fatal(code)
	}
	if gotEng != eng {
		t.Fatalf("expected module Init to receive the engine")
	}

	m2 := hostiface.Module{Name: "second", Abinum: Abinum}
	if code := eng.LinkModule(m2); code != status.OK {
		t.Fatal(code)
	}
	if eng.modules[0].Index != 0 || eng.modules[1].Index != 1 {
		t.Fatalf("expected module indexes 0 and 1, got %d and %d", eng.modules[0].Index, eng.modules[1].Index)
	}
}

func TestLinkModuleRejectsIncompatibleAbinum(t *testing.T) {
	eng, _ := New(&fakeServer{desc: hostiface.Descriptor{Vernum: Vernum}})
	eng.BeginConfigure()
	code := eng.LinkModule(hostiface.Module{Name: "bad", Abinum: Abinum + 1})
	if code != status.EIncompat {
		t.Fatalf("expected eincompat, got %v", code)
	}
}
