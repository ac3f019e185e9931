package block

import (
	"testing"

	"github.com/httpinspect/engine/arena"
	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/hostiface"
	"github.com/httpinspect/engine/internal/status"
)

type fakeServer struct {
	errorResponseCalls int
	closeCalls         int
}

func (f *fakeServer) ErrorResponse(tx *entity.Transaction, statusCode int) status.Code {
	f.errorResponseCalls++
	return status.OK
}
func (f *fakeServer) ErrorHeader(tx *entity.Transaction, name, value string) status.Code {
	return status.ENotImpl
}
func (f *fakeServer) ErrorBody(tx *entity.Transaction, data []byte) status.Code { return status.ENotImpl }
func (f *fakeServer) Header(tx *entity.Transaction, dir hostiface.HeaderDirection, action hostiface.HeaderAction, name, value string) status.Code {
	return status.ENotImpl
}
func (f *fakeServer) Close(conn *entity.Connection, tx *entity.Transaction) status.Code {
	f.closeCalls++
	return status.OK
}
func (f *fakeServer) Descriptor() hostiface.Descriptor { return hostiface.Descriptor{} }

func newTestTx(t *testing.T) (*entity.Connection, *entity.Transaction) {
	t.Helper()
	conn := entity.NewConnection(arena.Root(), 0)
	return conn, conn.CreateTx()
}

// TestAdvisoryBlock is spec.md §8 scenario S4.
func TestAdvisoryBlock(t *testing.T) {
	srv := &fakeServer{}
	sub := New(srv)
	var postSeen entity.BlockInfo
	sub.RegisterPostHook(func(tx *entity.Transaction, info entity.BlockInfo) status.Code {
		postSeen = info
		return status.OK
	})
	conn, tx := newTestTx(t)

	code := sub.Block(conn, tx)
	if code != status.Declined {
		t.Fatalf("expected advisory block to return declined, got %v", code)
	}
	if !tx.HasFlag(entity.FlagBlocked) {
		t.Fatalf("expected is_blocked to be set")
	}
	if tx.Block.Status != 403 {
		t.Fatalf("expected block_info.status == 403, got %d", tx.Block.Status)
	}
	if srv.errorResponseCalls != 0 {
		t.Fatalf("expected server.error_response not to be called in advisory mode, got %d calls", srv.errorResponseCalls)
	}
	if postSeen.Status != 403 {
		t.Fatalf("expected post-hook to see block_info.status == 403, got %d", postSeen.Status)
	}
}

// TestActiveBlockWithClose is spec.md §8 scenario S5.
func TestActiveBlockWithClose(t *testing.T) {
	srv := &fakeServer{}
	sub := New(srv)
	sub.SetHandler(func(tx *entity.Transaction) (entity.BlockInfo, status.Code) {
		return entity.BlockInfo{Method: entity.BlockClose}, status.OK
	})
	conn, tx := newTestTx(t)
	tx.SetFlag(entity.FlagBlockingMode)

	code := sub.Block(conn, tx)
	if code != status.OK {
		t.Fatalf("expected active block to return ok, got %v", code)
	}
	if srv.closeCalls != 1 {
		t.Fatalf("expected server.close to be called once, got %d", srv.closeCalls)
	}
	if !tx.HasFlag(entity.FlagBlocked) {
		t.Fatalf("expected is_blocked to be set")
	}

	// Subsequent calls are idempotent (spec.md §8 property 9).
	code2 := sub.Block(conn, tx)
	if code2 != status.OK {
		t.Fatalf("expected idempotent second call to return ok, got %v", code2)
	}
	if srv.closeCalls != 1 {
		t.Fatalf("expected no additional server.close call, got %d total", srv.closeCalls)
	}
}

// TestBlockIdempotence is spec.md §8 property 9 directly: N calls fire
// pre-hooks/handler/post-hooks exactly once.
func TestBlockIdempotence(t *testing.T) {
	srv := &fakeServer{}
	sub := New(srv)
	preCount, postCount, handlerCount := 0, 0, 0
	sub.RegisterPreHook(func(tx *entity.Transaction) status.Code {
		preCount++
		return status.OK
	})
	sub.SetHandler(func(tx *entity.Transaction) (entity.BlockInfo, status.Code) {
		handlerCount++
		return entity.BlockInfo{Method: entity.BlockStatus, Status: 451}, status.OK
	})
	sub.RegisterPostHook(func(tx *entity.Transaction, info entity.BlockInfo) status.Code {
		postCount++
		return status.OK
	})
	conn, tx := newTestTx(t)
	tx.SetFlag(entity.FlagBlockingMode)

	for i := 0; i < 5; i++ {
		sub.Block(conn, tx)
	}
	if preCount != 1 || handlerCount != 1 || postCount != 1 {
		t.Fatalf("expected each hook stage to run exactly once, got pre=%d handler=%d post=%d", preCount, handlerCount, postCount)
	}
	if tx.Block.Status != 451 {
		t.Fatalf("expected stable block_info across repeated calls, got %d", tx.Block.Status)
	}
}
