// Package main is a minimal example host embedding the engine core: it
// wires a trivial hostiface.Server, links one demo module, and drives a
// single scripted connection/transaction through the notifier.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/httpinspect/engine/engine"
	"github.com/httpinspect/engine/entity"
	"github.com/httpinspect/engine/hostiface"
	"github.com/httpinspect/engine/internal/status"
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()
	defer glog.Flush()

	eng, code := engine.New(&stdoutServer{})
	if code != status.OK {
		glog.Errorf("enginectl: engine create failed: %s", code)
		return 1
	}

	if code := eng.BeginConfigure(); code != status.OK {
		glog.Errorf("enginectl: configure-start failed: %s", code)
		return 1
	}
	if code := eng.LinkModule(demoModule()); code != status.OK {
		glog.Errorf("enginectl: module link failed: %s", code)
		return 1
	}
	if code := eng.FinishConfigure(); code != status.OK {
		glog.Errorf("enginectl: configure-finish failed: %s", code)
		return 1
	}
	defer eng.Destroy()

	conn := eng.CreateConnection()
	conn.RemoteIP, conn.LocalIP = "203.0.113.7", "198.51.100.1"
	tx := eng.CreateTransaction(conn)
	tx.Hostname, tx.Path = "x.test", "/a"

	n := eng.Notify
	n.ConnOpened(conn)
	n.RequestStarted(tx, &entity.RequestLine{Method: "GET", URI: "/a", Protocol: "HTTP/1.1"})
	n.RequestHeaderFinished(tx)
	n.RequestFinished(tx)
	n.ResponseStarted(tx, &entity.ResponseLine{Protocol: "HTTP/1.1", Status: 200, Reason: "OK"})
	n.ResponseHeaderFinished(tx)
	n.ResponseFinished(tx)
	n.ConnClosed(conn)

	return 0
}

// stdoutServer is the smallest possible hostiface.Server: it prints what
// the core asked for instead of touching a real socket.
type stdoutServer struct{}

func (stdoutServer) ErrorResponse(tx *entity.Transaction, statusCode int) status.Code {
	fmt.Printf("tx %s: error_response(%d)\n", tx.ID, statusCode)
	return status.OK
}
func (stdoutServer) ErrorHeader(tx *entity.Transaction, name, value string) status.Code {
	return status.ENotImpl
}
func (stdoutServer) ErrorBody(tx *entity.Transaction, data []byte) status.Code { return status.ENotImpl }
func (stdoutServer) Header(tx *entity.Transaction, dir hostiface.HeaderDirection, action hostiface.HeaderAction, name, value string) status.Code {
	return status.ENotImpl
}
func (stdoutServer) Close(conn *entity.Connection, tx *entity.Transaction) status.Code {
	fmt.Printf("conn: close\n")
	return status.OK
}
func (stdoutServer) Descriptor() hostiface.Descriptor {
	return hostiface.Descriptor{Vernum: engine.Vernum, Abinum: engine.Abinum, Name: "enginectl", VersionString: "0.1.0"}
}

func demoModule() hostiface.Module {
	return hostiface.Module{
		Name:   "demo",
		Abinum: engine.Abinum,
	}
}
