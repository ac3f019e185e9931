// Package auditlog provides a host-schedulable helper that rotates a
// config context's auditlog index file (spec.md §6 "Persisted state").
// The core itself never writes the file or runs a scheduler loop; this
// is the optional piece a host wires in if it wants rotation at all.
package auditlog

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/robfig/cron/v3"

	"github.com/httpinspect/engine/cfgctx"
)

// Rotator re-points a context's auditlog index path at a new timestamped
// path (the current path plus a nanosecond suffix), using cron to drive
// the schedule a host configures. It renames no file.
type Rotator struct {
	cron *cron.Cron
}

// NewRotator builds a Rotator with second-precision cron parsing, the
// same parser granularity robfig/cron/v3 offers beyond the bare 5-field
// crontab format.
func NewRotator() *Rotator {
	return &Rotator{cron: cron.New(cron.WithSeconds())}
}

// Schedule rotates ctx's auditlog index on spec (a standard cron
// expression, optionally with a leading seconds field). The rotation
// itself only ever updates the in-memory index path/flag; it is a
// module's job to actually move bytes on disk at that path.
func (r *Rotator) Schedule(spec string, ctx *cfgctx.Context) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() { r.rotate(ctx) })
}

func (r *Rotator) rotate(ctx *cfgctx.Context) {
	next := fmt.Sprintf("%s.%d", ctx.AuditLog.IndexPath, time.Now().UnixNano())
	glog.Infof("auditlog: rotating context %s index %s -> %s", ctx.Name, ctx.AuditLog.IndexPath, next)
	ctx.AuditLog.SetIndexPath(next, false)
}

// Start begins running scheduled rotations in their own goroutine.
func (r *Rotator) Start() { r.cron.Start() }

// Stop halts the scheduler and waits for any in-flight rotation to
// finish.
func (r *Rotator) Stop() { <-r.cron.Stop().Done() }
