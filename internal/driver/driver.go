// Package driver wires the core pipeline — Model View, Config View,
// Classifier, Woog Builder, Emission Engine — into a runnable program: one
// (Model, Config) pair in, one rendered Buffer out, flushed somewhere by a
// Flusher. None of this lives in the core packages because file I/O and
// worker-pool fan-out are concerns of the program that drives the
// generator, not of the generator itself.
package driver

import (
	"fmt"

	"github.com/uberFoo/grace-sub001/internal/buffer"
	"github.com/uberFoo/grace-sub001/internal/classifier"
	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/emit"
	"github.com/uberFoo/grace-sub001/internal/gracelog"
	"github.com/uberFoo/grace-sub001/internal/graceerr"
	"github.com/uberFoo/grace-sub001/internal/model"
	"github.com/uberFoo/grace-sub001/internal/woog"
)

// Action is the outcome a driver run reports for one (Model, Module) pair
// (§6.2): Write means the rendered buffer differs from any prior flush and
// was written, FormatWrite additionally invoked an external formatter, and
// Skip means the pair was left untouched (unchanged, or failed and the
// driver chose to continue with its siblings).
type Action int

const (
	Write Action = iota
	FormatWrite
	Skip
)

func (a Action) String() string {
	switch a {
	case Write:
		return "write"
	case FormatWrite:
		return "format-write"
	default:
		return "skip"
	}
}

// Result is what one Run call reports back to its caller.
type Result struct {
	Module string
	Action Action
	Buffer *buffer.Buffer
	Err    error
}

// Run processes a single (Model, Config) pair on one goroutine-free call
// stack: build the Classifier and Woog model, then render the whole module
// through the Emission Engine into a fresh Buffer (§5 "one run processes
// one pair").
func Run(view model.View, cfg *config.Config) (*buffer.Buffer, error) {
	log := gracelog.Get(gracelog.CategoryDriver)

	cls := classifier.New(view, cfg)
	wb := woog.New(view, cfg, cls)

	wg, err := wb.Build()
	if err != nil {
		return nil, &graceerr.CompilerError{Description: "building woog model", Cause: err}
	}

	pipeline := emit.NewPipeline(view, cfg, cls, wg)
	buf := buffer.New()
	if err := emit.WriteModule(buf, pipeline); err != nil {
		return nil, &graceerr.CompilerError{Description: "emitting module", Cause: err}
	}

	if !buf.Balanced() {
		return nil, &graceerr.FormatError{Region: "<module>", Cause: fmt.Errorf("unbalanced region nesting")}
	}

	log.Debugw("run complete", "objects", len(view.Objects()), "lines", len(buf.Lines()))
	return buf, nil
}

// Job is one (name, Model, Config) unit of work for RunAll.
type Job struct {
	Name   string
	View   model.View
	Config *config.Config
}

// RunAll fans Jobs out across a bounded worker pool (a semaphore channel,
// per §5/§7 — the corpus carries no errgroup dependency to reach for
// instead) and flushes each rendered Buffer through flusher. A ModelError
// or CompilerError from one job is logged and the job reported Skip; it
// never aborts its siblings (§7 "driver logs and skips the affected file
// but continues").
func RunAll(jobs []Job, flusher Flusher, maxWorkers int) []Result {
	log := gracelog.Get(gracelog.CategoryDriver)
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	results := make([]Result, len(jobs))
	sem := make(chan struct{}, maxWorkers)
	done := make(chan int, len(jobs))

	for i, job := range jobs {
		i, job := i, job
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; done <- i }()
			results[i] = runOne(job, flusher, log)
		}()
	}
	for range jobs {
		<-done
	}
	return results
}

func runOne(job Job, flusher Flusher, log interface {
	Errorw(string, ...interface{})
}) Result {
	buf, err := Run(job.View, job.Config)
	if err != nil {
		log.Errorw("job failed", "module", job.Name, "error", err)
		return Result{Module: job.Name, Action: Skip, Err: err}
	}

	action, err := flusher.Flush(job.Name, buf)
	if err != nil {
		log.Errorw("flush failed", "module", job.Name, "error", err)
		return Result{Module: job.Name, Action: Skip, Buffer: buf, Err: err}
	}
	return Result{Module: job.Name, Action: action, Buffer: buf}
}
