package service

import (
	"context"
	"time"

	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
)

// Result is a completed detection.
type Result struct {
	Set      *domain.FaceSet
	Duration time.Duration
}

// Pending is the handle of a detection in flight. It resolves exactly once.
type Pending struct {
	id     string
	done   chan struct{}
	result *Result
	err    error
	cancel context.CancelCauseFunc
}

func newPending(id string, cancel context.CancelCauseFunc) *Pending {
	return &Pending{
		id:     id,
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

func (p *Pending) ID() string {
	return p.id
}

// Done is closed once the result or error is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the detection resolves or ctx ends. Giving up on the
// wait does not cancel the detection.
func (p *Pending) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel aborts the detection. It has no effect once resolved.
func (p *Pending) Cancel() {
	p.cancel(context.Canceled)
}

func (p *Pending) resolve(r *Result, err error) {
	p.result = r
	p.err = err
	close(p.done)
}
