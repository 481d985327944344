package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facemood/internal/audit"
	"github.com/saturnino-fabrica-de-software/facemood/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemood/internal/imaging"
	"github.com/saturnino-fabrica-de-software/facemood/internal/presenter"
	"github.com/saturnino-fabrica-de-software/facemood/internal/provider"
)

// jpegQuality matches the quality used when a decoded image is submitted.
const jpegQuality = 100

// Listener is called once per successful, non-superseded detection.
type Listener func(*Result)

// DetectionService owns the most recent face collection. A new request
// clears the collection at once and cancels any request still in flight.
type DetectionService struct {
	analyzer     provider.FaceAnalyzer
	logger       *slog.Logger
	auditLogger  audit.Logger
	providerName string
	sinks        []EventSink
	timeout      time.Duration
	now          func() time.Time

	current atomic.Pointer[domain.FaceSet]

	mu         sync.Mutex
	generation uint64
	inFlight   context.CancelCauseFunc
	listener   Listener

	wg sync.WaitGroup
}

func NewDetectionService(analyzer provider.FaceAnalyzer, logger *slog.Logger) *DetectionService {
	return &DetectionService{
		analyzer:    analyzer,
		logger:      logger.With("component", "detection"),
		auditLogger: &audit.NoOpLogger{},
		now:         time.Now,
	}
}

func (s *DetectionService) WithAuditLogger(l audit.Logger, providerName string) *DetectionService {
	s.auditLogger = l
	s.providerName = providerName
	return s
}

func (s *DetectionService) WithEventSink(sink EventSink) *DetectionService {
	s.sinks = append(s.sinks, sink)
	return s
}

// WithTimeout bounds each request. Zero means no bound beyond the caller's context.
func (s *DetectionService) WithTimeout(d time.Duration) *DetectionService {
	s.timeout = d
	return s
}

// SetListener replaces the completion listener. nil removes it.
func (s *DetectionService) SetListener(l Listener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

// Detect submits encoded image bytes and returns without waiting for the
// analysis.
func (s *DetectionService) Detect(ctx context.Context, data []byte) *Pending {
	return s.start(ctx, data, nil)
}

// DetectImage encodes img as JPEG and submits it.
func (s *DetectionService) DetectImage(ctx context.Context, img image.Image) *Pending {
	data, err := imaging.EncodeJPEG(img, jpegQuality)
	if err != nil {
		// an empty payload makes the request fail with ErrInvalidImage
		s.logger.Warn("encode image for detection", slog.String("error", err.Error()))
	}
	return s.start(ctx, data, img)
}

func (s *DetectionService) start(ctx context.Context, data []byte, decoded image.Image) *Pending {
	id := uuid.NewString()

	reqCtx, cancel := context.WithCancelCause(ctx)
	if s.timeout > 0 {
		var stop context.CancelFunc
		reqCtx, stop = context.WithTimeout(reqCtx, s.timeout)
		inner := cancel
		cancel = func(cause error) {
			inner(cause)
			stop()
		}
	}
	p := newPending(id, cancel)

	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.inFlight != nil {
		s.inFlight(domain.ErrDetectionSuperseded)
	}
	s.inFlight = cancel
	s.current.Store(nil)
	s.mu.Unlock()

	s.emit(Event{Type: EventDetectionStarted, RequestID: id})
	s.logAudit(ctx, audit.Event{
		RequestID: id,
		EventType: audit.EventDetectionRequested,
		Success:   true,
		Metadata:  map[string]string{"image_size": strconv.Itoa(len(data))},
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel(nil)
		s.run(reqCtx, gen, p, data, decoded)
	}()

	return p
}

func (s *DetectionService) run(ctx context.Context, gen uint64, p *Pending, data []byte, decoded image.Image) {
	started := s.now()

	set, err := s.analyze(ctx, p.ID(), data, decoded)
	if err == nil {
		if !s.publish(gen, set) {
			err = domain.ErrDetectionSuperseded
		}
	} else {
		s.release(gen)
	}

	if err != nil {
		err = classify(err)
		s.fail(ctx, p, err)
		return
	}

	result := &Result{Set: set, Duration: s.now().Sub(started)}
	defer p.resolve(result, nil)

	s.logger.Info("detection completed",
		slog.String("request_id", p.ID()),
		slog.Int("faces", len(set.Faces)),
		slog.Duration("duration", result.Duration),
	)
	s.logAudit(ctx, audit.Event{
		RequestID: p.ID(),
		EventType: audit.EventDetectionCompleted,
		FaceCount: len(set.Faces),
		Success:   true,
	})
	s.emit(Event{Type: EventDetectionCompleted, RequestID: p.ID(), Result: result})

	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l != nil {
		l(result)
	}
}

func (s *DetectionService) analyze(ctx context.Context, id string, data []byte, img image.Image) (*domain.FaceSet, error) {
	if img == nil {
		var err error
		img, _, err = imaging.Decode(data)
		if err != nil {
			return nil, domain.ErrInvalidImage.WithError(err)
		}
	}
	if len(data) == 0 {
		return nil, domain.ErrInvalidImage
	}

	payload, scale := data, 1.0
	if limit := s.analyzer.MaxImageBytes(); limit > 0 && len(data) > limit {
		var err error
		payload, scale, err = imaging.FitWithin(img, limit, jpegQuality)
		if err != nil {
			return nil, domain.ErrImageTooLarge.WithError(err)
		}
		s.logger.Debug("image downscaled to fit analyzer limit",
			slog.String("request_id", id),
			slog.Int("original_bytes", len(data)),
			slog.Int("payload_bytes", len(payload)),
			slog.Float64("scale", scale),
		)
	}

	faces, err := s.analyzer.Analyze(ctx, payload)
	if err != nil {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		return nil, err
	}
	if err := context.Cause(ctx); err != nil {
		return nil, err
	}

	if scale != 1 {
		for i := range faces {
			faces[i].Rectangle = faces[i].Rectangle.Scale(1 / scale)
		}
	}

	b := img.Bounds()
	return &domain.FaceSet{
		RequestID:   id,
		Faces:       faces,
		Framed:      presenter.FrameFaces(img, faces),
		Width:       b.Dx(),
		Height:      b.Dy(),
		CompletedAt: s.now().UTC(),
	}, nil
}

// publish stores set only if no newer request was issued meanwhile.
func (s *DetectionService) publish(gen uint64, set *domain.FaceSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.current.Store(set)
	s.inFlight = nil
	return true
}

func (s *DetectionService) release(gen uint64) {
	s.mu.Lock()
	if gen == s.generation {
		s.inFlight = nil
	}
	s.mu.Unlock()
}

func (s *DetectionService) fail(ctx context.Context, p *Pending, err error) {
	defer p.resolve(nil, err)

	if errors.Is(err, domain.ErrDetectionSuperseded) {
		s.logger.Debug("detection superseded", slog.String("request_id", p.ID()))
	} else {
		s.logger.Warn("detection failed",
			slog.String("request_id", p.ID()),
			slog.String("error", err.Error()),
		)
	}

	s.logAudit(ctx, audit.Event{
		RequestID: p.ID(),
		EventType: audit.EventDetectionFailed,
		Success:   false,
		Error:     err.Error(),
	})
	s.emit(Event{Type: EventDetectionFailed, RequestID: p.ID(), Err: err})
}

// classify turns any failure into an AppError for the HTTP layer.
func classify(err error) error {
	var appErr *domain.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, context.Canceled):
		return domain.ErrDetectionFailed.WithError(fmt.Errorf("cancelled: %w", err))
	default:
		return domain.ErrDetectionFailed.WithError(err)
	}
}

func (s *DetectionService) emit(e Event) {
	if len(s.sinks) == 0 {
		return
	}
	e.At = s.now().UTC()
	for _, sink := range s.sinks {
		sink(e)
	}
}

func (s *DetectionService) logAudit(ctx context.Context, e audit.Event) {
	e.Provider = s.providerName
	_ = s.auditLogger.Log(context.WithoutCancel(ctx), e)
}

// Faces returns a copy of the current collection; empty while a request is
// in flight or after a failure.
func (s *DetectionService) Faces() []domain.FaceRecord {
	return s.current.Load().Records()
}

// Snapshot returns the current published set, or nil.
func (s *DetectionService) Snapshot() *domain.FaceSet {
	return s.current.Load()
}

func (s *DetectionService) Clear() {
	s.current.Store(nil)
}

// FaceAt runs the hit test over the current collection.
func (s *DetectionService) FaceAt(p image.Point) (domain.FaceRecord, bool) {
	return presenter.HitTest(s.Faces(), p)
}

// Tap resolves a tap in view coordinates against the current collection.
func (s *DetectionService) Tap(view presenter.Transform, x, y float64) (*presenter.TapResult, error) {
	set := s.Snapshot()
	if set == nil {
		return nil, domain.ErrNoFacesYet
	}

	result, err := presenter.Tap(set.Faces, view, x, y)
	if err != nil {
		return nil, err
	}

	s.logAudit(context.Background(), audit.Event{
		RequestID: set.RequestID,
		EventType: audit.EventFaceTapped,
		FaceID:    result.Face.ID,
		Success:   true,
		Metadata:  map[string]string{"dominant": result.Dominant},
	})
	return result, nil
}

// Shutdown cancels the request in flight and waits for detection goroutines
// to finish or ctx to end.
func (s *DetectionService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight != nil {
		s.inFlight(context.Canceled)
		s.inFlight = nil
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
