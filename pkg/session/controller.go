// Package session owns the camera capture lifecycle: it opens the device,
// runs the capture-encode-detect poll loop while active, and keeps the
// latest result and error for presenters.
//
// The controller has two states:
//
//	Inactive --Start (device opened)--> Active --Stop/Close--> Inactive
//
// Failures while Active are reported in the error slot; they never stop
// the loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/go-emotion/pkg/camera"
	"github.com/teslashibe/go-emotion/pkg/detector"
	"github.com/teslashibe/go-emotion/pkg/emotion"
	"github.com/teslashibe/go-emotion/pkg/frame"
	"github.com/teslashibe/go-emotion/pkg/poll"
)

// Sentinel errors.
var (
	ErrCameraUnavailable = errors.New("session: camera unavailable")
	ErrClosed            = errors.New("session: controller closed")
)

// Controller is the capture controller.
type Controller struct {
	cameras  *camera.Manager
	detector detector.Detector
	cfg      *Config
	logger   *slog.Logger
	rate     *poll.RateCounter

	// missLimit is FrameTimeout expressed in polls.
	missLimit int

	lifetime context.Context
	cancel   context.CancelFunc
	loops    sync.WaitGroup

	// opMu serializes Start, Stop and Close so a slow device open never
	// holds mu.
	opMu sync.Mutex

	notifyMu sync.Mutex

	mu        sync.Mutex
	active    bool
	closed    bool
	epoch     uint64
	sessionID string
	misses    int
	source    camera.Source
	task      *poll.Task
	result    *emotion.Result
	errText   string
	updatedAt time.Time
}

// New creates an inactive controller. Capture settings are read from
// cameras on every Start.
func New(cameras *camera.Manager, det detector.Detector, opts ...Option) *Controller {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.FrameTimeout <= 0 {
		cfg.FrameTimeout = DefaultFrameTimeout
	}
	missLimit := int((cfg.FrameTimeout + cfg.Interval - 1) / cfg.Interval)
	if missLimit < 1 {
		missLimit = 1
	}
	if cfg.NewSource == nil {
		cfg.NewSource = camera.NewSource
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cameras:   cameras,
		detector:  det,
		cfg:       cfg,
		logger:    cfg.Logger.With("component", "session"),
		rate:      poll.NewRateCounterWithClock(poll.DefaultWindow, cfg.Now),
		missLimit: missLimit,
		lifetime:  ctx,
		cancel:    cancel,
		updatedAt: cfg.Now(),
	}
}

// Start opens the camera and begins polling. Start while active is a
// no-op. When the device cannot be opened the controller stays inactive,
// the error slot is set and the returned error wraps ErrCameraUnavailable.
func (c *Controller) Start(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	closed, active := c.closed, c.active
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if active {
		return nil
	}

	camCfg := c.cameras.GetConfig()
	src, err := c.openSource(ctx, camCfg)
	if err != nil {
		c.logger.Warn("camera unavailable", "error", err)
		c.mu.Lock()
		c.errText = MsgCameraUnavailable
		c.touch()
		c.mu.Unlock()
		c.notify()
		return fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	enc := frame.NewEncoder(camCfg.Quality)

	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.active = true
	c.sessionID = uuid.NewString()
	c.misses = 0
	c.source = src
	c.errText = ""
	c.rate.Reset()
	c.touch()
	sessionID := c.sessionID

	task := poll.Start(c.lifetime, c.cfg.Interval, func(ctx context.Context) {
		c.tick(ctx, epoch, src, enc)
	})
	c.task = task
	c.mu.Unlock()

	c.loops.Add(1)
	go func() {
		defer c.loops.Done()
		task.Wait()
	}()

	c.logger.Info("capture started",
		"session_id", sessionID,
		"source", src.Name(),
		"interval", c.cfg.Interval,
	)
	c.notify()
	return nil
}

func (c *Controller) openSource(ctx context.Context, cfg camera.Config) (camera.Source, error) {
	src, err := c.cfg.NewSource(cfg, c.cfg.Logger)
	if err != nil {
		return nil, err
	}
	if err := src.Open(ctx); err != nil {
		src.Close()
		return nil, err
	}
	return src, nil
}

// Stop releases the device, cancels future polls and clears the result
// and throughput. A poll already talking to the backend is not aborted;
// its response is discarded. Stop while inactive is a no-op.
func (c *Controller) Stop() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.stop()
}

func (c *Controller) stop() error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return nil
	}
	c.active = false
	task, src, sessionID := c.task, c.source, c.sessionID
	c.task = nil
	c.source = nil
	c.sessionID = ""
	c.result = nil
	c.rate.Reset()
	c.touch()
	c.mu.Unlock()

	task.Stop()
	err := src.Close()
	if err != nil {
		c.logger.Warn("camera release failed", "session_id", sessionID, "error", err)
	}

	c.logger.Info("capture stopped", "session_id", sessionID)
	c.notify()
	return err
}

// Close stops any active session, cancels in-flight requests and waits
// for the poll loop to exit. The controller cannot be restarted.
func (c *Controller) Close() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	err := c.stop()

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.loops.Wait()
	return err
}

// Upload classifies a user-supplied image. It works whether or not the
// camera is active; a later live poll overwrites its result.
func (c *Controller) Upload(ctx context.Context, name string, r io.Reader) (*emotion.Result, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	upload, err := frame.NewUpload(name, r)
	if err != nil {
		c.setError(MsgDetectFailed)
		return nil, err
	}

	c.setError("")
	if !upload.IsImage() {
		// The backend decides; this only makes a rejection easier to read in logs.
		c.logger.Warn("upload does not look like an image", "file", upload.Name, "content_type", upload.ContentType)
	}

	result, err := c.detector.DetectFromFile(ctx, upload)
	if err != nil {
		msg, ok := detector.ServerMessage(err)
		if !ok {
			msg = MsgDetectFailed
		}
		c.logger.Warn("upload detection failed", "file", upload.Name, "error", err)
		c.setError(msg)
		return nil, err
	}

	c.mu.Lock()
	c.result = result
	c.errText = ""
	c.touch()
	c.mu.Unlock()
	c.notify()

	c.logger.Info("upload classified", "file", upload.Name, "dominant", result.Dominant)
	return result.Clone(), nil
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Active:    c.active,
		SessionID: c.sessionID,
		Result:    c.result.Clone(),
		Error:     c.errText,
		UpdatedAt: c.updatedAt,
	}
	if c.active {
		s.Source = c.source.Name()
		s.FPS = c.rate.Rate()
	}
	return s
}

// Active reports whether a capture session is running.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// tick runs one capture-encode-detect cycle for the session tagged epoch.
func (c *Controller) tick(ctx context.Context, epoch uint64, src camera.Source, enc *frame.Encoder) {
	if !c.current(epoch) {
		return
	}

	img, err := src.Read()
	if errors.Is(err, camera.ErrNoFrame) {
		if c.missed(epoch) {
			c.failWith(epoch, MsgCameraUnavailable,
				fmt.Errorf("no frame for %s: %w", c.cfg.FrameTimeout, err))
		}
		return
	}
	if err != nil {
		c.failWith(epoch, MsgCameraUnavailable, err)
		return
	}
	c.gotFrame(epoch)

	payload, err := enc.Encode(img)
	if err != nil {
		c.fail(epoch, err)
		return
	}

	if fn := c.cfg.OnFrame; fn != nil && c.current(epoch) {
		fn(payload)
	}

	// Re-check right before the request so a Stop during capture or
	// encoding issues no transport call. A Stop landing between this
	// check and the send still lets this one request out; apply drops
	// its result.
	if !c.current(epoch) {
		return
	}

	result, err := c.detector.DetectFromDataURI(ctx, payload.DataURI())
	if err != nil {
		c.fail(epoch, err)
		return
	}
	c.apply(epoch, result)
}

func (c *Controller) current(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active && c.epoch == epoch
}

// apply stores a poll result unless the session it belongs to has ended.
func (c *Controller) apply(epoch uint64, result *emotion.Result) {
	c.mu.Lock()
	if !c.active || c.epoch != epoch {
		c.mu.Unlock()
		c.logger.Debug("discarding late result", "epoch", epoch)
		return
	}
	c.result = result
	c.errText = ""
	c.rate.Tick()
	c.touch()
	c.mu.Unlock()
	c.notify()
}

// missed counts a poll without a frame and reports whether the device has
// now been silent for FrameTimeout. It fires once per silent stretch.
func (c *Controller) missed(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || c.epoch != epoch {
		return false
	}
	c.misses++
	return c.misses == c.missLimit
}

func (c *Controller) gotFrame(epoch uint64) {
	c.mu.Lock()
	if c.active && c.epoch == epoch {
		c.misses = 0
	}
	c.mu.Unlock()
}

// fail records a detection failure. The previous result stays on display.
func (c *Controller) fail(epoch uint64, err error) {
	msg, ok := detector.ServerMessage(err)
	if !ok {
		msg = MsgDetectFailed
	}
	c.failWith(epoch, msg, err)
}

func (c *Controller) failWith(epoch uint64, msg string, err error) {
	c.mu.Lock()
	if !c.active || c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	changed := c.errText != msg
	c.errText = msg
	c.touch()
	c.mu.Unlock()

	if changed {
		c.logger.Warn("detection failed", "error", err)
	} else {
		c.logger.Debug("detection failed", "error", err)
	}
	c.notify()
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	c.errText = msg
	c.touch()
	c.mu.Unlock()
	c.notify()
}

// touch must be called with mu held.
func (c *Controller) touch() {
	c.updatedAt = c.cfg.Now()
}

// notify delivers the current snapshot. Deliveries are serialized so
// observers never see an older snapshot after a newer one.
func (c *Controller) notify() {
	fn := c.cfg.OnChange
	if fn == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	fn(c.State())
}
