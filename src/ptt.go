package freedvtnc

/*------------------------------------------------------------------
 *
 * Purpose:   	Key the transmitter for the PTT self test.
 *
 * Description:	The test is IDLE -> ASSERTED -> IDLE.  Starting it keys the
 *		PTT line, starts a test tone and arms a timer.  When the
 *		timer fires the line is released again.  Nothing waits on
 *		the timer; the only way to see the test end is the PTT flag
 *		in ModemState.
 *
 *		A second start while the line is keyed is refused rather
 *		than restarting the timer.
 *
 *		Shutdown releases the line straight away so the radio is
 *		never left transmitting when the process exits.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// PTTTestDuration is how long the self test keeps the transmitter keyed.
const PTTTestDuration = 2 * time.Second

var (
	// ErrPTTBusy is returned when a test is started while PTT is already asserted.
	ErrPTTBusy = errors.New("PTT already asserted")
	// ErrPTTClosed is returned after Shutdown.
	ErrPTTClosed = errors.New("PTT controller shut down")
)

// AudioSink plays transmit audio.  Play may block until the samples are
// out; it must give up promptly when ctx is cancelled.
type AudioSink interface {
	SampleRate() int
	Play(ctx context.Context, samples []int16) error
}

// PTTController owns the PTT line and sequences the self test.
type PTTController struct {
	mu       sync.Mutex
	state    *ModemState
	line     PTTLine
	sink     AudioSink
	duration time.Duration
	logger   *log.Logger

	active     bool
	closed     bool
	generation uint64
	timer      *time.Timer
	cancelTone context.CancelFunc
}

// NewPTTController takes ownership of line.  sink may be nil, in which case
// the test keys PTT without any audio.
func NewPTTController(state *ModemState, line PTTLine, sink AudioSink, logger *log.Logger) *PTTController {
	if line == nil {
		line = NullPTTLine{}
	}

	if logger == nil {
		logger = log.Default()
	}

	return &PTTController{ //nolint:exhaustruct
		state:    state,
		line:     line,
		sink:     sink,
		duration: PTTTestDuration,
		logger:   logger.WithPrefix("ptt"),
	}
}

// SetTestDuration changes how long a test keys the transmitter.  It applies to tests started afterwards.
func (p *PTTController) SetTestDuration(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.duration = d
}

// StartTest keys PTT and returns at once; the line is released after the test duration.
func (p *PTTController) StartTest() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPTTClosed
	}

	if p.active {
		return ErrPTTBusy
	}

	if err := p.line.SetPTT(true); err != nil {
		// Make sure a half-keyed line is not left behind.
		_ = p.line.SetPTT(false)

		return fmt.Errorf("assert PTT: %w", err)
	}

	p.active = true
	p.generation++
	p.state.SetPTT(true)

	if p.sink != nil {
		var ctx, cancel = context.WithCancel(context.Background())
		p.cancelTone = cancel

		var samples = GenerateTone(TestToneFreqHz, p.sink.SampleRate(), p.duration, TestToneLevelDB)

		go func() {
			var err = p.sink.Play(ctx, samples)
			if err != nil && !errors.Is(err, context.Canceled) {
				p.logger.Warn("test tone playback failed", "err", err)
			}
		}()
	}

	var generation = p.generation
	p.timer = time.AfterFunc(p.duration, func() {
		p.finish(generation)
	})

	p.logger.Debug("PTT asserted", "duration", p.duration)

	return nil
}

// finish runs on the timer goroutine.  A stale generation means the test it
// was armed for has already been ended by Shutdown.
func (p *PTTController) finish(generation uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active || p.generation != generation {
		return
	}

	p.releaseLocked()
}

func (p *PTTController) releaseLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}

	if p.cancelTone != nil {
		p.cancelTone()
		p.cancelTone = nil
	}

	if err := p.line.SetPTT(false); err != nil {
		p.logger.Error("failed to release PTT", "err", err)
	}

	p.active = false
	p.state.SetPTT(false)

	p.logger.Debug("PTT released")
}

// Active reports whether a test currently has the transmitter keyed.
func (p *PTTController) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.active
}

// Shutdown ends any test in progress, releasing PTT, and closes the line.
// Later StartTest calls fail with ErrPTTClosed.  Calling it twice is harmless.
func (p *PTTController) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	if p.active {
		p.logger.Info("releasing PTT for shutdown")
		p.releaseLocked()
	}

	p.closed = true

	return p.line.Close()
}
