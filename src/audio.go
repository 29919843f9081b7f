package freedvtnc

/*------------------------------------------------------------------
 *
 * Purpose:   	Interface to the sound card for transmit and receive audio.
 *
 * Description:	PortAudio in blocking mode.  Samples are 16 bit signed,
 *		mono.
 *
 *		Transmit audio is queued; a single goroutine takes it off
 *		the queue one buffer at a time, applies the transmit gain,
 *		and writes it to the device.  That makes the queue the
 *		thing CLEAR empties and the gain the thing VOLUME sets.
 *
 *		Receive audio is read continuously and handed to the
 *		level meter.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const audioFramesPerBuffer = 512

// Transmit gain limits, in dB.  Anything beyond MaxGainDB is solid clipping.
const (
	MinGainDB = -100
	MaxGainDB = 40
)

var (
	errAudioClosed = errors.New("audio device closed")

	// ErrGainOutOfRange is returned by SetGainDB outside MinGainDB to MaxGainDB.
	ErrGainOutOfRange = fmt.Errorf("gain must be between %d and %d dB", MinGainDB, MaxGainDB)
)

// playback is one queued chunk of audio and the caller waiting for it.
type playback struct {
	samples []int16
	pos     int
	done    chan error
}

// txPlayer is the device independent half of the transmit path.
// write is called with one buffer of gain-adjusted samples at a time.
type txPlayer struct {
	mu        sync.Mutex
	queue     []*playback
	gain      float64
	closed    bool
	wake      chan struct{}
	quit      chan struct{}
	stopped   chan struct{}
	blockSize int
	write     func(block []int16) error
}

func newTXPlayer(blockSize int, write func(block []int16) error) *txPlayer {
	return &txPlayer{ //nolint:exhaustruct
		gain:      1.0,
		wake:      make(chan struct{}, 1),
		quit:      make(chan struct{}),
		stopped:   make(chan struct{}),
		blockSize: blockSize,
		write:     write,
	}
}

func (t *txPlayer) enqueue(samples []int16) (*playback, error) {
	var pb = &playback{samples: samples, done: make(chan error, 1)} //nolint:exhaustruct

	t.mu.Lock()

	if t.closed {
		t.mu.Unlock()

		return nil, errAudioClosed
	}

	t.queue = append(t.queue, pb)
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}

	return pb, nil
}

func (t *txPlayer) remove(pb *playback) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, q := range t.queue {
		if q == pb {
			t.queue = append(t.queue[:i], t.queue[i+1:]...)

			return
		}
	}
}

// Play queues samples and waits until they have all been written.
func (t *txPlayer) Play(ctx context.Context, samples []int16) error {
	var pb, err = t.enqueue(samples)
	if err != nil {
		return err
	}

	select {
	case err := <-pb.done:
		return err
	case <-ctx.Done():
		t.remove(pb)

		return ctx.Err()
	}
}

// Clear throws away everything waiting to be transmitted.
func (t *txPlayer) Clear() error {
	t.mu.Lock()
	var dropped = t.queue
	t.queue = nil
	t.mu.Unlock()

	for _, pb := range dropped {
		pb.done <- nil
	}

	return nil
}

func (t *txPlayer) SetGainDB(db int) error {
	if db < MinGainDB || db > MaxGainDB {
		return ErrGainOutOfRange
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.gain = dbToAmplitude(float64(db))

	return nil
}

// next takes up to one block of samples off the head of the queue.
// finished is the playback that block completes, if any.
func (t *txPlayer) next(block []int16) (n int, gain float64, finished *playback) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.queue) == 0 {
		return 0, t.gain, nil
	}

	var pb = t.queue[0]
	n = copy(block, pb.samples[pb.pos:])
	pb.pos += n

	if pb.pos >= len(pb.samples) {
		t.queue = t.queue[1:]
		finished = pb
	}

	return n, t.gain, finished
}

func scaleSamples(block []int16, gain float64) {
	for i, s := range block {
		var v = math.Round(float64(s) * gain)
		if math.IsNaN(v) {
			v = 0
		}

		block[i] = int16(math.Max(math.MinInt16, math.Min(math.MaxInt16, v)))
	}
}

func (t *txPlayer) run() {
	defer close(t.stopped)

	var block = make([]int16, t.blockSize)

	for {
		var n, gain, finished = t.next(block)

		if n == 0 {
			if finished != nil {
				finished.done <- nil

				continue
			}

			select {
			case <-t.wake:
				continue
			case <-t.quit:
				return
			}
		}

		// Pad a short final block with silence.
		clear(block[n:])
		scaleSamples(block[:n], gain)

		var err = t.write(block)

		if finished != nil {
			finished.done <- err
		}

		select {
		case <-t.quit:
			return
		default:
		}
	}
}

func (t *txPlayer) close() {
	t.mu.Lock()

	if t.closed {
		t.mu.Unlock()

		return
	}

	t.closed = true
	var dropped = t.queue
	t.queue = nil
	t.mu.Unlock()

	close(t.quit)
	<-t.stopped

	for _, pb := range dropped {
		pb.done <- errAudioClosed
	}
}

// findDevice returns the named device, or the default one for an empty name.
func findDevice(name string, output bool) (*portaudio.DeviceInfo, error) {
	if name == "" {
		if output {
			return portaudio.DefaultOutputDevice()
		}

		return portaudio.DefaultInputDevice()
	}

	var devices, err = portaudio.Devices()
	if err != nil {
		return nil, err
	}

	for _, d := range devices {
		if d.Name != name {
			continue
		}

		if (output && d.MaxOutputChannels > 0) || (!output && d.MaxInputChannels > 0) {
			return d, nil
		}
	}

	return nil, fmt.Errorf("no audio device named %q", name)
}

// PortAudioSink is the transmit audio device.  It implements AudioSink,
// TXGain and TXQueue.
//
// portaudio.Initialize must have been called before opening one.
type PortAudioSink struct {
	*txPlayer

	stream     *portaudio.Stream
	buf        []int16
	sampleRate int
}

func OpenPortAudioSink(device string, sampleRate int) (*PortAudioSink, error) {
	var dev, err = findDevice(device, true)
	if err != nil {
		return nil, fmt.Errorf("audio output: %w", err)
	}

	var params = portaudio.LowLatencyParameters(nil, dev)
	params.Output.Channels = 1
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = audioFramesPerBuffer

	var s = &PortAudioSink{ //nolint:exhaustruct
		buf:        make([]int16, audioFramesPerBuffer),
		sampleRate: sampleRate,
	}

	s.stream, err = portaudio.OpenStream(params, s.buf)
	if err != nil {
		return nil, fmt.Errorf("audio output %s: %w", dev.Name, err)
	}

	if err := s.stream.Start(); err != nil {
		s.stream.Close()

		return nil, fmt.Errorf("audio output %s: %w", dev.Name, err)
	}

	s.txPlayer = newTXPlayer(audioFramesPerBuffer, func(block []int16) error {
		copy(s.buf, block)

		return s.stream.Write()
	})

	go s.txPlayer.run()

	return s, nil
}

func (s *PortAudioSink) SampleRate() int {
	return s.sampleRate
}

func (s *PortAudioSink) Close() error {
	s.txPlayer.close()

	if err := s.stream.Stop(); err != nil {
		s.stream.Close()

		return err
	}

	return s.stream.Close()
}

// PortAudioSource reads receive audio and feeds it to a LevelMeter.
type PortAudioSource struct {
	stream *portaudio.Stream
	buf    []int16
	meter  *LevelMeter
}

func OpenPortAudioSource(device string, sampleRate int, meter *LevelMeter) (*PortAudioSource, error) {
	var dev, err = findDevice(device, false)
	if err != nil {
		return nil, fmt.Errorf("audio input: %w", err)
	}

	var params = portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = audioFramesPerBuffer

	var s = &PortAudioSource{ //nolint:exhaustruct
		buf:   make([]int16, audioFramesPerBuffer),
		meter: meter,
	}

	s.stream, err = portaudio.OpenStream(params, s.buf)
	if err != nil {
		return nil, fmt.Errorf("audio input %s: %w", dev.Name, err)
	}

	return s, nil
}

// Run reads until ctx is cancelled or the device fails.
func (s *PortAudioSource) Run(ctx context.Context) error {
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("audio input: %w", err)
	}

	defer s.stream.Stop() //nolint:errcheck

	for ctx.Err() == nil {
		if err := s.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
			return fmt.Errorf("audio input: %w", err)
		}

		s.meter.Process(s.buf)
	}

	return nil
}

func (s *PortAudioSource) Close() error {
	return s.stream.Close()
}

// InitAudio initialises PortAudio.  Call the returned function to release it.
func InitAudio() (func(), error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}

	return func() { _ = portaudio.Terminate() }, nil
}
