package freedvtnc

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDevice stands in for a sound card.  Each write can be held up
// until the test lets it through.
type recordingDevice struct {
	mu      sync.Mutex
	written []int16
	started chan struct{}
	gate    chan struct{}
}

func (d *recordingDevice) write(block []int16) error {
	if d.started != nil {
		d.started <- struct{}{}
	}

	if d.gate != nil {
		<-d.gate
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.written = append(d.written, block...)

	return nil
}

func (d *recordingDevice) samples() []int16 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]int16(nil), d.written...)
}

func startPlayer(t *testing.T, dev *recordingDevice) *txPlayer {
	t.Helper()

	var p = newTXPlayer(4, dev.write)
	go p.run()

	t.Cleanup(p.close)

	return p
}

func TestTXPlayer_Play(t *testing.T) {
	var dev = new(recordingDevice)
	var p = startPlayer(t, dev)

	require.NoError(t, p.Play(context.Background(), []int16{1, 2, 3, 4, 5, 6}))

	// The short final block is padded with silence.
	assert.Equal(t, []int16{1, 2, 3, 4, 5, 6, 0, 0}, dev.samples())
}

func TestTXPlayer_Gain(t *testing.T) {
	var dev = new(recordingDevice)
	var p = startPlayer(t, dev)

	require.NoError(t, p.SetGainDB(-6))
	require.NoError(t, p.Play(context.Background(), []int16{1000, -1000, 20000, -20000}))

	assert.Equal(t, []int16{501, -501, 10024, -10024}, dev.samples())

	require.NoError(t, p.SetGainDB(20))
	require.NoError(t, p.Play(context.Background(), []int16{10000, -10000, 0, 1}))

	assert.Equal(t, []int16{32767, -32768, 0, 10}, dev.samples()[4:])
}

func TestTXPlayer_Clear(t *testing.T) {
	var dev = &recordingDevice{started: make(chan struct{}, 8), gate: make(chan struct{})} //nolint:exhaustruct
	var p = startPlayer(t, dev)

	var results = make(chan error, 2)

	go func() { results <- p.Play(context.Background(), make([]int16, 4)) }()

	// Wait until the first playback is on its way to the device.
	select {
	case <-dev.started:
	case <-time.After(time.Second):
		require.Fail(t, "nothing written")
	}

	go func() { results <- p.Play(context.Background(), make([]int16, 400)) }()

	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()

		return len(p.queue) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, p.Clear())

	// The cleared playback returns without reaching the device.
	assert.NoError(t, <-results)

	close(dev.gate)
	assert.NoError(t, <-results)

	assert.Len(t, dev.samples(), 4)
}

func TestTXPlayer_PlayCancelled(t *testing.T) {
	var dev = &recordingDevice{gate: make(chan struct{})} //nolint:exhaustruct
	var p = startPlayer(t, dev)

	var ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, p.Play(ctx, make([]int16, 4000)), context.DeadlineExceeded)

	close(dev.gate)
}

func TestTXPlayer_Closed(t *testing.T) {
	var p = newTXPlayer(4, new(recordingDevice).write)
	go p.run()

	p.close()
	p.close()

	assert.ErrorIs(t, p.Play(context.Background(), []int16{1}), errAudioClosed)
}

func TestTXPlayer_GainRange(t *testing.T) {
	var p = newTXPlayer(4, new(recordingDevice).write)

	assert.NoError(t, p.SetGainDB(MaxGainDB))
	assert.NoError(t, p.SetGainDB(MinGainDB))
	assert.ErrorIs(t, p.SetGainDB(1000), ErrGainOutOfRange)
	assert.ErrorIs(t, p.SetGainDB(-1000), ErrGainOutOfRange)

	// The rejected values leave the last good gain in place.
	assert.InDelta(t, dbToAmplitude(MinGainDB), p.gain, 1e-12)
}

func TestScaleSamples_NonFinite(t *testing.T) {
	var block = []int16{0, 1, -1, 32767}

	scaleSamples(block, math.Inf(1))

	assert.Equal(t, []int16{0, 32767, -32768, 32767}, block)
}

// Through the executor a VOLUME the device refuses is an error and the
// reported volume stays put.
func TestTXPlayer_VolumeOutOfRange(t *testing.T) {
	var p = newTXPlayer(4, new(recordingDevice).write)
	var state = NewModemState(ModeDATAC1, 0, false)
	var exec = NewExecutor(state, nil, Collaborators{Gain: p}, quietLogger()) //nolint:exhaustruct

	var resp = exec.Execute(ParseCommand("VOLUME 1000"))

	assert.Equal(t, "ERROR Volume change failed: gain must be between -100 and 40 dB", resp.String())
	assert.Equal(t, 0, state.VolumeDB())
}
