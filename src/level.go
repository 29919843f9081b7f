package freedvtnc

/*------------------------------------------------------------------
 *
 * Purpose:	Measure the receive audio level and decide whether the
 *		channel is busy.
 *
 * Description:	Each block of samples gives one RMS level in dB relative
 *		to full scale.  The displayed level is smoothed a little so
 *		LEVELS doesn't jump about with every block.
 *
 *		The channel goes BUSY as soon as a block is over the
 *		threshold and only goes CLEAR again after it has been
 *		quiet for the hold time, so gaps between frames of one
 *		transmission don't look like a free channel.
 *
 *------------------------------------------------------------------*/

import (
	"math"
	"sync"
	"time"
)

const (
	// silenceDB is reported for digital silence rather than -Inf.
	silenceDB = -100.0

	DefaultBusyThresholdDB = -40.0
	DefaultBusyHold        = 500 * time.Millisecond

	levelSmoothing = 0.3
)

// RMSLevelDB is the RMS level of samples in dBFS, full scale sine being about -3.
func RMSLevelDB(samples []int16) float64 {
	if len(samples) == 0 {
		return silenceDB
	}

	var sum float64
	for _, s := range samples {
		var v = float64(s) / math.MaxInt16
		sum += v * v
	}

	var rms = math.Sqrt(sum / float64(len(samples)))
	if rms == 0 {
		return silenceDB
	}

	return math.Max(20*math.Log10(rms), silenceDB)
}

// LevelMeter publishes receive level and channel state into a ModemState.
type LevelMeter struct {
	mu        sync.Mutex
	state     *ModemState
	threshold float64
	hold      time.Duration
	level     float64
	primed    bool
	lastLoud  time.Time
	busy      bool
	now       func() time.Time
}

func NewLevelMeter(state *ModemState, thresholdDB float64, hold time.Duration) *LevelMeter {
	return &LevelMeter{ //nolint:exhaustruct
		state:     state,
		threshold: thresholdDB,
		hold:      hold,
		level:     silenceDB,
		now:       time.Now,
	}
}

// Process takes one block of receive audio.
func (m *LevelMeter) Process(samples []int16) {
	var db = RMSLevelDB(samples)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.primed {
		m.level += levelSmoothing * (db - m.level)
	} else {
		m.level = db
		m.primed = true
	}

	var now = m.now()

	if db >= m.threshold {
		m.lastLoud = now
		m.busy = true
	} else if m.busy && now.Sub(m.lastLoud) >= m.hold {
		m.busy = false
	}

	m.state.SetTelemetry(m.level, m.busy)
}
