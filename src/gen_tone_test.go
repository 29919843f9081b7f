package freedvtnc

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestGenerateTone_Length(t *testing.T) {
	assert.Len(t, GenerateTone(440, 8000, 2*time.Second, -6), 16000)
	assert.Len(t, GenerateTone(440, 48000, 10*time.Millisecond, -6), 480)
	assert.Empty(t, GenerateTone(440, 0, time.Second, -6))
	assert.Empty(t, GenerateTone(440, 8000, 0, -6))
}

func TestGenerateTone_Level(t *testing.T) {
	var samples = GenerateTone(TestToneFreqHz, 8000, time.Second, TestToneLevelDB)

	var peak int16
	for _, s := range samples {
		peak = max(peak, s)
	}

	assert.InDelta(t, 0.501*math.MaxInt16, float64(peak), 100)

	// RMS of a sine is 3 dB below its peak.
	assert.InDelta(t, -9.0, RMSLevelDB(samples), 0.2)
}

func TestGenerateTone_NeverClips(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var freq = rapid.Float64Range(10, 3000).Draw(t, "freq")
		var level = rapid.Float64Range(-60, 20).Draw(t, "level")

		var samples = GenerateTone(freq, 8000, 50*time.Millisecond, level)

		assert.Len(t, samples, 400)

		for _, s := range samples {
			assert.GreaterOrEqual(t, s, int16(-math.MaxInt16))
		}
	})
}
