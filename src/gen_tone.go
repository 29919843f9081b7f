package freedvtnc

/*------------------------------------------------------------------
 *
 * Purpose:	Generate the audio tone sent during a PTT test.
 *
 * Description:	A plain sine wave, 16 bit signed mono samples.  The level
 *		is given in dB relative to full scale, so -6 is a peak
 *		amplitude of about half the sample range.
 *
 *------------------------------------------------------------------*/

import (
	"math"
	"time"
)

const (
	TestToneFreqHz  = 440.0
	TestToneLevelDB = -6.0
)

// dbToAmplitude converts dBFS to a linear factor, 0 dB being 1.0.
func dbToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// GenerateTone returns duration worth of a sine wave at freqHz.
func GenerateTone(freqHz float64, sampleRate int, duration time.Duration, levelDB float64) []int16 {
	if sampleRate <= 0 || duration <= 0 {
		return nil
	}

	var n = int(int64(sampleRate) * duration.Milliseconds() / 1000)
	var amp = math.Min(dbToAmplitude(levelDB), 1.0) * math.MaxInt16
	var step = 2 * math.Pi * freqHz / float64(sampleRate)

	var samples = make([]int16, n)
	for i := range samples {
		samples[i] = int16(math.Round(amp * math.Sin(step*float64(i))))
	}

	return samples
}
