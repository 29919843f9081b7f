package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	freedvtnc "github.com/doismellburning/freedvtnc/src"
	"github.com/spf13/pflag"
)

/*-------------------------------------------------------------------
 *
 * Name:        main
 *
 * Purpose:     Quick test program for generating tones
 *
 * Description:	Writes the PTT test tone as raw 16 bit little endian
 *		mono samples, e.g. for
 *
 *			gen_tone | aplay -f S16_LE -r 8000
 *
 *--------------------------------------------------------------------*/

func main() {
	var freq = pflag.Float64P("frequency", "f", freedvtnc.TestToneFreqHz, "Tone frequency in Hz.")
	var rate = pflag.IntP("rate", "r", 8000, "Sample rate.")
	var level = pflag.Float64P("level", "l", freedvtnc.TestToneLevelDB, "Peak level in dBFS.")
	var duration = pflag.DurationP("duration", "d", freedvtnc.PTTTestDuration, "Length of the tone.")
	var outFile = pflag.StringP("output", "o", "-", "Output file, - for standard output.")

	pflag.Parse()

	var samples = freedvtnc.GenerateTone(*freq, *rate, *duration, *level)

	var out = os.Stdout

	if *outFile != "-" {
		var f, err = os.Create(*outFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()

		out = f
	}

	if err := binary.Write(out, binary.LittleEndian, samples); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1) //nolint:gocritic
	}

	fmt.Fprintf(os.Stderr, "%d samples, %.1f dBFS RMS, %s\n", len(samples), freedvtnc.RMSLevelDB(samples), duration.Round(time.Millisecond))
}
