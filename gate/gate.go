// Package gate decides whether an audio chunk contains speech worth keeping,
// from raw PCM energy and zero-crossing statistics.
package gate

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// EnergyThreshold is the minimum RMS (16-bit PCM scale) for a chunk to
	// count as containing speech.
	EnergyThreshold = 150.0

	// rmsCap saturates the energy contribution to the quality score.
	rmsCap = 3000.0

	// Zero-crossing rates inside this band are typical of voiced speech.
	zcrSpeechLow  = 0.05
	zcrSpeechHigh = 0.25

	// Score for chunks whose ZCR falls outside the speech band.
	zcrOffBandScore = 0.5

	// MinQuality is the floor the pipeline applies before persisting a chunk.
	MinQuality = 0.2
)

// Report is the gate's verdict for one chunk.
type Report struct {
	HasSpeech bool
	Quality   float64 // in [0,1]
	RMS       float64
	ZCR       float64
}

// Assess evaluates a chunk of little-endian PCM16 mono samples.
// An odd-length chunk is a programmer error and panics; partial frames must
// not reach the gate.
func Assess(pcm []byte) Report {
	if len(pcm)%2 != 0 {
		panic(fmt.Sprintf("gate: odd chunk length %d", len(pcm)))
	}
	if len(pcm) == 0 {
		return Report{}
	}

	n := len(pcm) / 2
	var sumSquares float64
	crossings := 0
	prev := int16(binary.LittleEndian.Uint16(pcm))
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		sumSquares += float64(s) * float64(s)
		if i > 0 && (s < 0) != (prev < 0) {
			crossings++
		}
		prev = s
	}

	rms := math.Sqrt(sumSquares / float64(n))
	zcr := 0.0
	if n > 1 {
		zcr = float64(crossings) / float64(n-1)
	}

	energyScore := math.Min(rms/rmsCap, 1.0)
	zcrScore := zcrOffBandScore
	if zcr >= zcrSpeechLow && zcr <= zcrSpeechHigh {
		zcrScore = 1.0
	}

	return Report{
		HasSpeech: rms > EnergyThreshold,
		Quality:   (energyScore + zcrScore) / 2,
		RMS:       rms,
		ZCR:       zcr,
	}
}
