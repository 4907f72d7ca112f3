package analysis

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
)

// Ambient-noise calibration constants of the classic energy-threshold
// speech recognizer.
const (
	calibrationChunk       = 1024
	initialEnergyThreshold = 300.0
	dynamicEnergyDamping   = 0.15
	dynamicEnergyRatio     = 1.5
)

// Calibration is the outcome of ambient-noise calibration over a clip
type Calibration struct {
	EnergyThreshold float64
	NoiseFloor      float64 // mean RMS energy across buffers
	Buffers         int
}

// Calibrate adapts the energy threshold over every full 1024-sample buffer
// of samples. It does not modify the audio.
func Calibrate(samples []int, sampleRate int) Calibration {
	cal := Calibration{EnergyThreshold: initialEnergyThreshold}
	if sampleRate <= 0 {
		return cal
	}

	secondsPerBuffer := float64(calibrationChunk) / float64(sampleRate)
	damping := math.Pow(dynamicEnergyDamping, secondsPerBuffer)

	var energySum float64
	for start := 0; start+calibrationChunk <= len(samples); start += calibrationChunk {
		energy := rms(samples[start : start+calibrationChunk])
		target := energy * dynamicEnergyRatio
		cal.EnergyThreshold = cal.EnergyThreshold*damping + target*(1-damping)
		energySum += energy
		cal.Buffers++
	}

	if cal.Buffers > 0 {
		cal.NoiseFloor = energySum / float64(cal.Buffers)
	}
	return cal
}

func rms(samples []int) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// loadClip decodes a PCM WAV file into a mono clip. Multi-channel audio is
// averaged down to one channel.
func loadClip(path string, durationSeconds float64) (*entities.AudioClip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}

	channels := int(dec.NumChans)
	samples := buf.Data
	if channels > 1 {
		mono := make([]int, len(samples)/channels)
		for i := range mono {
			sum := 0
			for ch := 0; ch < channels; ch++ {
				sum += samples[i*channels+ch]
			}
			mono[i] = sum / channels
		}
		samples = mono
	}

	return &entities.AudioClip{
		Path:            path,
		SampleRate:      int(dec.SampleRate),
		Samples:         samples,
		DurationSeconds: durationSeconds,
	}, nil
}
