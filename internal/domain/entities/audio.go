package entities

import "encoding/binary"

// AudioClip is decoded mono PCM audio handed to a speech recognizer.
// Samples are signed 16-bit values widened to int.
type AudioClip struct {
	Path            string
	SampleRate      int
	Samples         []int
	DurationSeconds float64
}

// PCM16LE re-encodes the samples as 16-bit little-endian PCM bytes
func (c *AudioClip) PCM16LE() []byte {
	out := make([]byte, len(c.Samples)*2)
	for i, s := range c.Samples {
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s)))
	}
	return out
}

// RecognitionOutcome classifies a speech recognition call.
type RecognitionOutcome string

const (
	RecognitionText         RecognitionOutcome = "text"
	RecognitionNoMatch      RecognitionOutcome = "no_match"
	RecognitionServiceError RecognitionOutcome = "service_error"
)
