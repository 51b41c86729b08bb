package synth

// ConcertA is the fallback frequency for unrecognized pitch names
const ConcertA = 440.0

// diatonic naturals, C2 through B5
var pitches = map[string]float64{
	"C2": 65.41, "D2": 73.42, "E2": 82.41, "F2": 87.31, "G2": 98.00, "A2": 110.00, "B2": 123.47,
	"C3": 130.81, "D3": 146.83, "E3": 164.81, "F3": 174.61, "G3": 196.00, "A3": 220.00, "B3": 246.94,
	"C4": 261.63, "D4": 293.66, "E4": 329.63, "F4": 349.23, "G4": 392.00, "A4": 440.00, "B4": 493.88,
	"C5": 523.25, "D5": 587.33, "E5": 659.25, "F5": 698.46, "G5": 783.99, "A5": 880.00, "B5": 987.77,
}

// Frequency maps a pitch name such as "E4" to Hz
func Frequency(name string) float64 {
	if f, ok := pitches[name]; ok {
		return f
	}
	return ConcertA
}

// KnownPitch reports whether name is in the pitch table
func KnownPitch(name string) bool {
	_, ok := pitches[name]
	return ok
}
