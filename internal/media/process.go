package media

import "math"

// minLevel is the RMS floor below which audio counts as silent.
const minLevel = 1e-6

// RemoveDCOffset subtracts the sample mean in place.
func RemoveDCOffset(samples []float32) {
	if len(samples) == 0 {
		return
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean := float32(sum / float64(len(samples)))
	if math.Abs(float64(mean)) <= minLevel {
		return
	}
	for i := range samples {
		samples[i] -= mean
	}
}

// NormalizePeak scales samples in place so the peak amplitude is 1.0.
// Silent audio is left untouched.
func NormalizePeak(samples []float32) {
	if len(samples) == 0 {
		return
	}
	var peak float32
	for _, s := range samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}
	if peak < minLevel || math.Abs(float64(peak)-1.0) <= 0.01 {
		return
	}
	scale := 1.0 / peak
	for i := range samples {
		samples[i] *= scale
	}
}

// TrimSilence removes leading and trailing silence using windowed RMS with
// the given threshold in dB, keeping padMS of audio around detected speech.
func TrimSilence(samples []float32, thresholdDB float32, padMS int) []float32 {
	if len(samples) == 0 {
		return samples
	}

	threshold := dbToLinear(thresholdDB)
	windowSize := SampleRate / 100 // 10ms windows
	if windowSize < 1 {
		windowSize = 1
	}

	start, okStart := firstActive(samples, windowSize, threshold)
	end, okEnd := lastActive(samples, windowSize, threshold)
	if !okStart {
		start = 0
	}
	if !okEnd {
		end = len(samples)
	}
	if start >= end {
		return samples
	}

	pad := SampleRate * padMS / 1000
	if start > pad {
		start -= pad
	} else {
		start = 0
	}
	if end+pad < len(samples) {
		end += pad
	} else {
		end = len(samples)
	}

	if start == 0 && end == len(samples) {
		return samples
	}
	out := make([]float32, end-start)
	copy(out, samples[start:end])
	return out
}

func firstActive(samples []float32, windowSize int, threshold float32) (int, bool) {
	for i := 0; i+windowSize <= len(samples); i++ {
		if rms(samples[i:i+windowSize]) > threshold {
			return i, true
		}
	}
	return 0, false
}

func lastActive(samples []float32, windowSize int, threshold float32) (int, bool) {
	for i := len(samples) - windowSize; i >= 0; i-- {
		if rms(samples[i:i+windowSize]) > threshold {
			return i + windowSize, true
		}
	}
	return 0, false
}

func rms(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range samples {
		sumSq += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sumSq / float64(len(samples))))
}

func dbToLinear(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}
