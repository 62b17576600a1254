package calibration

import (
	"math"

	"github.com/banshee-data/motion.swarm/internal/motion"
)

// Sample is one environment measurement between consecutive frames.
type Sample struct {
	Motion   float64 `json:"motion"`   // share of sampled pixels with a large change, 0..1
	Contrast float64 `json:"contrast"` // mean 3x3 gray standard deviation
	Noise    float64 `json:"noise"`    // mean gray change over pixels that changed only slightly
}

// Measure samples cur against prev on a step-pixel stride. Changes at or
// above noiseCeiling count as motion; smaller non-zero changes as noise.
func Measure(cur, prev *motion.Frame, step int, noiseCeiling float64) Sample {
	if !cur.Valid() || !cur.SameSize(prev) || step <= 0 {
		return Sample{}
	}

	var (
		n, moving, noisy     int
		contrast, noiseTotal float64
	)
	w := cur.Width
	for y := step; y < cur.Height-step; y += step {
		for x := step; x < w-step; x += step {
			i := (x + y*w) * 4
			d := math.Abs(gray(cur.Pix, i) - gray(prev.Pix, i))
			switch {
			case d >= noiseCeiling:
				moving++
			case d > 0:
				noisy++
				noiseTotal += d
			}
			contrast += motion.LocalContrast(cur, x, y)
			n++
		}
	}
	if n == 0 {
		return Sample{}
	}

	s := Sample{
		Motion:   float64(moving) / float64(n),
		Contrast: contrast / float64(n),
	}
	if noisy > 0 {
		s.Noise = noiseTotal / float64(noisy)
	}
	return s
}

func gray(pix []uint8, i int) float64 {
	return (float64(pix[i]) + float64(pix[i+1]) + float64(pix[i+2])) / 3
}
