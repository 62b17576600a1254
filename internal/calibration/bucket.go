package calibration

// Bucket is an environment class chosen from averaged samples.
type Bucket string

const (
	BucketQuiet       Bucket = "quiet"
	BucketActive      Bucket = "active"
	BucketLowContrast Bucket = "low_contrast"
	BucketNormal      Bucket = "normal"
)

// Classification cut-offs.
const (
	QuietMotion       = 0.02
	QuietNoise        = 2.0
	ActiveMotion      = 0.15
	ActiveNoise       = 6.0
	LowContrastCutoff = 15.0
)

// Classify buckets averaged metrics. Earlier rules win.
func Classify(motion, contrast, noise float64) Bucket {
	switch {
	case motion < QuietMotion && noise < QuietNoise:
		return BucketQuiet
	case motion > ActiveMotion || noise > ActiveNoise:
		return BucketActive
	case contrast < LowContrastCutoff:
		return BucketLowContrast
	default:
		return BucketNormal
	}
}

// ThresholdScale is the detector multiplier for the bucket.
func (b Bucket) ThresholdScale() float64 {
	switch b {
	case BucketQuiet:
		return 1.2
	case BucketActive:
		return 3.0
	case BucketLowContrast:
		return 1.6
	default:
		return 2.0
	}
}
