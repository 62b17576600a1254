//go:build !gocv

package camera

// OpenWebcam reports that this build has no OpenCV support.
func OpenWebcam(device, width, height int) (Source, error) {
	return nil, ErrNoWebcam
}
