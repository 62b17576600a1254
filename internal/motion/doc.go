// Package motion turns a live RGBA video feed into a ranked list of motion
// hotspots.
//
// Responsibilities: adaptive baseline learning (BaselineTracker), edge and
// texture differencing against that baseline (Detector), coarse grid
// aggregation into hotspots (Aggregator), and optional flow arrows for the
// debug view (VectorTracker).
//
// Everything in this package runs on the caller's goroutine, once per
// animation tick, and holds no locks. Missing inputs and out-of-range
// indices are skipped silently; no operation returns an error.
package motion
