package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/motion.swarm/internal/calibration"
)

// CalibrationRecord is a stored calibration run.
type CalibrationRecord struct {
	ID string `json:"id"`
	calibration.Result
}

// RecordCalibration stores one finished calibration run, including aborted
// ones, under a fresh ID.
func (db *DB) RecordCalibration(res calibration.Result) error {
	_, err := db.insertCalibration(res)
	return err
}

func (db *DB) insertCalibration(res calibration.Result) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO calibrations (
			calibration_id, started_at_ns, finished_at_ns, samples,
			motion, contrast, noise, bucket, threshold_scale, aborted, applied
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, res.StartedAt.UnixNano(), res.FinishedAt.UnixNano(), res.Samples,
		res.Motion, res.Contrast, res.Noise, string(res.Bucket), res.ThresholdScale,
		boolToInt(res.Aborted), boolToInt(res.Applied),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert calibration: %w", err)
	}
	return id, nil
}

// RecentCalibrations returns up to limit runs, newest first.
func (db *DB) RecentCalibrations(limit int) ([]CalibrationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT calibration_id, started_at_ns, finished_at_ns, samples,
			motion, contrast, noise, bucket, threshold_scale, aborted, applied
		FROM calibrations
		ORDER BY finished_at_ns DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query calibrations: %w", err)
	}
	defer rows.Close()

	var out []CalibrationRecord
	for rows.Next() {
		var (
			rec               CalibrationRecord
			startNs, finishNs int64
			bucket            string
			aborted, applied  int
		)
		if err := rows.Scan(&rec.ID, &startNs, &finishNs, &rec.Samples,
			&rec.Motion, &rec.Contrast, &rec.Noise, &bucket, &rec.ThresholdScale,
			&aborted, &applied); err != nil {
			return nil, fmt.Errorf("failed to scan calibration: %w", err)
		}
		rec.StartedAt = time.Unix(0, startNs).UTC()
		rec.FinishedAt = time.Unix(0, finishNs).UTC()
		rec.Bucket = calibration.Bucket(bucket)
		rec.Aborted = aborted != 0
		rec.Applied = applied != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CalibrationCounts returns how many stored runs landed in each bucket.
// Aborted runs are counted under "aborted".
func (db *DB) CalibrationCounts() (map[string]int, error) {
	rows, err := db.Query(`
		SELECT CASE WHEN aborted = 1 THEN 'aborted' ELSE bucket END AS k, COUNT(*)
		FROM calibrations
		GROUP BY k`)
	if err != nil {
		return nil, fmt.Errorf("failed to count calibrations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		counts[k] = n
	}
	return counts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
