package rollup

import (
	"fmt"
	"math"
	"time"

	"iot-fleet-monitor/src/config"
	"iot-fleet-monitor/src/types"

	"go.uber.org/zap"
)

// two weeks of hourly points, 24 * 14 == 336 chart entries
const expiryWindow = 14 * 24 * 60 * 60

// ReadingSource reads the raw sensor history for a device.
type ReadingSource interface {
	PreviousReading(deviceID string, before int64) (*types.Reading, error)
	HourOfReadings(deviceID string, start, end int64) ([]types.Reading, error)
}

// SummaryWriter appends aggregates to the two-week store.
type SummaryWriter interface {
	WriteSummary(agg types.HourlyAggregate) error
}

// Aggregator closes an hour window whenever a reading arrives in a later hour
// bucket than the device's previous reading, and writes an averaged summary
// of the closed hour.
//
// The previous-point read and the summary write are not transactional:
// concurrent readings for one device can interleave between them and a
// boundary can be detected twice or not at all. Accepted; the history chart
// tolerates a missing or doubled point.
type Aggregator struct {
	readings ReadingSource
	writer   SummaryWriter
	bounds   config.Bounds
	now      func() time.Time
	log      *zap.Logger
}

func NewAggregator(readings ReadingSource, writer SummaryWriter, bounds config.Bounds, log *zap.Logger) *Aggregator {
	return &Aggregator{
		readings: readings,
		writer:   writer,
		bounds:   bounds,
		now:      time.Now,
		log:      log,
	}
}

// WithClock replaces the bucket clock. Tests pin it to a fixed instant.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Process checks whether the reading crosses an hour boundary and, if so,
// summarises the closed hour. A first-ever reading, a reading in the same
// hour as the previous one, and an all-invalid hour are all silent no-ops.
func (a *Aggregator) Process(r types.Reading) error {
	prev, err := a.readings.PreviousReading(r.DeviceID, r.Timestamp)
	if err != nil {
		return fmt.Errorf("fetch previous reading: %w", err)
	}
	if prev == nil {
		// first reading for this device, no window to close
		return nil
	}

	currentHour := r.Timestamp / 3600
	previousHour := prev.Timestamp / 3600
	if currentHour <= previousHour {
		return nil
	}

	start := previousHour * 3600
	points, err := a.readings.HourOfReadings(r.DeviceID, start, start+3600)
	if err != nil {
		return fmt.Errorf("fetch hour of readings: %w", err)
	}

	summary, ok := average(points, a.bounds)
	if !ok {
		a.log.Info("no valid data points in closed hour",
			zap.String("device_id", r.DeviceID),
			zap.Int64("hour_start", start))
		return nil
	}

	// the two-week table is keyed by the hour of the write, not by the
	// closed window's start
	bucket := a.now().Unix() / 3600 * 3600
	agg := types.HourlyAggregate{
		DeviceID:        r.DeviceID,
		Timestamp:       bucket,
		Temp:            math.Round(summary.temp*100) / 100,
		Hum:             int64(math.Round(summary.hum)),
		ExpireTimestamp: bucket + expiryWindow,
	}
	if err := a.writer.WriteSummary(agg); err != nil {
		return fmt.Errorf("write hourly summary: %w", err)
	}

	a.log.Info("wrote hourly summary",
		zap.String("device_id", agg.DeviceID),
		zap.Int64("timestamp", agg.Timestamp),
		zap.Float64("temp", agg.Temp),
		zap.Int64("hum", agg.Hum))
	return nil
}

type means struct {
	temp float64
	hum  float64
}

// average computes the arithmetic mean of temperature and humidity over the
// in-bounds subset of points. ok is false when no point is in bounds.
func average(points []types.Reading, bounds config.Bounds) (means, bool) {
	var sumTemp, sumHum float64
	validCount := 0
	for _, point := range points {
		if !bounds.Valid(point.Temp, point.Hum) {
			continue
		}
		sumTemp += point.Temp
		sumHum += point.Hum
		validCount++
	}
	if validCount == 0 {
		return means{}, false
	}
	return means{
		temp: sumTemp / float64(validCount),
		hum:  sumHum / float64(validCount),
	}, true
}
