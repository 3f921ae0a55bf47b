package errorcheck

import (
	"fmt"

	"iot-fleet-monitor/src/config"
	"iot-fleet-monitor/src/types"

	"go.uber.org/zap"
)

// SensorErrorMessage is the fixed message written to a mapping entry while a
// device reports out-of-range values. The notification path keys off changes
// to it, so it must stay stable.
const SensorErrorMessage = "An error occurred with a sensor"

// MappingStore is the slice of the mapping table the tracker needs.
type MappingStore interface {
	GetByDeviceID(deviceID string) (*types.MappingEntry, error)
	SetErrorMessage(userID, deviceID, msg string) error
}

// Tracker evaluates readings against the validity bounds and keeps the
// mapping entry's error state in step with the latest reading.
type Tracker struct {
	mappings MappingStore
	bounds   config.Bounds
	log      *zap.Logger
}

func NewTracker(mappings MappingStore, bounds config.Bounds, log *zap.Logger) *Tracker {
	return &Tracker{mappings: mappings, bounds: bounds, log: log}
}

// Process applies the error check for one reading. At most one store write
// happens per call: every invalid reading re-writes the error message, a
// valid reading clears it only when one is set.
func (t *Tracker) Process(r types.Reading) error {
	valid := t.bounds.Valid(r.Temp, r.Hum)

	mapping, err := t.mappings.GetByDeviceID(r.DeviceID)
	if err != nil {
		return fmt.Errorf("look up device mapping: %w", err)
	}

	if !valid {
		t.log.Info("sensor values outside limits",
			zap.String("device_id", r.DeviceID),
			zap.Float64("temp", r.Temp),
			zap.Float64("hum", r.Hum))
		if mapping == nil {
			// device error with no onboarded user: observe and move on
			t.log.Info("no user has onboarded this device", zap.String("device_id", r.DeviceID))
			return nil
		}
		if err := t.mappings.SetErrorMessage(mapping.UserID, mapping.DeviceID, SensorErrorMessage); err != nil {
			return fmt.Errorf("set error message: %w", err)
		}
		return nil
	}

	if mapping != nil && mapping.ErrorMsg != "" {
		if err := t.mappings.SetErrorMessage(mapping.UserID, mapping.DeviceID, ""); err != nil {
			return fmt.Errorf("clear error message: %w", err)
		}
	}
	return nil
}
