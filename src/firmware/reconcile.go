package firmware

import (
	"encoding/json"
	"fmt"
	"time"

	"iot-fleet-monitor/src/types"

	"go.uber.org/zap"
)

// lifetime of the presigned firmware download credential
const otaURLTTL = 5 * time.Minute

// Artifacts exposes the firmware distribution bucket: the current target
// version and a time-limited download credential for the binary.
type Artifacts interface {
	TargetVersion() (string, error)
	SignedURL(ttl time.Duration) (string, error)
}

// Commander publishes one-way instructions to a device's command channel.
type Commander interface {
	Publish(deviceID string, payload []byte) error
}

// VersionRecorder is the slice of the mapping table used to remember the
// version a device last reported.
type VersionRecorder interface {
	GetByDeviceID(deviceID string) (*types.MappingEntry, error)
	SetReportedVersion(userID, deviceID, version string) error
}

// Reconciler compares a reported firmware version against the distribution
// target and instructs the device accordingly: an OTA download when it is
// behind, a clock sync when it is current.
type Reconciler struct {
	artifacts Artifacts
	commands  Commander
	mappings  VersionRecorder
	now       func() time.Time
	log       *zap.Logger
}

func NewReconciler(artifacts Artifacts, commands Commander, mappings VersionRecorder, log *zap.Logger) *Reconciler {
	return &Reconciler{
		artifacts: artifacts,
		commands:  commands,
		mappings:  mappings,
		now:       time.Now,
		log:       log,
	}
}

// WithClock replaces the time-sync clock. Tests pin it to a fixed instant.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// Process issues exactly one instruction for the report. Version comparison
// is exact string inequality; there is no semantic ordering of versions.
func (r *Reconciler) Process(deviceID, reported string) error {
	target, err := r.artifacts.TargetVersion()
	if err != nil {
		return fmt.Errorf("fetch target version: %w", err)
	}

	if reported != target {
		return r.instructOTA(deviceID, reported, target)
	}
	return r.syncTime(deviceID, reported)
}

func (r *Reconciler) instructOTA(deviceID, reported, target string) error {
	url, err := r.artifacts.SignedURL(otaURLTTL)
	if err != nil {
		return fmt.Errorf("sign firmware url: %w", err)
	}

	payload, err := json.Marshal(map[string]string{"ota": url})
	if err != nil {
		return fmt.Errorf("marshal ota instruction: %w", err)
	}
	// the device firmware reads line-delimited commands
	payload = append(payload, '\n')

	if err := r.commands.Publish(deviceID, payload); err != nil {
		return fmt.Errorf("publish ota instruction: %w", err)
	}
	r.log.Info("instructed OTA update",
		zap.String("device_id", deviceID),
		zap.String("reported_version", reported),
		zap.String("target_version", target))
	return nil
}

func (r *Reconciler) syncTime(deviceID, reported string) error {
	payload, err := json.Marshal(map[string]int64{"time": r.now().Unix()})
	if err != nil {
		return fmt.Errorf("marshal time instruction: %w", err)
	}
	if err := r.commands.Publish(deviceID, payload); err != nil {
		return fmt.Errorf("publish time instruction: %w", err)
	}

	mapping, err := r.mappings.GetByDeviceID(deviceID)
	if err != nil {
		return fmt.Errorf("look up device mapping: %w", err)
	}
	if mapping == nil {
		r.log.Info("no user has onboarded this device, version not recorded",
			zap.String("device_id", deviceID))
		return nil
	}
	if err := r.mappings.SetReportedVersion(mapping.UserID, mapping.DeviceID, reported); err != nil {
		return fmt.Errorf("record reported version: %w", err)
	}
	return nil
}
