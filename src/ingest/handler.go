package ingest

import (
	"strings"

	"iot-fleet-monitor/src/types"

	"go.uber.org/zap"
)

// ReadingProcessor consumes one telemetry reading. Both the error tracker and
// the rollup aggregator satisfy it.
type ReadingProcessor interface {
	Process(r types.Reading) error
}

// VersionProcessor consumes one firmware version report.
type VersionProcessor interface {
	Process(deviceID, reported string) error
}

// Handler is the ingest boundary: it resolves the device from the topic,
// validates the payload shape and fans readings out to the processors.
type Handler struct {
	tracker    ReadingProcessor
	aggregator ReadingProcessor
	reconciler VersionProcessor
	log        *zap.Logger
}

func NewHandler(tracker, aggregator ReadingProcessor, reconciler VersionProcessor, log *zap.Logger) *Handler {
	return &Handler{tracker: tracker, aggregator: aggregator, reconciler: reconciler, log: log}
}

// DeviceIDFromTopic extracts the device identifier, the trailing segment of
// the hierarchical topic (iot/data/1.0.0/3FDA4A6722 -> 3FDA4A6722).
func DeviceIDFromTopic(topic string) string {
	segments := strings.Split(topic, "/")
	return segments[len(segments)-1]
}

// HandleReading processes one data-topic message. A payload missing temp or
// hum is skipped without touching any state.
func (h *Handler) HandleReading(msg types.ReadingMessage) error {
	deviceID := DeviceIDFromTopic(msg.Topic)
	if msg.Temp == nil || msg.Hum == nil {
		h.log.Warn("reading missing sensor fields, skipping",
			zap.String("device_id", deviceID),
			zap.String("topic", msg.Topic))
		return nil
	}

	reading := types.Reading{
		DeviceID:  deviceID,
		Timestamp: msg.Timestamp,
		Temp:      *msg.Temp,
		Hum:       *msg.Hum,
	}

	if err := h.aggregator.Process(reading); err != nil {
		return err
	}
	return h.tracker.Process(reading)
}

// HandleVersionReport processes one version-topic message. A payload missing
// the version field is skipped.
func (h *Handler) HandleVersionReport(msg types.VersionMessage) error {
	deviceID := DeviceIDFromTopic(msg.Topic)
	if msg.Version == nil {
		h.log.Warn("version report missing version field, skipping",
			zap.String("device_id", deviceID))
		return nil
	}
	return h.reconciler.Process(deviceID, *msg.Version)
}
