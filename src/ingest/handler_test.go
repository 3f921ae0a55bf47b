package ingest_test

import (
	"errors"
	"testing"

	"iot-fleet-monitor/src/ingest"
	"iot-fleet-monitor/src/types"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReadingProcessor struct {
	readings []types.Reading
	err      error
}

func (f *fakeReadingProcessor) Process(r types.Reading) error {
	if f.err != nil {
		return f.err
	}
	f.readings = append(f.readings, r)
	return nil
}

type versionCall struct {
	deviceID string
	version  string
}

type fakeVersionProcessor struct {
	calls []versionCall
}

func (f *fakeVersionProcessor) Process(deviceID, reported string) error {
	f.calls = append(f.calls, versionCall{deviceID: deviceID, version: reported})
	return nil
}

func float(v float64) *float64 { return &v }

func TestDeviceIDFromTopic(t *testing.T) {
	require.Equal(t, "3FDA4A6722", ingest.DeviceIDFromTopic("iot/data/1.0.0/3FDA4A6722"))
	require.Equal(t, "3FDA4A6722", ingest.DeviceIDFromTopic("iot/version/3FDA4A6722"))
	require.Equal(t, "3FDA4A6722", ingest.DeviceIDFromTopic("iot/version/1.0.0/3FDA4A6722"))
}

func TestHandleReading_FansOutToBothProcessors(t *testing.T) {
	tracker := &fakeReadingProcessor{}
	aggregator := &fakeReadingProcessor{}
	h := ingest.NewHandler(tracker, aggregator, &fakeVersionProcessor{}, zap.NewNop())

	err := h.HandleReading(types.ReadingMessage{
		Topic:     "iot/data/1.0.0/3FDA4A6722",
		Temp:      float(25.4),
		Hum:       float(60),
		Timestamp: 1656050903,
	})
	require.NoError(t, err)

	want := types.Reading{DeviceID: "3FDA4A6722", Timestamp: 1656050903, Temp: 25.4, Hum: 60}
	require.Equal(t, []types.Reading{want}, tracker.readings)
	require.Equal(t, []types.Reading{want}, aggregator.readings)
}

func TestHandleReading_MissingFieldsSkipSilently(t *testing.T) {
	tracker := &fakeReadingProcessor{}
	aggregator := &fakeReadingProcessor{}
	h := ingest.NewHandler(tracker, aggregator, &fakeVersionProcessor{}, zap.NewNop())

	require.NoError(t, h.HandleReading(types.ReadingMessage{
		Topic: "iot/data/1.0.0/3FDA4A6722",
		Hum:   float(60),
	}))
	require.NoError(t, h.HandleReading(types.ReadingMessage{
		Topic: "iot/data/1.0.0/3FDA4A6722",
		Temp:  float(25.4),
	}))

	require.Empty(t, tracker.readings)
	require.Empty(t, aggregator.readings)
}

func TestHandleReading_ProcessorErrorPropagates(t *testing.T) {
	aggregator := &fakeReadingProcessor{err: errors.New("dynamo unavailable")}
	h := ingest.NewHandler(&fakeReadingProcessor{}, aggregator, &fakeVersionProcessor{}, zap.NewNop())

	err := h.HandleReading(types.ReadingMessage{
		Topic: "iot/data/1.0.0/3FDA4A6722",
		Temp:  float(25.4),
		Hum:   float(60),
	})
	require.Error(t, err)
}

func TestHandleVersionReport(t *testing.T) {
	reconciler := &fakeVersionProcessor{}
	h := ingest.NewHandler(&fakeReadingProcessor{}, &fakeReadingProcessor{}, reconciler, zap.NewNop())

	version := "1.0.0"
	require.NoError(t, h.HandleVersionReport(types.VersionMessage{
		Topic:   "iot/version/3FDA4A6722",
		Version: &version,
	}))
	require.Equal(t, []versionCall{{"3FDA4A6722", "1.0.0"}}, reconciler.calls)

	// missing version field is a silent skip
	require.NoError(t, h.HandleVersionReport(types.VersionMessage{
		Topic: "iot/version/3FDA4A6722",
	}))
	require.Len(t, reconciler.calls, 1)
}
