package notify_test

import (
	"errors"
	"testing"

	"iot-fleet-monitor/src/errorcheck"
	"iot-fleet-monitor/src/notify"
	"iot-fleet-monitor/src/types"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserLookup struct {
	entry   *types.MappingEntry
	lookups int
	err     error
}

func (f *fakeUserLookup) GetByDeviceID(deviceID string) (*types.MappingEntry, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	return f.entry, nil
}

type fakeNotifier struct {
	sent    []string
	sendErr error
}

func (f *fakeNotifier) SendNotification(cognitoID string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, cognitoID)
	return nil
}

func modifyRecord(oldMsg, newMsg string, withUserID bool) events.DynamoDBEventRecord {
	newImage := map[string]events.DynamoDBAttributeValue{
		"error_msg": events.NewStringAttribute(newMsg),
		"deviceID":  events.NewStringAttribute("3FDA4A6722"),
	}
	if withUserID {
		newImage["userID"] = events.NewStringAttribute("user-1")
	}
	return events.DynamoDBEventRecord{
		EventName: "MODIFY",
		Change: events.DynamoDBStreamRecord{
			Keys: map[string]events.DynamoDBAttributeValue{
				"userID":   events.NewStringAttribute("user-1"),
				"deviceID": events.NewStringAttribute("3FDA4A6722"),
			},
			OldImage: map[string]events.DynamoDBAttributeValue{
				"error_msg": events.NewStringAttribute(oldMsg),
				"deviceID":  events.NewStringAttribute("3FDA4A6722"),
			},
			NewImage: newImage,
		},
	}
}

func eventOf(records ...events.DynamoDBEventRecord) events.DynamoDBEvent {
	return events.DynamoDBEvent{Records: records}
}

func TestHandleEvent_NewErrorNotifiesOnce(t *testing.T) {
	notifier := &fakeNotifier{}
	trigger := notify.NewTrigger(&fakeUserLookup{}, notifier, zap.NewNop())

	err := trigger.HandleEvent(eventOf(modifyRecord("", errorcheck.SensorErrorMessage, true)))
	require.NoError(t, err)
	require.Equal(t, []string{"user-1"}, notifier.sent)
}

func TestHandleEvent_ChangedErrorMessageNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	trigger := notify.NewTrigger(&fakeUserLookup{}, notifier, zap.NewNop())

	err := trigger.HandleEvent(eventOf(modifyRecord("sensor fault A", "sensor fault B", true)))
	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
}

func TestHandleEvent_SameMessageNeverNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	trigger := notify.NewTrigger(&fakeUserLookup{}, notifier, zap.NewNop())

	err := trigger.HandleEvent(eventOf(
		modifyRecord("", "", true),
		modifyRecord("sensor fault", "sensor fault", true),
	))
	require.NoError(t, err)
	require.Empty(t, notifier.sent)
}

func TestHandleEvent_ErrorClearedNeverNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	trigger := notify.NewTrigger(&fakeUserLookup{}, notifier, zap.NewNop())

	err := trigger.HandleEvent(eventOf(modifyRecord("sensor fault", "", true)))
	require.NoError(t, err)
	require.Empty(t, notifier.sent)
}

func TestHandleEvent_InsertIsOnboardingNotAnError(t *testing.T) {
	record := modifyRecord("", errorcheck.SensorErrorMessage, true)
	record.EventName = "INSERT"
	notifier := &fakeNotifier{}
	trigger := notify.NewTrigger(&fakeUserLookup{}, notifier, zap.NewNop())

	err := trigger.HandleEvent(eventOf(record))
	require.NoError(t, err)
	require.Empty(t, notifier.sent)
}

func TestHandleEvent_UserIDTakenFromImageWithoutLookup(t *testing.T) {
	lookup := &fakeUserLookup{}
	trigger := notify.NewTrigger(lookup, &fakeNotifier{}, zap.NewNop())

	err := trigger.HandleEvent(eventOf(modifyRecord("", "sensor fault", true)))
	require.NoError(t, err)
	require.Zero(t, lookup.lookups)
}

func TestHandleEvent_FallsBackToDeviceIndexLookup(t *testing.T) {
	lookup := &fakeUserLookup{entry: &types.MappingEntry{UserID: "user-2", DeviceID: "3FDA4A6722"}}
	notifier := &fakeNotifier{}
	trigger := notify.NewTrigger(lookup, notifier, zap.NewNop())

	err := trigger.HandleEvent(eventOf(modifyRecord("", "sensor fault", false)))
	require.NoError(t, err)
	require.Equal(t, 1, lookup.lookups)
	require.Equal(t, []string{"user-2"}, notifier.sent)
}

func TestHandleEvent_UnmappedDeviceIsSkipped(t *testing.T) {
	lookup := &fakeUserLookup{entry: nil}
	notifier := &fakeNotifier{}
	trigger := notify.NewTrigger(lookup, notifier, zap.NewNop())

	err := trigger.HandleEvent(eventOf(modifyRecord("", "sensor fault", false)))
	require.NoError(t, err)
	require.Empty(t, notifier.sent)
}

func TestHandleEvent_CollaboratorFailuresPropagate(t *testing.T) {
	lookup := &fakeUserLookup{err: errors.New("dynamo unavailable")}
	trigger := notify.NewTrigger(lookup, &fakeNotifier{}, zap.NewNop())
	require.Error(t, trigger.HandleEvent(eventOf(modifyRecord("", "sensor fault", false))))

	notifier := &fakeNotifier{sendErr: errors.New("sqs unavailable")}
	trigger = notify.NewTrigger(&fakeUserLookup{}, notifier, zap.NewNop())
	require.Error(t, trigger.HandleEvent(eventOf(modifyRecord("", "sensor fault", true))))
}
