package notify

import (
	"fmt"

	"iot-fleet-monitor/src/types"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// UserLookup resolves a device to its onboarded user, first match wins.
type UserLookup interface {
	GetByDeviceID(deviceID string) (*types.MappingEntry, error)
}

// Notifier enqueues a notification request for a user.
type Notifier interface {
	SendNotification(cognitoID string) error
}

// Trigger watches the mapping table's stream and fires a notification request
// on each edge into a new error state. INSERT records are onboarding, not
// errors; a MODIFY notifies only when the new message is non-empty and
// differs from the old one, so a steady error state never re-notifies.
type Trigger struct {
	mappings UserLookup
	notifier Notifier
	log      *zap.Logger
}

func NewTrigger(mappings UserLookup, notifier Notifier, log *zap.Logger) *Trigger {
	return &Trigger{mappings: mappings, notifier: notifier, log: log}
}

// HandleEvent processes a batch of stream records. The first collaborator
// failure aborts the batch so the stream position is retried.
func (t *Trigger) HandleEvent(event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := t.handleRecord(record); err != nil {
			return err
		}
	}
	return nil
}

func (t *Trigger) handleRecord(record events.DynamoDBEventRecord) error {
	if record.EventName != "MODIFY" {
		return nil
	}

	newMsg := stringAttr(record.Change.NewImage, "error_msg")
	oldMsg := stringAttr(record.Change.OldImage, "error_msg")
	if newMsg == "" || newMsg == oldMsg {
		return nil
	}

	deviceID := stringAttr(record.Change.Keys, "deviceID")
	t.log.Info("sensor error state changed",
		zap.String("device_id", deviceID),
		zap.String("error_msg", newMsg))

	// the image usually carries the user already; fall back to the device
	// index when it does not
	userID := stringAttr(record.Change.NewImage, "userID")
	if userID == "" {
		mapping, err := t.mappings.GetByDeviceID(deviceID)
		if err != nil {
			return fmt.Errorf("resolve device to user: %w", err)
		}
		if mapping == nil {
			t.log.Info("no user has onboarded this device", zap.String("device_id", deviceID))
			return nil
		}
		userID = mapping.UserID
	}

	if err := t.notifier.SendNotification(userID); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

func stringAttr(image map[string]events.DynamoDBAttributeValue, name string) string {
	attr, ok := image[name]
	if !ok || attr.DataType() != events.DataTypeString {
		return ""
	}
	return attr.String()
}
