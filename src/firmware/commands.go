package firmware

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/iotdataplane"
)

const commandTopicPrefix = "iot/commands/"

// CommandChannel publishes instructions to a device's MQTT command topic via
// the IoT data plane. QoS 1, fire and forget.
type CommandChannel struct {
	client *iotdataplane.IoTDataPlane
}

func NewCommandChannel(client *iotdataplane.IoTDataPlane) *CommandChannel {
	return &CommandChannel{client: client}
}

func (c *CommandChannel) Publish(deviceID string, payload []byte) error {
	_, err := c.client.Publish(&iotdataplane.PublishInput{
		Topic:   aws.String(commandTopicPrefix + deviceID),
		Qos:     aws.Int64(1),
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("publish to %s%s: %w", commandTopicPrefix, deviceID, err)
	}
	return nil
}
