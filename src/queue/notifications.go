package queue

import (
	"encoding/json"
	"fmt"

	"iot-fleet-monitor/src/types"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
)

// NotificationQueue is the SQS emailer queue. The trigger sends to it, the
// dispatcher deletes from it after a successful send.
type NotificationQueue struct {
	sqs      *sqs.SQS
	queueURL string
}

func NewNotificationQueue(client *sqs.SQS, queueURL string) *NotificationQueue {
	return &NotificationQueue{sqs: client, queueURL: queueURL}
}

// SendNotification enqueues one notification request for a user.
func (q *NotificationQueue) SendNotification(cognitoID string) error {
	body, err := json.Marshal(types.NotificationRequest{CognitoID: cognitoID})
	if err != nil {
		return fmt.Errorf("marshal notification request: %w", err)
	}
	_, err = q.sqs.SendMessage(&sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("send notification request: %w", err)
	}
	return nil
}

// DeleteMessage acknowledges a processed request so it is not redelivered.
func (q *NotificationQueue) DeleteMessage(receiptHandle string) error {
	_, err := q.sqs.DeleteMessage(&sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("delete notification request: %w", err)
	}
	return nil
}
