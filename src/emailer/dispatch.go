package emailer

import (
	"encoding/json"
	"fmt"
	"strings"

	"iot-fleet-monitor/src/types"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// nameToken is replaced with the customer's given name in the template body.
const nameToken = "###"

// Contact is a customer's deliverable identity from the directory.
type Contact struct {
	GivenName    string
	EmailAddress string
}

// Directory resolves a user identifier to contact details. Unknown users come
// back as an empty Contact, not an error.
type Directory interface {
	ContactByID(cognitoID string) (Contact, error)
}

// Mailer sends one rendered message.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// Acknowledger deletes a processed queue message.
type Acknowledger interface {
	DeleteMessage(receiptHandle string) error
}

// Dispatcher consumes notification requests: resolve contact, render, send,
// then acknowledge. A send failure leaves the request on the queue for
// redelivery; an acknowledge failure after a successful send is logged and
// swallowed, accepting the duplicate-email risk.
type Dispatcher struct {
	directory Directory
	mailer    Mailer
	queue     Acknowledger
	log       *zap.Logger
}

func NewDispatcher(directory Directory, mailer Mailer, queue Acknowledger, log *zap.Logger) *Dispatcher {
	return &Dispatcher{directory: directory, mailer: mailer, queue: queue, log: log}
}

// HandleEvent processes a batch of queue records.
func (d *Dispatcher) HandleEvent(event events.SQSEvent) error {
	for _, record := range event.Records {
		if err := d.handleRecord(record); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) handleRecord(record events.SQSMessage) error {
	var request types.NotificationRequest
	if err := json.Unmarshal([]byte(strings.TrimSpace(record.Body)), &request); err != nil || request.CognitoID == "" {
		// malformed request: retrying cannot fix it, drop it
		d.log.Warn("malformed notification request", zap.String("body", record.Body))
		d.acknowledge(record)
		return nil
	}

	contact, err := d.directory.ContactByID(request.CognitoID)
	if err != nil {
		return fmt.Errorf("resolve contact details: %w", err)
	}
	if contact.GivenName == "" || contact.EmailAddress == "" {
		// incomplete profile cannot be notified, and a retry will see the
		// same profile
		d.log.Info("incomplete contact profile, dropping notification",
			zap.String("cognito_id", request.CognitoID))
		d.acknowledge(record)
		return nil
	}

	body := strings.ReplaceAll(sensorError.Body, nameToken, contact.GivenName)
	if err := d.mailer.Send(contact.EmailAddress, sensorError.Subject, body); err != nil {
		// unacknowledged, the queue redelivers
		return fmt.Errorf("send notification email: %w", err)
	}

	d.log.Info("notification email sent", zap.String("cognito_id", request.CognitoID))
	d.acknowledge(record)
	return nil
}

func (d *Dispatcher) acknowledge(record events.SQSMessage) {
	if err := d.queue.DeleteMessage(record.ReceiptHandle); err != nil {
		d.log.Error("remove notification queue entry", zap.Error(err))
	}
}
