package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"iot-fleet-monitor/src/config"
	"iot-fleet-monitor/src/dynamo"
	"iot-fleet-monitor/src/emailer"
	"iot-fleet-monitor/src/errorcheck"
	"iot-fleet-monitor/src/firmware"
	"iot-fleet-monitor/src/ingest"
	"iot-fleet-monitor/src/logger"
	"iot-fleet-monitor/src/notify"
	"iot-fleet-monitor/src/queue"
	"iot-fleet-monitor/src/rollup"
	"iot-fleet-monitor/src/types"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/iotdataplane"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/sqs"
	"go.uber.org/zap"
)

// detectEventType sniffs the raw Lambda payload shape: a mapping-table stream
// batch, a notification queue batch, or an IoT rule message whose topic names
// the ingress.
func detectEventType(event json.RawMessage) (string, error) {
	var streamEvent events.DynamoDBEvent
	if err := json.Unmarshal(event, &streamEvent); err == nil {
		if len(streamEvent.Records) > 0 && streamEvent.Records[0].EventSource == "aws:dynamodb" {
			return "mapping-stream", nil
		}
	}

	var queueEvent events.SQSEvent
	if err := json.Unmarshal(event, &queueEvent); err == nil {
		if len(queueEvent.Records) > 0 && queueEvent.Records[0].EventSource == "aws:sqs" {
			return "notification-queue", nil
		}
	}

	var iotMessage struct {
		Topic string `json:"topic"`
	}
	if err := json.Unmarshal(event, &iotMessage); err == nil {
		switch {
		case strings.HasPrefix(iotMessage.Topic, "iot/data/"):
			return "reading", nil
		case strings.HasPrefix(iotMessage.Topic, "iot/version/"):
			return "version-report", nil
		}
	}

	return "", fmt.Errorf("unknown event type")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New("iot-fleet-monitor")
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	sess := session.Must(session.NewSession(&aws.Config{Region: aws.String(cfg.Region)}))
	db := dynamo.Client(cfg.Region)

	mappings := dynamo.NewMappingStore(db, cfg.MappingTable)
	sensorData := dynamo.NewSensorDataStore(db, cfg.SensorDataTable)
	rollups := dynamo.NewRollupStore(db, cfg.TwoWeekTable)
	notifications := queue.NewNotificationQueue(sqs.New(sess), cfg.EmailerQueueURL)

	tracker := errorcheck.NewTracker(mappings, cfg.Bounds, log)
	aggregator := rollup.NewAggregator(sensorData, rollups, cfg.Bounds, log)
	reconciler := firmware.NewReconciler(
		firmware.NewBucket(s3.New(sess), cfg.FirmwareBucket, cfg.FirmwareFileKey, cfg.FirmwareVersionKey),
		firmware.NewCommandChannel(iotdataplane.New(sess)),
		mappings,
		log,
	)
	ingester := ingest.NewHandler(tracker, aggregator, reconciler, log)
	trigger := notify.NewTrigger(mappings, notifications, log)
	dispatcher := emailer.NewDispatcher(
		emailer.NewCognitoDirectory(cognitoidentityprovider.New(sess), cfg.CognitoUserPoolID),
		emailer.NewSESMailer(ses.New(sess)),
		notifications,
		log,
	)

	lambda.Start(func(ctx context.Context, event json.RawMessage) error {
		eventType, err := detectEventType(event)
		if err != nil {
			log.Error("cannot detect event type", zap.Error(err))
			return err
		}

		switch eventType {
		case "reading":
			var msg types.ReadingMessage
			if err := json.Unmarshal(event, &msg); err != nil {
				return fmt.Errorf("unmarshal reading message: %w", err)
			}
			return ingester.HandleReading(msg)

		case "version-report":
			var msg types.VersionMessage
			if err := json.Unmarshal(event, &msg); err != nil {
				return fmt.Errorf("unmarshal version message: %w", err)
			}
			return ingester.HandleVersionReport(msg)

		case "mapping-stream":
			var streamEvent events.DynamoDBEvent
			if err := json.Unmarshal(event, &streamEvent); err != nil {
				return fmt.Errorf("unmarshal stream event: %w", err)
			}
			return trigger.HandleEvent(streamEvent)

		case "notification-queue":
			var queueEvent events.SQSEvent
			if err := json.Unmarshal(event, &queueEvent); err != nil {
				return fmt.Errorf("unmarshal queue event: %w", err)
			}
			return dispatcher.HandleEvent(queueEvent)

		default:
			return fmt.Errorf("unknown event type: %s", eventType)
		}
	})
}
