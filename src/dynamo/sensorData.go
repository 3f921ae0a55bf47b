package dynamo

import (
	"fmt"
	"strconv"

	"iot-fleet-monitor/src/types"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
)

// readings per hour at the one-per-minute reporting rate
const hourQueryLimit = 60

type sensorItem struct {
	DeviceID  string  `dynamodbav:"deviceID"`
	Timestamp int64   `dynamodbav:"timestamp"`
	Temp      float64 `dynamodbav:"temp"`
	Hum       float64 `dynamodbav:"hum"`
}

// SensorDataStore reads the raw reading history. The IoT rule writes this
// table directly; the core only queries it.
type SensorDataStore struct {
	db    *dynamodb.DynamoDB
	table string
}

func NewSensorDataStore(db *dynamodb.DynamoDB, table string) *SensorDataStore {
	return &SensorDataStore{db: db, table: table}
}

// PreviousReading returns the latest stored reading for a device with a
// timestamp strictly before the given one, or nil when the device has no
// earlier history.
func (s *SensorDataStore) PreviousReading(deviceID string, before int64) (*types.Reading, error) {
	out, err := s.db.Query(&dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("deviceID = :device AND #ts < :before"),
		ExpressionAttributeNames: map[string]*string{
			"#ts": aws.String("timestamp"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":device": {S: aws.String(deviceID)},
			":before": {N: aws.String(strconv.FormatInt(before, 10))},
		},
		Limit:            aws.Int64(1),
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("query previous reading: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var item sensorItem
	if err := dynamodbattribute.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, fmt.Errorf("unmarshal reading: %w", err)
	}
	r := reading(item)
	return &r, nil
}

// HourOfReadings returns up to 60 readings for a device with timestamps in
// [start, end).
func (s *SensorDataStore) HourOfReadings(deviceID string, start, end int64) ([]types.Reading, error) {
	out, err := s.db.Query(&dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("deviceID = :device AND #ts BETWEEN :start AND :end"),
		ExpressionAttributeNames: map[string]*string{
			"#ts": aws.String("timestamp"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":device": {S: aws.String(deviceID)},
			":start":  {N: aws.String(strconv.FormatInt(start, 10))},
			// BETWEEN is inclusive; end-1 keeps the window half-open
			":end": {N: aws.String(strconv.FormatInt(end-1, 10))},
		},
		Limit:            aws.Int64(hourQueryLimit),
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("query hour of readings: %w", err)
	}

	var items []sensorItem
	if err := dynamodbattribute.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("unmarshal readings: %w", err)
	}

	readings := make([]types.Reading, 0, len(items))
	for _, item := range items {
		readings = append(readings, reading(item))
	}
	return readings, nil
}

func reading(item sensorItem) types.Reading {
	return types.Reading{
		DeviceID:  item.DeviceID,
		Timestamp: item.Timestamp,
		Temp:      item.Temp,
		Hum:       item.Hum,
	}
}
