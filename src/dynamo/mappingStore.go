package dynamo

import (
	"fmt"

	"iot-fleet-monitor/src/types"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
)

// MappingStore reads and mutates the user-device mapping table. The table is
// keyed (userID, deviceID) with a DeviceIndex GSI for lookups by device alone.
type MappingStore struct {
	db    *dynamodb.DynamoDB
	table string
}

func NewMappingStore(db *dynamodb.DynamoDB, table string) *MappingStore {
	return &MappingStore{db: db, table: table}
}

// GetByDeviceID returns the mapping entry for a device, or nil when no user
// has onboarded it. The device index is not guaranteed unique in storage;
// first match wins, by convention.
func (s *MappingStore) GetByDeviceID(deviceID string) (*types.MappingEntry, error) {
	out, err := s.db.Query(&dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String("DeviceIndex"),
		KeyConditionExpression: aws.String("deviceID = :device"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":device": {S: aws.String(deviceID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query device index: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var entry types.MappingEntry
	if err := dynamodbattribute.UnmarshalMap(out.Items[0], &entry); err != nil {
		return nil, fmt.Errorf("unmarshal mapping entry: %w", err)
	}
	return &entry, nil
}

// SetErrorMessage writes the error state for a (user, device) pair. An empty
// message marks the device healthy.
func (s *MappingStore) SetErrorMessage(userID, deviceID, msg string) error {
	_, err := s.db.UpdateItem(&dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]*dynamodb.AttributeValue{
			"userID":   {S: aws.String(userID)},
			"deviceID": {S: aws.String(deviceID)},
		},
		UpdateExpression: aws.String("SET error_msg = :error_msg"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":error_msg": {S: aws.String(msg)},
		},
	})
	if err != nil {
		return fmt.Errorf("set error message: %w", err)
	}
	return nil
}

// SetReportedVersion records the firmware version a device last reported.
func (s *MappingStore) SetReportedVersion(userID, deviceID, version string) error {
	_, err := s.db.UpdateItem(&dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]*dynamodb.AttributeValue{
			"userID":   {S: aws.String(userID)},
			"deviceID": {S: aws.String(deviceID)},
		},
		UpdateExpression: aws.String("SET last_reported_version = :version"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":version": {S: aws.String(version)},
		},
	})
	if err != nil {
		return fmt.Errorf("set reported version: %w", err)
	}
	return nil
}
