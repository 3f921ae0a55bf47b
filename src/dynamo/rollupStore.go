package dynamo

import (
	"fmt"

	"iot-fleet-monitor/src/types"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// RollupStore appends hourly summaries to the two-week table. The table's TTL
// attribute is expiretimestamp; DynamoDB deletes rows once it passes, the
// application never does.
type RollupStore struct {
	db    *dynamodb.DynamoDB
	table string
}

func NewRollupStore(db *dynamodb.DynamoDB, table string) *RollupStore {
	return &RollupStore{db: db, table: table}
}

// WriteSummary stores one hourly aggregate. Temperature keeps two decimal
// places on the wire; humidity is already an integer.
func (s *RollupStore) WriteSummary(agg types.HourlyAggregate) error {
	_, err := s.db.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]*dynamodb.AttributeValue{
			"deviceID": {
				S: aws.String(agg.DeviceID),
			},
			"timestamp": {
				N: aws.String(fmt.Sprintf("%d", agg.Timestamp)),
			},
			"temp": {
				N: aws.String(fmt.Sprintf("%.2f", agg.Temp)),
			},
			"hum": {
				N: aws.String(fmt.Sprintf("%d", agg.Hum)),
			},
			"expiretimestamp": {
				N: aws.String(fmt.Sprintf("%d", agg.ExpireTimestamp)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("write two week entry: %w", err)
	}
	return nil
}
