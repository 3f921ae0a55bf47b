package dynamo

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

var (
	clientInstance *dynamodb.DynamoDB
	once           sync.Once
)

// Client returns the shared DynamoDB client. The region is fixed on first
// call; subsequent calls return the same instance.
func Client(region string) *dynamodb.DynamoDB {
	once.Do(func() {
		sess := session.Must(session.NewSession(&aws.Config{Region: aws.String(region)}))

		clientInstance = dynamodb.New(sess)
	})

	return clientInstance
}
