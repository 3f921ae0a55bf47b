package types

// ReadingMessage is the raw IoT rule payload delivered for a data topic
// (iot/data/<fw>/<deviceID>). Temp and Hum are pointers so a missing field
// can be told apart from a zero value.
type ReadingMessage struct {
	Topic         string   `json:"topic"`
	Temp          *float64 `json:"temp"`
	Hum           *float64 `json:"hum"`
	Timestamp     int64    `json:"timestamp"`
	RecvTimestamp int64    `json:"recvtimestamp"`
}

// VersionMessage is the raw IoT rule payload delivered for a version topic
// (iot/version/<deviceID>).
type VersionMessage struct {
	Topic   string  `json:"topic"`
	Version *string `json:"version"`
}

// Reading is one telemetry sample from a field device.
type Reading struct {
	DeviceID  string
	Timestamp int64
	Temp      float64
	Hum       float64
}

// MappingEntry is the per-(user, device) record holding the current error
// state and the last firmware version the device reported.
type MappingEntry struct {
	UserID              string `dynamodbav:"userID"`
	DeviceID            string `dynamodbav:"deviceID"`
	ErrorMsg            string `dynamodbav:"error_msg"`
	LastReportedVersion string `dynamodbav:"last_reported_version"`
}

// HourlyAggregate is one point of the two-week history chart. Immutable once
// written; the store purges it after ExpireTimestamp passes.
type HourlyAggregate struct {
	DeviceID        string
	Timestamp       int64
	Temp            float64
	Hum             int64
	ExpireTimestamp int64
}

// NotificationRequest is the emailer queue message body.
type NotificationRequest struct {
	CognitoID string `json:"cognitoID"`
}
