package config_test

import (
	"testing"

	"iot-fleet-monitor/src/config"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("USER_MAPPING_TABLE", "UserMapping")
	t.Setenv("SENSOR_DATA_TABLE", "SensorData")
	t.Setenv("TWO_WEEK_TABLE", "TwoWeek")
	t.Setenv("EMAILER_QUEUE_URL", "https://sqs.eu-west-1.amazonaws.com/1/emailer")
	t.Setenv("FW_BUCKET", "firmware-bucket")
	t.Setenv("COGNITO_USER_POOL_ID", "eu-west-1_abc123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "eu-west-1", cfg.Region)
	require.Equal(t, "UserMapping", cfg.MappingTable)
	require.Equal(t, "your_firmware_file.bin", cfg.FirmwareFileKey)
	require.Equal(t, "version.txt", cfg.FirmwareVersionKey)
	require.Equal(t, 0.0, cfg.Bounds.TempLower)
	require.Equal(t, 85.0, cfg.Bounds.TempUpper)
	require.Equal(t, 0.0, cfg.Bounds.HumLower)
	require.Equal(t, 100.0, cfg.Bounds.HumUpper)
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AWS_REGION_NAME", "ap-southeast-1")
	t.Setenv("LOWER_TEMP_LIMIT", "-10")
	t.Setenv("UPPER_TEMP_LIMIT", "60")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "ap-southeast-1", cfg.Region)
	require.Equal(t, -10.0, cfg.Bounds.TempLower)
	require.Equal(t, 60.0, cfg.Bounds.TempUpper)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("USER_MAPPING_TABLE", "")

	_, err := config.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "USER_MAPPING_TABLE")
}

func TestLoad_InvertedBounds(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOWER_HUM_LIMIT", "100")
	t.Setenv("UPPER_HUM_LIMIT", "0")

	_, err := config.Load()
	require.Error(t, err)
}

func TestBounds_HalfOpenInterval(t *testing.T) {
	b := config.Bounds{TempLower: 0, TempUpper: 85, HumLower: 0, HumUpper: 100}

	require.True(t, b.Valid(0, 50))    // lower bound inclusive
	require.True(t, b.Valid(84.9, 99.9))
	require.False(t, b.Valid(85, 50))  // upper bound exclusive
	require.False(t, b.Valid(20, 100)) // upper bound exclusive
	require.False(t, b.Valid(-0.1, 50))
	require.False(t, b.Valid(20, -1))
}
