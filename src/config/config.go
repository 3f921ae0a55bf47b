package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Bounds is the validity window for sensor values. Lower bounds are
// inclusive, upper bounds exclusive.
type Bounds struct {
	TempLower float64
	TempUpper float64
	HumLower  float64
	HumUpper  float64
}

// Valid reports whether a sample falls inside the configured window.
func (b Bounds) Valid(temp, hum float64) bool {
	return temp >= b.TempLower && temp < b.TempUpper &&
		hum >= b.HumLower && hum < b.HumUpper
}

// Config holds everything the process needs, resolved once at startup and
// passed into the components explicitly.
type Config struct {
	Region             string
	MappingTable       string
	SensorDataTable    string
	TwoWeekTable       string
	EmailerQueueURL    string
	FirmwareBucket     string
	FirmwareFileKey    string
	FirmwareVersionKey string
	CognitoUserPoolID  string
	Bounds             Bounds
}

// Load reads configuration from the environment. Missing required values and
// inverted bounds are startup errors.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("AWS_REGION_NAME", "eu-west-1")
	v.SetDefault("FW_FILE_KEY", "your_firmware_file.bin")
	v.SetDefault("FW_VERSION_KEY", "version.txt")
	v.SetDefault("LOWER_TEMP_LIMIT", 0.0)
	v.SetDefault("UPPER_TEMP_LIMIT", 85.0)
	v.SetDefault("LOWER_HUM_LIMIT", 0.0)
	v.SetDefault("UPPER_HUM_LIMIT", 100.0)
	for _, key := range []string{
		"AWS_REGION_NAME",
		"USER_MAPPING_TABLE",
		"SENSOR_DATA_TABLE",
		"TWO_WEEK_TABLE",
		"EMAILER_QUEUE_URL",
		"FW_BUCKET",
		"FW_FILE_KEY",
		"FW_VERSION_KEY",
		"COGNITO_USER_POOL_ID",
		"LOWER_TEMP_LIMIT",
		"UPPER_TEMP_LIMIT",
		"LOWER_HUM_LIMIT",
		"UPPER_HUM_LIMIT",
	} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := Config{
		Region:             v.GetString("AWS_REGION_NAME"),
		MappingTable:       v.GetString("USER_MAPPING_TABLE"),
		SensorDataTable:    v.GetString("SENSOR_DATA_TABLE"),
		TwoWeekTable:       v.GetString("TWO_WEEK_TABLE"),
		EmailerQueueURL:    v.GetString("EMAILER_QUEUE_URL"),
		FirmwareBucket:     v.GetString("FW_BUCKET"),
		FirmwareFileKey:    v.GetString("FW_FILE_KEY"),
		FirmwareVersionKey: v.GetString("FW_VERSION_KEY"),
		CognitoUserPoolID:  v.GetString("COGNITO_USER_POOL_ID"),
		Bounds: Bounds{
			TempLower: v.GetFloat64("LOWER_TEMP_LIMIT"),
			TempUpper: v.GetFloat64("UPPER_TEMP_LIMIT"),
			HumLower:  v.GetFloat64("LOWER_HUM_LIMIT"),
			HumUpper:  v.GetFloat64("UPPER_HUM_LIMIT"),
		},
	}

	required := map[string]string{
		"USER_MAPPING_TABLE":   cfg.MappingTable,
		"SENSOR_DATA_TABLE":    cfg.SensorDataTable,
		"TWO_WEEK_TABLE":       cfg.TwoWeekTable,
		"EMAILER_QUEUE_URL":    cfg.EmailerQueueURL,
		"FW_BUCKET":            cfg.FirmwareBucket,
		"COGNITO_USER_POOL_ID": cfg.CognitoUserPoolID,
	}
	for key, value := range required {
		if value == "" {
			return Config{}, fmt.Errorf("missing required environment variable %s", key)
		}
	}
	if cfg.Bounds.TempLower >= cfg.Bounds.TempUpper {
		return Config{}, fmt.Errorf("temperature limits inverted: [%v, %v)", cfg.Bounds.TempLower, cfg.Bounds.TempUpper)
	}
	if cfg.Bounds.HumLower >= cfg.Bounds.HumUpper {
		return Config{}, fmt.Errorf("humidity limits inverted: [%v, %v)", cfg.Bounds.HumLower, cfg.Bounds.HumUpper)
	}
	return cfg, nil
}
