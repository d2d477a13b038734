package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment
// variables or a .env file.
//
// It is composed of smaller structs that represent different concerns of the
// system: the report window, the object store, and the API server.
//
// Example YAML/ENV equivalent:
//
//	START_DATE=2022-01-01
//	END_DATE=2022-02-28
//	SOURCE_BUCKET=xetra-1234
//	TARGET_BUCKET=xetra-daily-reports
//	REPORT_KEY=xetra_daily_report.parquet
//	AWS_REGION=eu-central-1
//	S3_ENDPOINT=http://localhost:9000
//	FETCH_PARALLEL=4
//	SERVER_PORT=8080
type Config struct {
	Report ReportConfig // Batch report settings (window, buckets, output key)
	S3     S3Config     // Object store connection settings
	Server ServerConfig // HTTP server configuration (api mode)
}

// ReportConfig defines the report window and the object locations the batch
// run reads from and writes to.
//
// Fields:
//   - StartDate: first partition day, inclusive, "YYYY-MM-DD".
//   - EndDate: last partition day, inclusive, "YYYY-MM-DD".
//   - SourceBucket: bucket holding the date-partitioned trading files.
//   - TargetBucket: bucket the report object is published to.
//   - ReportKey: fixed object key of the published report; every run
//     overwrites the previous artifact.
//   - FetchParallel: how many objects to fetch concurrently per partition
//     (0 = auto up to CPU count).
type ReportConfig struct {
	StartDate     string
	EndDate       string
	SourceBucket  string
	TargetBucket  string
	ReportKey     string
	FetchParallel int
}

// S3Config defines connection details for the object store.
//
// Endpoint is optional; when set (e.g. a local MinIO), the client switches
// to path-style addressing. Credentials come from the standard AWS
// environment chain and are not duplicated here.
type S3Config struct {
	Region   string
	Endpoint string
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "8080")
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig(). The batch pipeline still receives
// its config as an explicit value rather than reading the global itself.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or the date window is malformed,
//     validateConfig() will terminate the app with a descriptive message.
func LoadConfig() {
	// Default values
	viper.SetDefault("START_DATE", "2022-01-01")
	viper.SetDefault("END_DATE", "2022-02-28")
	viper.SetDefault("SOURCE_BUCKET", "xetra-1234")
	viper.SetDefault("TARGET_BUCKET", "xetra-daily-reports")
	viper.SetDefault("REPORT_KEY", "xetra_daily_report.parquet")
	viper.SetDefault("FETCH_PARALLEL", 0)

	viper.SetDefault("AWS_REGION", "eu-central-1")
	viper.SetDefault("S3_ENDPOINT", "")

	viper.SetDefault("SERVER_PORT", "8080")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	// Populate global config instance
	AppConfig = Config{
		Report: ReportConfig{
			StartDate:     viper.GetString("START_DATE"),
			EndDate:       viper.GetString("END_DATE"),
			SourceBucket:  viper.GetString("SOURCE_BUCKET"),
			TargetBucket:  viper.GetString("TARGET_BUCKET"),
			ReportKey:     viper.GetString("REPORT_KEY"),
			FetchParallel: viper.GetInt("FETCH_PARALLEL"),
		},
		S3: S3Config{
			Region:   viper.GetString("AWS_REGION"),
			Endpoint: viper.GetString("S3_ENDPOINT"),
		},
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
	}

	// Validate critical fields
	validateConfig()
}

// Window parses the configured report window into calendar dates.
//
// Returns:
//   - start, end: both midnight UTC, end inclusive.
//   - error: if either date is not a valid "YYYY-MM-DD" value.
func (r ReportConfig) Window() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid START_DATE %q: %w", r.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid END_DATE %q: %w", r.EndDate, err)
	}
	return start.UTC(), end.UTC(), nil
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// This avoids unexpected runtime failures due to incomplete configuration.
func validateConfig() {
	var missing []string

	if AppConfig.Report.StartDate == "" {
		missing = append(missing, "START_DATE")
	}
	if AppConfig.Report.EndDate == "" {
		missing = append(missing, "END_DATE")
	}
	if AppConfig.Report.SourceBucket == "" {
		missing = append(missing, "SOURCE_BUCKET")
	}
	if AppConfig.Report.TargetBucket == "" {
		missing = append(missing, "TARGET_BUCKET")
	}
	if AppConfig.Report.ReportKey == "" {
		missing = append(missing, "REPORT_KEY")
	}
	if AppConfig.S3.Region == "" {
		missing = append(missing, "AWS_REGION")
	}
	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}

	if len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}

	if _, _, err := AppConfig.Report.Window(); err != nil {
		log.Fatalf("invalid report window: %v\n", err)
	}
}
