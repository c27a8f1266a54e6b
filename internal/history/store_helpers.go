package history

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

const recordColumns = "id, source_path, asset_url, job_id, status, result_url, output_path, error_message, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id           int64
		sourcePath   sql.NullString
		assetURL     sql.NullString
		jobID        sql.NullString
		statusStr    string
		resultURL    sql.NullString
		outputPath   sql.NullString
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&sourcePath,
		&assetURL,
		&jobID,
		&statusStr,
		&resultURL,
		&outputPath,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:           id,
		SourcePath:   sourcePath.String,
		AssetURL:     assetURL.String,
		JobID:        jobID.String,
		Status:       Status(statusStr),
		ResultURL:    resultURL.String,
		OutputPath:   outputPath.String,
		ErrorMessage: errorMessage.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
