package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/shared"
)

// UploadRepository implements [models.Repository] for [models.UploadRecord] persistence.
type UploadRepository struct {
	db *sql.DB
}

// NewUploadRepository creates a new [UploadRepository] with the given database connection
func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create inserts a new upload record into the database with generated ID and sequence
func (r *UploadRepository) Create(record *models.UploadRecord) error {
	sequence, err := NextSequence(r.db, "uploads")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	record.SetID(id)
	record.SetSequence(sequence)

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO uploads (id, sequence, file_id, filename, size, mime_type, s3_url, s3_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, record.FileID(), record.Filename(), record.Size(),
		record.MimeType(), record.S3URL(), record.S3Key(), record.CreatedAt(), record.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert upload record: %w", err)
	}

	return nil
}

// Get retrieves an upload record by ID, excluding soft-deleted records
func (r *UploadRepository) Get(id string) (*models.UploadRecord, error) {
	query := `
		SELECT id, sequence, file_id, filename, size, mime_type, s3_url, s3_key, created_at, updated_at, deleted_at
		FROM uploads
		WHERE id = ? AND deleted_at IS NULL
	`

	record, err := scanUpload(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("upload record not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query upload record: %w", err)
	}

	return record, nil
}

// Update modifies an existing upload record in the database
func (r *UploadRepository) Update(record *models.UploadRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	record.SetUpdatedAt(now)

	query := `
		UPDATE uploads
		SET filename = ?, size = ?, mime_type = ?, s3_url = ?, s3_key = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, record.Filename(), record.Size(), record.MimeType(),
		record.S3URL(), record.S3Key(), now, record.ID())
	if err != nil {
		return fmt.Errorf("failed to update upload record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("upload record not found or already deleted: %s", record.ID())
	}

	return nil
}

// Delete soft-deletes an upload record by ID
func (r *UploadRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE uploads
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete upload record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("upload record not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves upload records matching the given criteria, newest first,
// excluding soft-deleted records
func (r *UploadRepository) List(criteria map[string]any) ([]*models.UploadRecord, error) {
	query := `
		SELECT id, sequence, file_id, filename, size, mime_type, s3_url, s3_key, created_at, updated_at, deleted_at
		FROM uploads
		WHERE deleted_at IS NULL
	`

	args := []any{}
	for _, col := range []string{"file_id", "filename", "mime_type"} {
		if v, ok := criteria[col]; ok {
			query += fmt.Sprintf(" AND %s = ?", col)
			args = append(args, v)
		}
	}
	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload records: %w", err)
	}
	defer rows.Close()

	var records []*models.UploadRecord
	for rows.Next() {
		record, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// DeleteByS3URL soft-deletes any history entries pointing at the given
// storage URLs. Used when files are removed remotely.
func (r *UploadRepository) DeleteByS3URL(urls []string) error {
	now := time.Now()
	for _, url := range urls {
		_, err := r.db.Exec("UPDATE uploads SET deleted_at = ? WHERE s3_url = ? AND deleted_at IS NULL", now, url)
		if err != nil {
			return fmt.Errorf("failed to delete upload record for %s: %w", url, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUpload(row rowScanner) (*models.UploadRecord, error) {
	var (
		id        string
		sequence  int
		fileID    string
		filename  string
		size      int64
		mimeType  string
		s3URL     string
		s3Key     string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &fileID, &filename, &size, &mimeType, &s3URL, &s3Key,
		&createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	record := models.NewUploadRecord(sequence, fileID, filename, size, mimeType, s3URL, s3Key)
	record.SetID(id)
	record.SetCreatedAt(createdAt)
	record.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		record.SetDeletedAt(&deletedAt.Time)
	}

	return record, nil
}
