package models

import (
	"fmt"
	"time"
)

// entity provides the common persistent fields shared by database-backed models.
type entity struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

func (e *entity) ID() string            { return e.id }
func (e *entity) Sequence() int         { return e.sequence }
func (e *entity) CreatedAt() time.Time  { return e.createdAt }
func (e *entity) UpdatedAt() time.Time  { return e.updatedAt }
func (e *entity) DeletedAt() *time.Time { return e.deletedAt }

func (e *entity) SetID(id string)           { e.id = id }
func (e *entity) SetSequence(sequence int)  { e.sequence = sequence }
func (e *entity) SetCreatedAt(t time.Time)  { e.createdAt = t }
func (e *entity) SetUpdatedAt(t time.Time)  { e.updatedAt = t }
func (e *entity) SetDeletedAt(t *time.Time) { e.deletedAt = t }

// UploadRecord is the persisted history entry for a completed upload.
type UploadRecord struct {
	entity
	fileID   string
	filename string
	size     int64
	mimeType string
	s3URL    string
	s3Key    string
}

// NewUploadRecord creates an upload history entry with timestamps set to now.
func NewUploadRecord(sequence int, fileID, filename string, size int64, mimeType, s3URL, s3Key string) *UploadRecord {
	now := time.Now()
	return &UploadRecord{
		entity:   entity{sequence: sequence, createdAt: now, updatedAt: now},
		fileID:   fileID,
		filename: filename,
		size:     size,
		mimeType: mimeType,
		s3URL:    s3URL,
		s3Key:    s3Key,
	}
}

func (u *UploadRecord) FileID() string   { return u.fileID }
func (u *UploadRecord) Filename() string { return u.filename }
func (u *UploadRecord) Size() int64      { return u.size }
func (u *UploadRecord) MimeType() string { return u.mimeType }
func (u *UploadRecord) S3URL() string    { return u.s3URL }
func (u *UploadRecord) S3Key() string    { return u.s3Key }

// Validate checks if the upload record's data is valid.
func (u *UploadRecord) Validate() error {
	if u.filename == "" {
		return fmt.Errorf("filename is required")
	}
	if u.size < 0 {
		return fmt.Errorf("size cannot be negative")
	}
	return nil
}
