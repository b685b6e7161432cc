// Package models defines domain entities and persistence interfaces for the BirdTag media tagging client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing remote API data
//   - [SearchResult] : Normalized media file entry from any search response shape
//   - [TagSpec] : Species name with a count, for searches and tag edits
//   - [Tokens] / [User] : Identity provider session data
//   - [Profile] / [Preferences] : Locally managed account settings
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [UploadRecord] : Completed upload history with storage locations
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
