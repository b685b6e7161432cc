// Package tasks orchestrates bulk media operations with real-time progress reporting.
//
// # Core Operations
//
// The [TagEngine] interface defines four operations:
//
//  1. [TagEngine.UploadAll] : Batch upload
//     - Validates every file before any network traffic
//     - Streams each file with byte-level progress
//     - Records per-file outcomes; one failed upload does not stop the batch
//
//  2. [TagEngine.EditTags] : Bulk tag editing
//     - Applies one add or remove operation to every selected file URL
//     - Single API call regardless of selection size
//
//  3. [TagEngine.DeleteFiles] : Bulk deletion
//     - Removes files and their thumbnails remotely
//     - Purges matching local upload history entries afterwards
//
//  4. [TagEngine.Download] : Batch download
//     - Saves each selected file into a local directory
//     - File URLs are presigned, so requests carry no Authorization header
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, byte counts for transfers, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
