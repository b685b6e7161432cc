// Package services implements clients for the remote media tagging APIs: upload, tag search, tag editing, deletion, and settings forwarding.
//
// # Client
//
// [Client] carries the plumbing every service shares: an http.Client with a configured timeout, a request-rate limiter, and Bearer authorization sourced from the session store via [TokenSource].
//
// # Search Normalization
//
// The search lambdas answer in several shapes depending on which endpoint served the request.
// [DecodeResults] folds them all into []models.SearchResult:
//   - {"results": [...]} : already-normalized entries, passed through
//   - {"links": [...]} : bare file URLs; filenames, types, and full-size URLs are derived
//   - {"body": "..."} : lambda proxy envelope, decoded recursively
//   - [{...}, ...] : raw database items with the file URL under one of several known keys
//
// # Species Cache
//
// [BirdTagService] caches the species list for the configured TTL and serves a fallback list when the endpoint is unreachable, so the search flow keeps working.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : no session token, or the API rejected it
//   - [shared.ErrAPIRequest] : HTTP request failed or returned an error status
//   - [shared.ErrUnsupportedType] / [shared.ErrFileTooLarge] / [shared.ErrEmptyFile] : upload validation
//   - [shared.ErrMissingArgument] / [shared.ErrInvalidInput] : rejected before any network traffic
package services
