// Package tasks orchestrates long-running playlist operations with real-time progress reporting.
//
// # Core Operations
//
// The [ExportEngine] exposes three operations:
//
//  1. [ExportEngine.Export] : Assemble a single playlist export
//     - Fetches the playlist and resolves its song list
//     - Returns a [models.PlaylistExport] ready for the formatter package
//
//  2. [ExportEngine.Diff] : Compare two playlists
//     - Matches songs by ID (preferred) or normalized name/author
//     - Reports matched count, missing songs, and extra songs
//
//  3. [ExportEngine.BulkExport] : Export many playlists concurrently
//     - Worker pool with configurable size and rate limiting
//     - Handles partial failures and writes a summary manifest
//
// # Progress Reporting
//
// All operations accept an optional channel of [ProgressUpdate] values.
// Updates use select with default so reporting never blocks execution.
package tasks
