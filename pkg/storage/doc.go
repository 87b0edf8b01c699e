// Package storage writes collection exports to disk.
//
// The storage package handles:
//   - Creating the output directory
//   - Ordering records by figure ID
//   - Encoding the fixed CSV header and rows
//   - Replacing the export file atomically
//
// The Manager writes to a temporary file and renames it over the previous
// export, so an interrupted run never leaves a truncated CSV behind.
//
// Usage:
//
//	manager, err := storage.NewManager("exports", true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	path, err := manager.WriteFigures("alice", records)
//	if err != nil {
//	    log.Printf("Failed to write export: %v", err)
//	}
package storage
