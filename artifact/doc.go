// Package artifact contains concrete implementations of the core.ArtifactStore.
//
// The canonical ArtifactStore interface lives in the core package to avoid
// dependency cycles and keep domain contracts central. The pipeline records
// the final verdict document here (keyed by its filename) in addition to the
// file emitted on disk, so callers can retrieve the report without touching
// the filesystem.
package artifact
