package core

// ArtifactStore persists named binary artifacts scoped to a session. The
// pipeline records the final verdict document here in addition to the file
// emitted on disk, so callers can retrieve it without touching the filesystem.
type ArtifactStore interface {
	Save(sessionID, artifactID string, data []byte) error
	Get(sessionID, artifactID string) ([]byte, error)
	List(sessionID string) ([]string, error)
	Delete(sessionID, artifactID string) error
}
