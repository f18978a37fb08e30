package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/clippings/core"
)

// Key prefixes for different data types. No prefix may be a prefix of
// another, so prefix scans never bleed across record types.
const (
	notePrefix       = "noterec"
	noteURLPrefix    = "noteurl"
	noteTimePrefix   = "notetime"
	embeddingPrefix  = "embrec"
	tagPrefix        = "tagrec"
	checkpointPrefix = "chkpt"
)

// makeNoteKey generates a key for a note by ID.
func makeNoteKey(id core.ID) []byte {
	return []byte(notePrefix + ":" + string(id))
}

// makeNoteURLKey generates a key for the URL index.
// URLs are hashed so key length stays bounded regardless of URL length.
func makeNoteURLKey(url string) []byte {
	return []byte(noteURLPrefix + ":" + string(core.IDFromURL(url)))
}

// makeNoteTimeKey generates a composite key for the creation-time index.
// Format: prefix:timestamp:id
func makeNoteTimeKey(createdAt time.Time, id core.ID) []byte {
	prefix := noteTimePrefix + ":"
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// makePartialNoteTimeKey generates a partial key for time-ordered scans.
// Format: prefix:timestamp
func makePartialNoteTimeKey(ts time.Time) []byte {
	prefix := noteTimePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(ts.UnixMicro()))
	return buf
}

// makeEmbeddingKey generates a key for an embedding record by note ID.
func makeEmbeddingKey(id core.ID) []byte {
	return []byte(embeddingPrefix + ":" + string(id))
}

// makeTagKey generates a key for a tag record by canonical name.
func makeTagKey(name string) []byte {
	return []byte(tagPrefix + ":" + name)
}

// makeCheckpointKey generates a key for processor checkpoints.
func makeCheckpointKey(processor string) []byte {
	return []byte(checkpointPrefix + ":" + processor)
}
