// Package codec encodes StatRecords into the opaque payload column.
// The payload is a single version byte followed by a MessagePack body, so a
// version check never requires decoding the body.
package codec

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/nordkyn/skystats/internal/stats"
)

// FormatVersion is the payload version written by this build. Decoding accepts
// any version up to and including this one; missing fields in older payloads
// decode to their zero values.
const FormatVersion = 1

var (
	// ErrEmptyPayload marks a zero-length payload.
	ErrEmptyPayload = errors.New("codec: empty payload")
	// ErrVersionMismatch marks a payload written by a newer format than this
	// build understands. Kept distinct from corruption for debugging.
	ErrVersionMismatch = errors.New("codec: incompatible payload version")
	// ErrCorruptPayload marks a payload whose body fails to decode.
	ErrCorruptPayload = errors.New("codec: corrupt payload")
	// ErrMissingPlayerID marks a record that cannot be encoded because it has
	// no identity.
	ErrMissingPlayerID = errors.New("codec: record has no player id")
)

// Encode serializes a record. Deterministic and side-effect free.
func Encode(rec *stats.StatRecord) ([]byte, error) {
	if rec.PlayerID == uuid.Nil {
		return nil, ErrMissingPlayerID
	}
	body, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal record %s: %w", rec.PlayerID, err)
	}
	payload := make([]byte, 0, len(body)+1)
	payload = append(payload, FormatVersion)
	payload = append(payload, body...)
	return payload, nil
}

// Decode deserializes a payload produced by Encode, possibly by an older
// format version.
func Decode(payload []byte) (*stats.StatRecord, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}
	version := payload[0]
	if version > FormatVersion {
		return nil, fmt.Errorf("%w: got %d, max supported %d", ErrVersionMismatch, version, FormatVersion)
	}
	var rec stats.StatRecord
	if err := msgpack.Unmarshal(payload[1:], &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	if rec.BestPlacement == 0 {
		// Older payloads predate the placement sentinel.
		rec.BestPlacement = stats.NoPlacement
	}
	return &rec, nil
}
