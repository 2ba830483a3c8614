package cache

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"fortio.org/safecast"

	"kernc/internal/link"
	"kernc/internal/target"
)

// SchemaVersion is bumped whenever Entry changes shape.
const SchemaVersion uint16 = 1

// Entry is one cached composition.
type Entry struct {
	Schema  uint16   `msgpack:"schema"`
	Target  string   `msgpack:"target"`
	Triple  string   `msgpack:"triple"`
	Modules []string `msgpack:"modules"`
	Symbols uint32   `msgpack:"symbols"`
	// Text is the rendered unit.
	Text   []byte   `msgpack:"text"`
	Digest [32]byte `msgpack:"digest"`
}

// EntryFor captures u, composed for t.
func EntryFor(t target.Target, u *link.Unit) (*Entry, error) {
	st, err := u.Stats()
	if err != nil {
		return nil, err
	}
	text := u.Render()
	return &Entry{
		Schema:  SchemaVersion,
		Target:  t.String(),
		Triple:  u.Triple(),
		Modules: u.Modules(),
		Symbols: st.Symbols,
		Text:    text,
		Digest:  sha256.Sum256(text),
	}, nil
}

// CorruptError reports an entry that decoded but failed validation.
type CorruptError struct {
	Reason string
}

func (e *CorruptError) Error() string { return "corrupt cache entry: " + e.Reason }

func (e *Entry) verify() error {
	switch {
	case e.Schema != SchemaVersion:
		return &CorruptError{Reason: fmt.Sprintf("schema %d, want %d", e.Schema, SchemaVersion)}
	case sha256.Sum256(e.Text) != e.Digest:
		return &CorruptError{Reason: "digest mismatch"}
	}
	return nil
}

// Unit parses the cached text back into a unit and checks it against the
// recorded module list and symbol count.
func (e *Entry) Unit() (*link.Unit, error) {
	if err := e.verify(); err != nil {
		return nil, err
	}
	u, err := link.Parse("", e.Text)
	if err != nil {
		return nil, &CorruptError{Reason: err.Error()}
	}
	n, err := safecast.Conv[uint32](len(u.Symbols()))
	if err != nil || n != e.Symbols {
		return nil, &CorruptError{Reason: fmt.Sprintf("symbol count %d, recorded %d", len(u.Symbols()), e.Symbols)}
	}
	if u.Triple() != e.Triple || !equalStrings(u.Modules(), e.Modules) {
		return nil, &CorruptError{Reason: "header does not match recorded metadata"}
	}
	if !bytes.Equal(u.Render(), e.Text) {
		return nil, &CorruptError{Reason: "text does not round-trip"}
	}
	return u, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
