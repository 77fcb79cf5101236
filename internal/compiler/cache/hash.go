package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/shapec-dev/shapec/internal/compiler/schema"
)

// HashContent computes a SHA-256 hash of the given content
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Key hashes everything a compiled snapshot depends on: the service name,
// its documents, the override fingerprint and the SDK version. Absent
// optional documents hash differently from empty ones.
func Key(service string, docs *schema.Documents, fingerprint, sdkVersion string) string {
	h := sha256.New()
	writeField(h, "service", []byte(service))
	for _, part := range []struct {
		name string
		data []byte
	}{
		{schema.ServiceFile, docs.Service},
		{schema.PaginatorsFile, docs.Paginators},
		{schema.WaitersFile, docs.Waiters},
		{schema.ResourcesFile, docs.Resources},
	} {
		writeField(h, part.name, part.data)
	}
	writeField(h, "overrides", []byte(fingerprint))
	writeField(h, "sdk", []byte(sdkVersion))
	return hex.EncodeToString(h.Sum(nil))
}

// writeField writes a length-prefixed field so adjacent fields cannot run
// into each other. A nil field is marked absent.
func writeField(w io.Writer, name string, data []byte) {
	io.WriteString(w, name)
	if data == nil {
		w.Write([]byte{0})
		return
	}
	w.Write([]byte{1})
	var n [8]byte
	for i, l := 0, uint64(len(data)); i < 8; i++ {
		n[i] = byte(l >> (8 * i))
	}
	w.Write(n[:])
	w.Write(data)
}
