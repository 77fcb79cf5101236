package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shapec-dev/shapec/internal/compiler/schema"
)

func TestHashContent(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashContent(nil))
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", HashContent([]byte("hello world")))
}

func TestKey(t *testing.T) {
	docs := &schema.Documents{Service: []byte(`{"metadata": {}}`), Waiters: []byte(`{}`)}
	base := Key("things", docs, "fp", "1.0.0")

	assert.Len(t, base, 64)
	assert.Equal(t, base, Key("things", docs, "fp", "1.0.0"))

	tests := []struct {
		name string
		key  string
	}{
		{"service name", Key("other", docs, "fp", "1.0.0")},
		{"overrides", Key("things", docs, "fp2", "1.0.0")},
		{"sdk version", Key("things", docs, "fp", "1.1.0")},
		{"document", Key("things", &schema.Documents{Service: []byte(`{"metadata": {} }`), Waiters: []byte(`{}`)}, "fp", "1.0.0")},
		{"absent vs empty", Key("things", &schema.Documents{Service: docs.Service, Waiters: docs.Waiters, Paginators: []byte{}}, "fp", "1.0.0")},
		{"moved document", Key("things", &schema.Documents{Service: docs.Service, Paginators: []byte(`{}`)}, "fp", "1.0.0")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.key)
		})
	}
}
