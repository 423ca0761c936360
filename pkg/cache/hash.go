package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey identifies the resolved layout of a document.
	LayoutKey(docHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies one rendered output of a document.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the options that change a resolved layout.
type LayoutKeyOpts struct {
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	EmSize float64 `json:"em,omitempty"`
}

// ArtifactKeyOpts holds the options that change rendered bytes.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	EmSize     float64 `json:"em,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
	Grid       bool    `json:"grid,omitempty"`
	Background string  `json:"background,omitempty"`
	Converter  bool    `json:"converter,omitempty"`
}

// DefaultKeyer builds "<kind>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}

// KeyType returns the kind prefix of key ("layout", "artifact"), ignoring
// any scope prefix.
func KeyType(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return key
	}
	key = key[:i]
	if j := strings.LastIndexByte(key, ':'); j >= 0 {
		key = key[j+1:]
	}
	return key
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
