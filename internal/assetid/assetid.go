// Package assetid generates the random identifiers used to name uploaded
// assets and downloaded results.
package assetid

import (
	"fmt"
	"path/filepath"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the character set identifiers are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Length is the size of an asset identifier.
const Length = 21

// DefaultExtension is used when the source file name carries none.
const DefaultExtension = "jpg"

// New returns a Length-character identifier.
func New() (string, error) {
	return NewN(Length)
}

// NewN returns an identifier of n characters.
func NewN(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("assetid: length must be positive, got %d", n)
	}
	id, err := gonanoid.Generate(Alphabet, n)
	if err != nil {
		return "", fmt.Errorf("assetid: generate: %w", err)
	}
	return id, nil
}

// Extension returns the text after the last dot of name, or DefaultExtension
// when there is no dot or nothing follows it.
func Extension(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return DefaultExtension
	}
	return base[idx+1:]
}

// FileName builds "<id>.<ext>" for an upload of the named file.
func FileName(original string) (string, error) {
	id, err := New()
	if err != nil {
		return "", err
	}
	return id + "." + Extension(original), nil
}

// Valid reports whether id is a Length-character identifier over Alphabet.
func Valid(id string) bool {
	if len(id) != Length {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}
