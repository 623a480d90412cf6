// Package id generates entity identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Ids are lowercase alphanumerics so the search tokenizer keeps them whole.
const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	length   = 16
)

// Generate creates a prefixed identifier, e.g. "ani-3k9x0v7q2m1c8d5e".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.Generate(alphabet, length)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics when the system lacks entropy.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
