// Package ident generates short, URL-safe record identifiers over a
// 32-symbol alphabet that drops the visually ambiguous I, L, O and U, so an
// identifier read from a printed label survives transcription.
package ident

import (
	"crypto/rand"
	"fmt"
)

const Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// DefaultLength yields 32^8 = 2^40 combinations.
const DefaultLength = 8

const maxRegenAttempts = 6

// New returns a random identifier of the given length. A failing system
// random source is a fatal environment error, not a recoverable one.
func New(length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("ident: system random source unavailable: %v", err))
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf)
}

// NewUnique regenerates against an existence check a bounded number of
// times, then accepts the final candidate. Collision probability at 2^40 is
// treated as negligible, not zero.
func NewUnique(length int, exists func(id string) bool) string {
	id := New(length)
	if exists == nil {
		return id
	}
	for i := 0; i < maxRegenAttempts-1 && exists(id); i++ {
		id = New(length)
	}
	return id
}
