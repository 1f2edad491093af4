// Package idgen provides pluggable ID generation for blockdoc.
//
// Block IDs are never drawn from ambient randomness inside the converters:
// every constructor that creates blocks accepts a Generator, so tests can
// supply a fixed sequence and production code picks the strategy at startup.
package idgen

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
// Time-sortable; used for drafts and request IDs.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Short returns a Generator producing the first n hex digits of a random
// (v4) UUID. n is clamped to [4, 32].
func Short(n int) Generator {
	if n < 4 {
		n = 4
	}
	if n > 32 {
		n = 32
	}
	return func() string {
		u := uuid.New()
		return strings.ReplaceAll(u.String(), "-", "")[:n]
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Sequence returns a deterministic Generator yielding prefix1, prefix2, ...
// Intended for tests and golden output.
func Sequence(prefix string) Generator {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

// Unique wraps gen so that it never returns the same ID twice. The returned
// Generator carries its own memory and is meant to live for a single
// document build; it is not safe for concurrent use.
func Unique(gen Generator) Generator {
	seen := make(map[string]struct{})
	return func() string {
		for {
			id := gen()
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			return id
		}
	}
}

// ImportPrefix is the default prefix of imported block IDs.
const ImportPrefix = "imp-"

// Import is the block ID strategy for imported content: prefix followed by
// eight hex digits.
func Import(prefix string) Generator {
	return Prefixed(prefix, Short(8))
}

// Default is the generator for persisted records: UUIDv7.
var Default Generator = UUIDv7()

// New produces an ID using the Default generator.
func New() string {
	return Default()
}
