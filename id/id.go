// Package id defines TypeID-based identifiers for queued tasks and queues.
//
// IDs are K-sortable (UUIDv7-based), globally unique, and render as
// "prefix_suffix". The prefix tells a reader what kind of entity an ID
// names when it shows up in a log line.
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// Prefix constants.
const (
	PrefixTask    Prefix = "task"
	PrefixRequest Prefix = "req"
	PrefixQueue   Prefix = "q"
)

// ID wraps a TypeID. The zero value is Nil.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receiver for UnmarshalText.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// TaskID identifies a task inside a queue. Request operations use the
// same space with the "req" prefix.
type TaskID = ID

// QueueID identifies a queue.
type QueueID = ID

// New generates an ID with the given prefix. An invalid prefix is a
// programming error and panics.
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}
	return ID{inner: tid, valid: true}
}

// NewTaskID generates a task ID.
func NewTaskID() ID { return New(PrefixTask) }

// NewRequestID generates a request operation ID.
func NewRequestID() ID { return New(PrefixRequest) }

// NewQueueID generates a queue ID.
func NewQueueID() ID { return New(PrefixQueue) }

// Parse parses "prefix_suffix" into an ID.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}
	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses s and checks that its prefix is one of want.
func ParseWithPrefix(s string, want ...Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}
	for _, p := range want {
		if parsed.Prefix() == p {
			return parsed, nil
		}
	}
	return Nil, fmt.Errorf("id: unexpected prefix %q in %q", parsed.Prefix(), s)
}

// ParseTaskID accepts both task and request IDs.
func ParseTaskID(s string) (ID, error) { return ParseWithPrefix(s, PrefixTask, PrefixRequest) }

// String returns "prefix_suffix", or "" for Nil.
func (i ID) String() string {
	if !i.valid {
		return ""
	}
	return i.inner.String()
}

// Prefix returns the entity prefix, or "" for Nil.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}
	return Prefix(i.inner.Prefix())
}

// IsNil reports whether i is the zero value.
func (i ID) IsNil() bool { return !i.valid }

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
