// Package testdata contains types for the source provider tests.
package testdata

import (
	"net/url"
	"time"

	v1 "github.com/broady/typepoet/ktgen/provider/testdata/v1"
)

// User represents a user in the system.
//
// It is returned by every account endpoint.
type User struct {
	// ID is the unique identifier.
	ID string `json:"id"`

	// DisplayName is shown in the UI.
	DisplayName string `json:"display_name"`

	Email string `json:"email,omitempty"`

	// Age may be nil.
	Age *int32 `json:"age"`

	CreatedAt time.Time     `json:"created_at"`
	Timeout   time.Duration `json:"timeout"`
	Status    Status        `json:"status"`
	Tags      []string      `json:"tags"`
	Avatar    []byte        `json:"avatar,omitempty"`

	Internal string `json:"-"`
	secret   string
}

// Status represents user status.
type Status string

const (
	// StatusActive means the user is active.
	StatusActive   Status = "active"
	// StatusInactive means the user is inactive.
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

// Priority is an integer enum.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// Mask is an unsigned enum.
type Mask uint8

const (
	MaskRead  Mask = 1
	MaskWrite Mask = 2
)

// Collections covers the container mappings.
type Collections struct {
	Fixed    [4]float64        `json:"fixed"`
	Lookup   map[string][]User `json:"lookup"`
	Anything any               `json:"anything"`
	Events   <-chan string     `json:"events"`
	Sink     chan<- int64      `json:"sink"`
	Both     chan bool         `json:"both"`
	Nested   [][]uint16        `json:"nested"`
	Link     *url.URL          `json:"link"`
	Anon     struct{ X int }   `json:"anon"`

	Fn    func(string) error                        `json:"fn"`
	Fetch func(int, ...string) (string, int, error) `json:"fetch"`
	Bad   func() (int, int, int, int)               `json:"bad"`
}

// Comparable is implemented by ordered values.
type Comparable[T any] interface {
	CompareTo(other T) int
}

// Node is a tree node ordered by its value.
type Node[T Comparable[T]] struct {
	Value    T         `json:"value"`
	Children []Node[T] `json:"children,omitempty"`
}

// Page is a page of results.
type Page[T any] struct {
	Items []T     `json:"items"`
	Next  *string `json:"next"`
}

// Base holds fields shared by embedded structs.
type Base struct {
	Version int `json:"version"`
}

// Document embeds Base.
type Document struct {
	Base
	Title string     `json:"title"`
	Owner v1.Account `json:"owner"`
}

// IDs is a list of identifiers.
type IDs []string

// Handler is called for every event.
type Handler func(event string, attrs map[string]string)

// Stringer is an interface with methods.
type Stringer interface {
	String() string
}

// Stamp has a custom JSON encoding.
type Stamp struct {
	Unix int64
}

// MarshalJSON encodes the stamp as a number.
func (s Stamp) MarshalJSON() ([]byte, error) { return nil, nil }

// Empty has no fields.
type Empty struct{}

// Legacy is an old type.
//
// Deprecated: use User.
type Legacy struct {
	Name string `json:"name"`
}
