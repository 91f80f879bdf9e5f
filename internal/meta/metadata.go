// Package meta holds the free-form string attributes callers attach to an account
// (owner name, agency, ...). They are flattened into the account document on disk.
package meta

import (
    "errors"
    "fmt"
    "sort"
)

// Metadata is a small string map with validation.
type Metadata map[string]string

const (
    MaxPairs  = 20
    MaxKeyLen = 64
    MaxValLen = 256
)

var (
    ErrTooManyPairs = errors.New("metadata too many pairs")
    ErrKeyLength    = errors.New("metadata key too long or empty")
    ErrValueLength  = errors.New("metadata value too long")
    ErrReservedKey  = errors.New("metadata key is reserved")
)

func New(m map[string]string) Metadata {
    if m == nil { return Metadata{} }
    out := make(Metadata, len(m))
    for k, v := range m { out[k] = v }
    return out
}

func (m Metadata) Clone() Metadata { return New(m) }

func (m Metadata) Get(k string) (string, bool) { v, ok := m[k]; return v, ok }

// Keys returns the keys in ascending order.
func (m Metadata) Keys() []string {
    keys := make([]string, 0, len(m))
    for k := range m { keys = append(keys, k) }
    sort.Strings(keys)
    return keys
}

// Validate enforces size limits and rejects any key listed in reserved.
func (m Metadata) Validate(reserved ...string) error {
    if len(m) > MaxPairs { return ErrTooManyPairs }
    for _, k := range m.Keys() {
        v := m[k]
        if len(k) == 0 || len(k) > MaxKeyLen { return ErrKeyLength }
        if len(v) > MaxValLen { return fmt.Errorf("%w: %s", ErrValueLength, k) }
        for _, r := range reserved {
            if k == r { return fmt.Errorf("%w: %s", ErrReservedKey, k) }
        }
    }
    return nil
}
