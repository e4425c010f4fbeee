package config

import (
	"fmt"
	"strings"
)

// DupPolicy decides where the duplicate of a named binding consumed below
// the outermost level is declared.
type DupPolicy int

const (
	// PerPass declares `x := rt.Clone(x)` inside the enclosing loop, right
	// before the loop that consumes it, so every outer pass gets a fresh copy.
	PerPass DupPolicy = iota
	// Hoisted declares `x := x` once at the top of the scope owning x and
	// ranges over `rt.Clone(x)` on every pass.
	Hoisted
)

func (p DupPolicy) String() string {
	switch p {
	case PerPass:
		return "per_pass"
	case Hoisted:
		return "hoisted"
	}
	return fmt.Sprintf("DupPolicy(%d)", int(p))
}

// ParseDupPolicy accepts "per_pass" (default when empty) or "hoisted".
func ParseDupPolicy(s string) (DupPolicy, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "_")) {
	case "", "per_pass", "perpass", "pass":
		return PerPass, nil
	case "hoisted", "once":
		return Hoisted, nil
	}
	return PerPass, fmt.Errorf("unknown duplication policy %q (want per_pass or hoisted)", s)
}

// Options carries the per-compilation code generation settings.
type Options struct {
	// Elem is the element type of arity-1 sinks and lazy sequences.
	Elem string
	// Key and Value type arity-2 sinks and pair sequences.
	Key   string
	Value string
	Dup   DupPolicy
}

// DefaultOptions leaves every type as `any` and duplicates per pass.
func DefaultOptions() Options {
	return Options{Elem: DefaultType, Key: DefaultType, Value: DefaultType, Dup: PerPass}
}

// WithDefaults fills empty type names.
func (o Options) WithDefaults() Options {
	if o.Elem == "" {
		o.Elem = DefaultType
	}
	if o.Key == "" {
		o.Key = DefaultType
	}
	if o.Value == "" {
		o.Value = DefaultType
	}
	return o
}

func (o Options) String() string {
	o = o.WithDefaults()
	return fmt.Sprintf("elem=%s key=%s value=%s dup=%s", o.Elem, o.Key, o.Value, o.Dup)
}
