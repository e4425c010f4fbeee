package sink

import "fmt"

// Target selects the backend for one compilation: an eager build into a
// container of the given kind, or a lazy sequence with no sink at all.
type Target struct {
	Lazy bool
	Kind Kind
}

// LazyTarget is the target of the lazy backend.
var LazyTarget = Target{Lazy: true}

// EagerTarget builds into a container of kind k.
func EagerTarget(k Kind) Target {
	return Target{Kind: k}
}

// ParseTarget accepts a container name or "lazy"/"iter".
func ParseTarget(name string) (Target, error) {
	switch name {
	case "lazy", "iter", "iterator", "iterator_ref", "seq":
		return LazyTarget, nil
	}
	k, err := ParseKind(name)
	if err != nil {
		return Target{}, fmt.Errorf("%w (or lazy)", err)
	}
	return EagerTarget(k), nil
}

func (t Target) String() string {
	if t.Lazy {
		return "lazy"
	}
	return t.Kind.String()
}
