// Package sink holds the static table that tells the eager backend how to
// create, fill and type each supported container.
package sink

import (
	"fmt"
	"sort"
	"strings"
)

// Kind enumerates the container kinds an eager comprehension can build.
type Kind int

const (
	Vec Kind = iota
	VecDeque
	LinkedList
	HashSet
	BTreeSet
	HashMap
	BTreeMap
	BinaryHeap
)

// Kinds lists every kind in table order.
var Kinds = []Kind{Vec, VecDeque, LinkedList, HashSet, BTreeSet, HashMap, BTreeMap, BinaryHeap}

// Policy describes one row of the table. Init, Insert and Type are Go
// templates where $E, $K, $V, $S, $k and $v are substituted by the backend:
// element/key/value types, the sink identifier, and the key/value fragments.
type Policy struct {
	Kind   Kind
	Name   string
	Arity  int
	Type   string
	Init   string
	Insert string
}

var table = map[Kind]Policy{
	Vec: {
		Kind: Vec, Name: "vec", Arity: 1,
		Type:   "[]$E",
		Init:   "[]$E{}",
		Insert: "$S = append($S, $k)",
	},
	VecDeque: {
		Kind: VecDeque, Name: "vec_deque", Arity: 1,
		Type:   "*rt.Deque[$E]",
		Init:   "rt.NewDeque[$E]()",
		Insert: "$S.PushBack($k)",
	},
	LinkedList: {
		Kind: LinkedList, Name: "linked_list", Arity: 1,
		Type:   "*rt.LinkedList[$E]",
		Init:   "rt.NewLinkedList[$E]()",
		Insert: "$S.Append($k)",
	},
	HashSet: {
		Kind: HashSet, Name: "hash_set", Arity: 1,
		Type:   "map[$E]struct{}",
		Init:   "map[$E]struct{}{}",
		Insert: "$S[$k] = struct{}{}",
	},
	BTreeSet: {
		Kind: BTreeSet, Name: "b_tree_set", Arity: 1,
		Type:   "*rt.OrderedSet[$E]",
		Init:   "rt.NewOrderedSet[$E]()",
		Insert: "$S.Add($k)",
	},
	HashMap: {
		Kind: HashMap, Name: "hash_map", Arity: 2,
		Type:   "map[$K]$V",
		Init:   "map[$K]$V{}",
		Insert: "$S[$k] = $v",
	},
	BTreeMap: {
		Kind: BTreeMap, Name: "b_tree_map", Arity: 2,
		Type:   "*rt.OrderedMap[$K, $V]",
		Init:   "rt.NewOrderedMap[$K, $V]()",
		Insert: "$S.Put($k, $v)",
	},
	BinaryHeap: {
		Kind: BinaryHeap, Name: "binary_heap", Arity: 1,
		Type:   "*rt.PriorityQueue[$E]",
		Init:   "rt.NewPriorityQueue[$E]()",
		Insert: "$S.Push($k)",
	},
}

var aliases = map[string]Kind{
	"vector":         Vec,
	"slice":          Vec,
	"deque":          VecDeque,
	"list":           LinkedList,
	"set":            HashSet,
	"ordered_set":    BTreeSet,
	"map":            HashMap,
	"ordered_map":    BTreeMap,
	"heap":           BinaryHeap,
	"priority_queue": BinaryHeap,
}

// Lookup returns the policy for a kind.
func Lookup(k Kind) Policy {
	p, ok := table[k]
	if !ok {
		panic(fmt.Sprintf("sink: unknown kind %d", int(k)))
	}
	return p
}

func (k Kind) String() string {
	if p, ok := table[k]; ok {
		return p.Name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a kind from its table name or one of its aliases.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for _, k := range Kinds {
		if table[k].Name == n {
			return k, nil
		}
	}
	if k, ok := aliases[n]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown container kind %q (known: %s)", name, strings.Join(Names(), ", "))
}

// Names returns the canonical names of all kinds, sorted.
func Names() []string {
	names := make([]string, 0, len(table))
	for _, k := range Kinds {
		names = append(names, table[k].Name)
	}
	sort.Strings(names)
	return names
}

// Expand substitutes the placeholders of a policy template.
func Expand(tmpl string, vars map[string]string) string {
	// Longest placeholders first so "$S" never eats part of another one.
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "$"+k, vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
