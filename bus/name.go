package bus

import (
	"hash/fnv"
	"strings"
)

// Separator joins the segments of a hierarchical name.
const Separator = ":"

// Name is a hierarchical endpoint name such as "main:HookFilter:UserHook".
type Name struct {
	parent string
	me     string
}

// NewName appends me to parent. An empty parent yields a root name.
func NewName(parent, me string) Name {
	return Name{parent: parent, me: me}
}

// ParseName splits a joined name at its last separator.
func ParseName(joined string) Name {
	if i := strings.LastIndex(joined, Separator); i >= 0 {
		return Name{parent: joined[:i], me: joined[i+1:]}
	}
	return Name{me: joined}
}

func (n Name) Parent() string { return n.parent }
func (n Name) Me() string     { return n.me }

// Join returns the full name.
func (n Name) Join() string {
	if n.parent == "" {
		return n.me
	}
	return n.parent + Separator + n.me
}

func (n Name) String() string { return n.Join() }

// Child returns the name of an endpoint nested under n.
func (n Name) Child(me string) Name { return NewName(n.Join(), me) }

// TxID derives the correlation id of the endpoint named n. The same name
// always yields the same id.
func (n Name) TxID() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(n.Join()))
	return h.Sum64()
}
