package session

import (
	"fmt"
	"strings"

	"github.com/roach88/fetchqb/internal/rule"
)

// Path addresses a node by child indexes from the root group.
// The empty path is the root.
type Path []int

// String renders p in the same notation as fetchxml.EncodeError paths.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("$")
	for _, i := range p {
		fmt.Fprintf(&b, ".rules[%d]", i)
	}
	return b.String()
}

// Child returns p extended by index i without aliasing p.
func (p Path) Child(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// resolve walks p from root.
func resolve(root *rule.Group, p Path) (rule.Node, bool) {
	var cur rule.Node = root
	for _, i := range p {
		g, ok := cur.(*rule.Group)
		if !ok || g == nil || i < 0 || i >= len(g.Children) {
			return nil, false
		}
		cur = g.Children[i]
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// resolveGroup walks p and requires a group at the end.
func resolveGroup(root *rule.Group, p Path) (*rule.Group, bool) {
	n, ok := resolve(root, p)
	if !ok {
		return nil, false
	}
	g, ok := n.(*rule.Group)
	return g, ok && g != nil
}

// resolveParent returns the group holding the node at p and the node's
// index in it. The root has no parent.
func resolveParent(root *rule.Group, p Path) (*rule.Group, int, bool) {
	if len(p) == 0 {
		return nil, 0, false
	}
	parent, ok := resolveGroup(root, p[:len(p)-1])
	if !ok {
		return nil, 0, false
	}
	idx := p[len(p)-1]
	if idx < 0 || idx >= len(parent.Children) {
		return nil, 0, false
	}
	return parent, idx, true
}
