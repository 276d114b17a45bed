package rule

// Walk visits n and its descendants depth-first in document order.
// Nil nodes are skipped.
func Walk(n Node, fn func(Node)) {
	switch node := n.(type) {
	case *Group:
		if node == nil {
			return
		}
		fn(node)
		for _, child := range node.Children {
			Walk(child, fn)
		}
	case *Condition:
		if node == nil {
			return
		}
		fn(node)
	}
}

// ReferencedFields returns every distinct non-empty field name used by a
// Condition under n, in first-seen order.
func ReferencedFields(n Node) []string {
	seen := make(map[string]bool)
	var names []string
	Walk(n, func(node Node) {
		c, ok := node.(*Condition)
		if !ok || c.Field == "" || seen[c.Field] {
			return
		}
		seen[c.Field] = true
		names = append(names, c.Field)
	})
	return names
}

// IsEmpty reports whether n contains no Condition leaf.
func IsEmpty(n Node) bool {
	empty := true
	Walk(n, func(node Node) {
		if _, ok := node.(*Condition); ok {
			empty = false
		}
	})
	return empty
}

// CountConditions returns the number of Condition leaves under n.
func CountConditions(n Node) int {
	count := 0
	Walk(n, func(node Node) {
		if _, ok := node.(*Condition); ok {
			count++
		}
	})
	return count
}
