package session

import "github.com/roach88/fetchqb/internal/rule"

// mutate runs fn under the lock and emits when fn succeeds.
func (s *Session) mutate(fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		s.logger.Debug().Err(err).Msg("edit rejected")
		return err
	}
	change := s.serializeLocked()
	s.mu.Unlock()

	s.emit(change)
	return nil
}

// AddCondition appends a copy of cond to the group at parent and returns
// the new condition's path.
func (s *Session) AddCondition(parent Path, cond *rule.Condition) (Path, error) {
	var added Path
	err := s.mutate(func() error {
		if cond == nil {
			return &PathError{Op: "add condition", Path: parent, Reason: "nil condition"}
		}
		g, ok := resolveGroup(s.tree, parent)
		if !ok {
			return &PathError{Op: "add condition", Path: parent, Reason: "not a group"}
		}
		g.Children = append(g.Children, rule.Clone(cond))
		added = parent.Child(len(g.Children) - 1)
		return nil
	})
	return added, err
}

// AddGroup appends an empty group to the group at parent and returns its
// path.
func (s *Session) AddGroup(parent Path, conj rule.Conjunction) (Path, error) {
	var added Path
	err := s.mutate(func() error {
		g, ok := resolveGroup(s.tree, parent)
		if !ok {
			return &PathError{Op: "add group", Path: parent, Reason: "not a group"}
		}
		g.Children = append(g.Children, rule.NewGroup(conj))
		added = parent.Child(len(g.Children) - 1)
		return nil
	})
	return added, err
}

// Remove deletes the node at path. The root cannot be removed.
func (s *Session) Remove(path Path) error {
	return s.mutate(func() error {
		parent, idx, ok := resolveParent(s.tree, path)
		if !ok {
			return &PathError{Op: "remove", Path: path, Reason: "no such node"}
		}
		parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
		return nil
	})
}

// UpdateCondition replaces field, operator and value of the condition at
// path. A nil value is Absent.
func (s *Session) UpdateCondition(path Path, field, operator string, value rule.Value) error {
	return s.mutate(func() error {
		n, ok := resolve(s.tree, path)
		if !ok {
			return &PathError{Op: "update condition", Path: path, Reason: "no such node"}
		}
		c, ok := n.(*rule.Condition)
		if !ok {
			return &PathError{Op: "update condition", Path: path, Reason: "not a condition"}
		}
		updated := rule.Clone(rule.NewCondition(field, operator, value)).(*rule.Condition)
		*c = *updated
		return nil
	})
}

// SetConjunction changes the conjunction of the group at path.
func (s *Session) SetConjunction(path Path, conj rule.Conjunction) error {
	return s.mutate(func() error {
		g, ok := resolveGroup(s.tree, path)
		if !ok {
			return &PathError{Op: "set conjunction", Path: path, Reason: "not a group"}
		}
		g.Conjunction = conj
		return nil
	})
}

// Move repositions the node at path within its parent group.
func (s *Session) Move(path Path, newIndex int) error {
	return s.mutate(func() error {
		parent, idx, ok := resolveParent(s.tree, path)
		if !ok {
			return &PathError{Op: "move", Path: path, Reason: "no such node"}
		}
		if newIndex < 0 || newIndex >= len(parent.Children) {
			return &PathError{Op: "move", Path: path, Reason: "target index out of range"}
		}
		node := parent.Children[idx]
		rest := append(parent.Children[:idx:idx], parent.Children[idx+1:]...)
		moved := make([]rule.Node, 0, len(parent.Children))
		moved = append(moved, rest[:newIndex]...)
		moved = append(moved, node)
		moved = append(moved, rest[newIndex:]...)
		parent.Children = moved
		return nil
	})
}

// Replace swaps in a whole tree from the rule editor. The session keeps a
// copy; later changes to tree do not affect it.
func (s *Session) Replace(tree *rule.Group) error {
	return s.mutate(func() error {
		if tree == nil {
			return ErrNilTree
		}
		s.tree = rule.Clone(tree).(*rule.Group)
		return nil
	})
}
