package mdast

// WalkFunc is called for each visited node. Return a non-nil error to stop
// the walk.
type WalkFunc func(n *Node) error

// Walk visits root and its descendants in pre-order.
func Walk(root *Node, fn WalkFunc) error {
	return WalkWithContext(root, fn, nil)
}

// WalkWithContext visits root and its descendants, calling enter before a
// node's children and leave after them. Either callback may be nil. The
// first error stops the walk and is returned.
func WalkWithContext(root *Node, enter, leave WalkFunc) error {
	if root == nil {
		return nil
	}
	if enter != nil {
		if err := enter(root); err != nil {
			return err
		}
	}
	for _, child := range root.Children {
		if err := WalkWithContext(child, enter, leave); err != nil {
			return err
		}
	}
	if leave != nil {
		return leave(root)
	}
	return nil
}

// WalkDepthFunc is called with each node and its depth below the walk root.
type WalkDepthFunc func(n *Node, depth int) error

// WalkDepth performs a pre-order traversal that also reports node depth.
func WalkDepth(root *Node, fn WalkDepthFunc) error {
	depth := -1
	return WalkWithContext(root,
		func(n *Node) error {
			depth++
			return fn(n, depth)
		},
		func(*Node) error {
			depth--
			return nil
		})
}

// FindAll returns the nodes matching predicate in pre-order.
func FindAll(root *Node, predicate func(n *Node) bool) []*Node {
	var found []*Node
	//nolint:errcheck // the callback never fails
	Walk(root, func(n *Node) error {
		if predicate(n) {
			found = append(found, n)
		}
		return nil
	})
	return found
}

// FindByKind returns all nodes of the given kind in pre-order.
func FindByKind(root *Node, kind NodeKind) []*Node {
	return FindAll(root, func(n *Node) bool {
		return n.Kind == kind
	})
}
