// Package graph assembles the rooted object tree an NRBF stream describes:
// it resolves forward/backward id references into a single graph, tracks
// which library owns which classes, and renders the finished tree.
package graph

import "github.com/zeroed-tech/viewstate-decoder/internal/nrbf"

// ObjectNode is a vertex in the assembled object graph. A node is
// unresolved when first created as a reference placeholder by nodeFor; it
// becomes resolved once a record with a matching id populates its fields.
type ObjectNode struct {
	ID      int32
	Type    string
	Name    string
	Value   *nrbf.Value
	Members []*ObjectNode

	resolved bool
}

// unresolvedTypeName is the placeholder Type a node carries until a
// record with its id is actually parsed.
const unresolvedTypeName = "Unresolved"

func newUnresolvedNode(id int32) *ObjectNode {
	return &ObjectNode{ID: id, Type: unresolvedTypeName}
}

// IsResolved reports whether a record has populated this node yet.
func (n *ObjectNode) IsResolved() bool {
	return n.resolved
}
