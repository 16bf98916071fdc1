package graph

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/zeroed-tech/viewstate-decoder/internal/nrbf"
)

// renderNode is the JSON wire shape for an ObjectNode: field names and
// omission rules come straight from the node's own (possibly zero)
// values, independent of the in-memory graph's bookkeeping fields.
type renderNode struct {
	Id      int32        `json:"Id"`
	Ref     *int32       `json:"$ref,omitempty"`
	Type    string       `json:"Type,omitempty"`
	Name    string       `json:"Name,omitempty"`
	Value   any          `json:"Value,omitempty"`
	Members []renderNode `json:"Members,omitempty"`
}

// visitSet tracks node ids already emitted once during a single render,
// so a true reference cycle or a repeated MemberReference target
// degrades to a `$ref` marker instead of recursing forever. Only
// non-negative ids are tracked: negative ids are the sentinel assigned to
// inline, non-referenceable values (primitives, nulls, ClassTypeInfo,
// array elements) which are never shared and so can never form a cycle —
// treating them as "seen" on first render would wrongly collapse every
// sibling with the same sentinel.
type visitSet map[int32]bool

func (n *ObjectNode) toRenderNode(seen visitSet, maxDepth, depth int) renderNode {
	if (n.ID >= 0 && seen[n.ID]) || (maxDepth > 0 && depth > maxDepth) {
		id := n.ID
		return renderNode{Id: n.ID, Ref: &id}
	}
	if n.ID >= 0 {
		seen[n.ID] = true
	}

	out := renderNode{
		Id:   n.ID,
		Type: n.Type,
		Name: n.Name,
	}
	if n.Value != nil {
		out.Value = valueToAny(*n.Value)
	}
	if len(n.Members) > 0 {
		out.Members = make([]renderNode, len(n.Members))
		for i, m := range n.Members {
			out.Members[i] = m.toRenderNode(seen, maxDepth, depth+1)
		}
	}
	return out
}

// valueToAny converts a decoded primitive into the representation its
// JSON/text rendering should use. Bytes render as base64; Opaque values
// (raw DateTime payloads, never interpreted per the format's own rules)
// render as hex.
func valueToAny(v nrbf.Value) any {
	switch v.Kind {
	case nrbf.ValueNull:
		return nil
	case nrbf.ValueBool:
		return v.Bool
	case nrbf.ValueInt8, nrbf.ValueInt16, nrbf.ValueInt32, nrbf.ValueInt64:
		return v.Int
	case nrbf.ValueUint8, nrbf.ValueUint16, nrbf.ValueUint32, nrbf.ValueUint64:
		return v.Uint
	case nrbf.ValueFloat32:
		return v.Float32
	case nrbf.ValueFloat64:
		return v.Float64
	case nrbf.ValueString:
		return v.Str
	case nrbf.ValueBytes:
		return base64.StdEncoding.EncodeToString(v.Bytes)
	case nrbf.ValueOpaque:
		return fmt.Sprintf("%x", v.Bytes)
	default:
		return nil
	}
}

// WriteJSON renders the graph rooted at n as indented JSON. maxDepth <= 0
// means unbounded (still cycle-safe via the visited-id set).
func (n *ObjectNode) WriteJSON(w io.Writer, maxDepth int) error {
	rn := n.toRenderNode(make(visitSet), maxDepth, 0)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rn)
}

// MarshalJSON lets an *ObjectNode embed directly as a field of another
// JSON structure (e.g. a decoded document), using the same Id/Type/Name/
// Value/Members shape and cycle guard as WriteJSON.
func (n *ObjectNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toRenderNode(make(visitSet), 0, 0))
}

// View wraps n so it marshals at a bounded depth: members past maxDepth
// collapse to a `$ref` marker, same as WriteJSON's truncation. maxDepth
// <= 0 means unbounded.
func (n *ObjectNode) View(maxDepth int) json.Marshaler {
	return depthView{node: n, maxDepth: maxDepth}
}

type depthView struct {
	node     *ObjectNode
	maxDepth int
}

func (v depthView) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.node.toRenderNode(make(visitSet), v.maxDepth, 0))
}

// WriteIndented renders the graph as nested, human-readable text: one
// line per node, children indented two spaces deeper than their parent.
func (n *ObjectNode) WriteIndented(w io.Writer, maxDepth int) error {
	return n.writeIndented(w, make(visitSet), maxDepth, 0)
}

func (n *ObjectNode) writeIndented(w io.Writer, seen visitSet, maxDepth, depth int) error {
	prefix := strings.Repeat("  ", depth)

	if (n.ID >= 0 && seen[n.ID]) || (maxDepth > 0 && depth > maxDepth) {
		_, err := fmt.Fprintf(w, "%s$ref(%d)\n", prefix, n.ID)
		return err
	}
	if n.ID >= 0 {
		seen[n.ID] = true
	}

	line := fmt.Sprintf("%s#%d", prefix, n.ID)
	if n.Type != "" {
		line += " " + n.Type
	}
	if n.Name != "" {
		line += " " + n.Name
	}
	if n.Value != nil {
		line += fmt.Sprintf(" = %v", valueToAny(*n.Value))
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, m := range n.Members {
		if err := m.writeIndented(w, seen, maxDepth, depth+1); err != nil {
			return err
		}
	}
	return nil
}
