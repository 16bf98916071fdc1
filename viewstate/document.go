package viewstate

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zeroed-tech/viewstate-decoder/graph"
)

// Document is the result of decoding one complete NRBF stream: its
// object graph, the libraries and top-level system classes attached
// under ROOT, and any sibling documents recovered from embedded blobs.
//
// Libraries and SystemClasses are query views over nodes already present
// in Root's Members; they are excluded from JSON to keep the rendered
// shape to RootId/Graph/Nested.
type Document struct {
	RootID        int32
	Root          *graph.ObjectNode
	Libraries     []*graph.ObjectNode
	SystemClasses []*graph.ObjectNode
	Nested        []*Document
}

// documentView is the JSON wire shape for a Document, bounded to
// maxDepth: {"RootId", "Graph", "Nested"}.
type documentView struct {
	RootID int32          `json:"RootId"`
	Graph  json.Marshaler `json:"Graph"`
	Nested []documentView `json:"Nested,omitempty"`
}

func (doc *Document) view(maxDepth int) documentView {
	v := documentView{RootID: doc.RootID, Graph: doc.Root.View(maxDepth)}
	if len(doc.Nested) > 0 {
		v.Nested = make([]documentView, len(doc.Nested))
		for i, child := range doc.Nested {
			v.Nested[i] = child.view(maxDepth)
		}
	}
	return v
}

// WriteJSON prints the document as indented JSON: {"RootId", "Graph",
// "Nested"}, with nested documents recursing in the same shape. maxDepth
// <= 0 means unbounded, still cycle-safe per node.
func (doc *Document) WriteJSON(w io.Writer, maxDepth int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc.view(maxDepth))
}

// WriteIndented prints the document's graph as nested text, followed by
// each nested document's graph under its own "nested blob" heading.
func (doc *Document) WriteIndented(w io.Writer, maxDepth int) error {
	if _, err := fmt.Fprintf(w, "RootId: %d\n", doc.RootID); err != nil {
		return err
	}
	if err := doc.Root.WriteIndented(w, maxDepth); err != nil {
		return err
	}
	for i, child := range doc.Nested {
		if _, err := fmt.Fprintf(w, "\n--- nested blob %d ---\n", i); err != nil {
			return err
		}
		if err := child.WriteIndented(w, maxDepth); err != nil {
			return err
		}
	}
	return nil
}
