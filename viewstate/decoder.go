// Package viewstate decodes a complete NRBF byte stream — typically the
// payload carried by an ASP.NET __VIEWSTATE field — into a rendered
// object graph, recursing into any embedded NRBF blob it finds along
// the way.
package viewstate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/zeroed-tech/viewstate-decoder/graph"
	"github.com/zeroed-tech/viewstate-decoder/internal/nrbf"
	"github.com/zeroed-tech/viewstate-decoder/internal/stream"
)

// State is a phase of the main decode loop.
type State int

const (
	StateAwaitHeader State = iota
	StateStreaming
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateAwaitHeader:
		return "AwaitHeader"
	case StateStreaming:
		return "Streaming"
	case StateEnded:
		return "Ended"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// maxNestedDepth bounds recursive blob probing; a producer-supplied
// stream of genuinely unbounded nesting would otherwise exhaust the
// Go stack rather than return an error.
const maxNestedDepth = 16

// Decoder turns raw bytes into a Document. The zero value is not usable;
// construct one with NewDecoder.
type Decoder struct {
	logger *zap.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger attaches a zap logger for Debug-level parse tracing. The
// decoder defaults to zap.NewNop(), so logging is purely diagnostic and
// never changes parse semantics.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Decoder) { d.logger = logger }
}

// NewDecoder builds a Decoder with the given options applied.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses data as a complete NRBF stream and returns its rendered
// object graph, along with any nested documents discovered along the
// way.
func (d *Decoder) Decode(data []byte) (*Document, error) {
	return d.decode(data, 0)
}

func (d *Decoder) decode(data []byte, depth int) (*Document, error) {
	c := stream.NewCursor(data)
	registry := nrbf.NewClassLayoutRegistry()
	dispatcher := nrbf.NewDispatcher(registry)
	builder := graph.NewBuilder()

	state := StateAwaitHeader
	var nested []*Document

	for state != StateEnded {
		if c.AtEnd() {
			if state == StateAwaitHeader {
				return nil, wrapParseError(c, "stream is empty", nrbf.ErrMissingHeader)
			}
			break
		}

		rec, err := dispatcher.Next(c)
		if err != nil {
			return nil, wrapParseError(c, "record dispatch failed", err)
		}

		d.logger.Debug("dispatched record",
			zap.String("type", fmt.Sprintf("%T", rec)),
			zap.Uint64("offset", c.Position()),
			zap.String("state", state.String()))

		if state == StateAwaitHeader {
			header, ok := rec.(*nrbf.SerializationHeaderRecord)
			if !ok {
				return nil, wrapParseError(c, "first record is not a SerializationHeader", nrbf.ErrMissingHeader)
			}
			builder.HandleHeader(header)
			state = StateStreaming
			continue
		}

		switch r := rec.(type) {
		case *nrbf.MessageEndRecord:
			state = StateEnded

		case *nrbf.BinaryLibraryRecord:
			if err := builder.HandleLibrary(r); err != nil {
				return nil, wrapParseError(c, "library registration failed", err)
			}

		default:
			if _, err := builder.HandleTopLevel(rec); err != nil {
				return nil, wrapParseError(c, "graph assembly failed", err)
			}
			if blob, ok := rec.(*nrbf.ArraySinglePrimitiveRecord); ok {
				if child := d.probeNestedBlob(blob, depth); child != nil {
					nested = append(nested, child)
				}
			}
		}
	}

	return &Document{
		Root:          builder.Root,
		RootID:        builder.RootID(),
		Libraries:     builder.Libraries(),
		SystemClasses: builder.SystemClasses(),
		Nested:        nested,
	}, nil
}

func wrapParseError(c *stream.Cursor, msg string, err error) error {
	return nrbf.WrapParseError(c.Position(), msg, err)
}
