package viewstate

import (
	"go.uber.org/zap"

	"github.com/zeroed-tech/viewstate-decoder/internal/nrbf"
)

// nestedBlobMinLength is the size of a bare SerializationHeader record
// (one tag byte plus 4 i32 fields). A complete stream also needs at least
// a MessageEnd tag byte, so only arrays longer than this are probed.
const nestedBlobMinLength = 17

// probeNestedBlob inspects a parsed ArraySinglePrimitive of kind Byte for
// an embedded NRBF stream: length over nestedBlobMinLength and a leading
// zero byte (every SerializationHeader opens with tag 0). A match is
// parsed as a fully independent stream, with its own registry and graph;
// a failed probe is not an error; the bytes stay opaque on the outer
// node.
func (d *Decoder) probeNestedBlob(r *nrbf.ArraySinglePrimitiveRecord, depth int) *Document {
	if r.Kind != nrbf.PrimitiveByte || depth >= maxNestedDepth {
		return nil
	}

	data := r.Bytes()
	if len(data) <= nestedBlobMinLength || data[0] != 0x00 {
		return nil
	}

	doc, err := d.decode(data, depth+1)
	if err != nil {
		d.logger.Debug("nested blob probe failed",
			zap.Int32("objectId", r.Info.ObjectID),
			zap.Error(err))
		return nil
	}

	d.logger.Debug("nested blob decoded",
		zap.Int32("objectId", r.Info.ObjectID),
		zap.Int32("rootId", doc.RootID))
	return doc
}
