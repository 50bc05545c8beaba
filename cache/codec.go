package cache

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec converts cache payloads to and from bytes. Both bundled codecs
// round-trip the canonical row shapes exactly (maps of nil-or-string cells,
// sequences of those maps, and small wrapper structs), which is what keeps
// cached and freshly fetched results structurally identical.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON is the default codec. Payloads are human-readable in the store, which
// helps when inspecting entries by hand.
var JSON Codec = jsonCodec{}

// Msgpack encodes payloads with MessagePack. Smaller and faster than JSON for
// wide rows; pick it when nobody needs to read entries off the wire.
var Msgpack Codec = msgpackCodec{}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type msgpackCodec struct{}

func (msgpackCodec) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

func (msgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
