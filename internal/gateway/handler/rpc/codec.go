package rpc

import (
	"encoding/json"

	"schemefinder/internal/util/jsonutil"
)

// jsonCodec replaces connect's protojson codec so plain Go structs can travel over the
// connect protocol.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return jsonutil.MarshalNoEscape(v) }

func (jsonCodec) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }
