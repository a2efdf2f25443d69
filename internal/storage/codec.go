package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// BodyRecord is the persisted form of a body.
type BodyRecord struct {
	Mass     float64    `json:"mass" yaml:"mass"`
	Radius   float64    `json:"radius" yaml:"radius"`
	Position [2]float64 `json:"position" yaml:"position,flow"`
	Velocity [2]float64 `json:"velocity" yaml:"velocity,flow"`
	Tag      string     `json:"tag,omitempty" yaml:"tag,omitempty"`
}

func ToRecords(bs []dynamo.Body) []BodyRecord {
	out := make([]BodyRecord, len(bs))
	for i, b := range bs {
		out[i] = BodyRecord{
			Mass:     b.Mass,
			Radius:   b.Radius,
			Position: [2]float64{b.Position.X, b.Position.Y},
			Velocity: [2]float64{b.Velocity.X, b.Velocity.Y},
			Tag:      b.Tag,
		}
	}
	return out
}

// FromRecords converts and validates records. A successful result is
// non-nil even when rs is empty.
func FromRecords(rs []BodyRecord) ([]dynamo.Body, error) {
	out := make([]dynamo.Body, len(rs))
	for i, r := range rs {
		out[i] = dynamo.Body{
			Mass:     r.Mass,
			Radius:   r.Radius,
			Position: dynamo.V2(r.Position[0], r.Position[1]),
			Velocity: dynamo.V2(r.Velocity[0], r.Velocity[1]),
			Tag:      r.Tag,
		}
		if err := dynamo.ValidateBody(i, out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// checkTags rejects tags that are not valid UTF-8. The JSON encoder would
// otherwise replace the bad bytes with U+FFFD and the tag would not
// survive a round trip.
func checkTags(bs []dynamo.Body) error {
	for i := range bs {
		if !utf8.ValidString(bs[i].Tag) {
			return dynamo.ValidateBody(i, bs[i])
		}
	}
	return nil
}

func MarshalBodies(bs []dynamo.Body) ([]byte, error) {
	if err := checkTags(bs); err != nil {
		return nil, err
	}
	return json.Marshal(ToRecords(bs))
}

func UnmarshalBodies(data []byte) ([]dynamo.Body, error) {
	var rs []BodyRecord
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decode bodies: %w", err)
	}
	return FromRecords(rs)
}

// EncodeBodies writes bodies as an indented JSON array.
func EncodeBodies(w io.Writer, bs []dynamo.Body) error {
	if err := checkTags(bs); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToRecords(bs))
}

func DecodeBodies(r io.Reader) ([]dynamo.Body, error) {
	var rs []BodyRecord
	if err := json.NewDecoder(r).Decode(&rs); err != nil {
		return nil, fmt.Errorf("decode bodies: %w", err)
	}
	return FromRecords(rs)
}

func EncodeYAML(bs []dynamo.Body) ([]byte, error) {
	if err := checkTags(bs); err != nil {
		return nil, err
	}
	return yaml.Marshal(ToRecords(bs))
}

func DecodeYAML(data []byte) ([]dynamo.Body, error) {
	var rs []BodyRecord
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decode bodies: %w", err)
	}
	return FromRecords(rs)
}

// EncodeFragment renders bodies as a URL fragment: '#' followed by the
// escaped JSON array.
func EncodeFragment(bs []dynamo.Body) (string, error) {
	data, err := MarshalBodies(bs)
	if err != nil {
		return "", err
	}
	return "#" + url.PathEscape(string(data)), nil
}

// DecodeFragment accepts a fragment with or without the leading '#'.
func DecodeFragment(frag string) ([]dynamo.Body, error) {
	raw, err := url.PathUnescape(strings.TrimPrefix(frag, "#"))
	if err != nil {
		return nil, fmt.Errorf("decode fragment: %w", err)
	}
	return UnmarshalBodies([]byte(raw))
}
