package duration

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/govalues/decimal"
)

// snapshotEncMode encodes Duration snapshots deterministically.
var snapshotEncMode cbor.EncMode

var snapshotDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	snapshotEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create duration CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	snapshotDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create duration CBOR decoder mode: %v", err))
	}
}

type snapshot struct {
	Elapsed int64          `cbor:"1,keyasint"`
	Parts   []snapshotPart `cbor:"2,keyasint,omitempty"`
}

type snapshotPart struct {
	Unit      uint8  `cbor:"1,keyasint"`
	Magnitude string `cbor:"2,keyasint"`
}

// MarshalCBOR stores the elapsed span and every part exactly, so a decoded
// value is identical to the original, parts order included.
func (d Duration) MarshalCBOR() ([]byte, error) {
	s := snapshot{Elapsed: int64(d.elapsed)}
	for _, p := range d.parts {
		s.Parts = append(s.Parts, snapshotPart{Unit: uint8(p.Unit), Magnitude: p.Magnitude.String()})
	}
	return snapshotEncMode.Marshal(s)
}

func (d *Duration) UnmarshalCBOR(data []byte) error {
	var s snapshot
	if err := snapshotDecMode.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode duration snapshot: %w", err)
	}
	parts := make([]Part, 0, len(s.Parts))
	for _, sp := range s.Parts {
		u := Unit(sp.Unit)
		if !u.Valid() {
			return fmt.Errorf("decode duration snapshot: unknown unit %d", sp.Unit)
		}
		v, err := decimal.Parse(sp.Magnitude)
		if err != nil {
			return fmt.Errorf("decode duration snapshot: %s magnitude: %w", u, err)
		}
		parts = append(parts, Part{Unit: u, Magnitude: v})
	}
	*d = New(time.Duration(s.Elapsed), parts...)
	return nil
}

// MarshalJSON writes the elapsed span as whole seconds, truncated toward zero.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(d.Seconds().Trunc(0).String()), nil
}

// UnmarshalJSON reads a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	v, err := decimal.Parse(string(data))
	if err != nil {
		return fmt.Errorf("duration: want a number of seconds, got %s", data)
	}
	*d = FromSeconds(v)
	return nil
}

// MarshalYAML writes the shortest ISO 8601 form.
func (d Duration) MarshalYAML() (any, error) {
	return d.ISO8601(), nil
}
