package intercept

import (
	"bytes"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Props is the property bag attached to a Method. It is stored as a JSON
// object and addressed with gjson/sjson paths ("name", "tags.0",
// "meta.owner"). The zero value is an empty bag.
//
// Installing a wrapper copies the bag onto the wrapper; restoring the
// original copies it back, so properties read through the member are the
// same before interception, during it, and after the last hook is removed.
type Props struct {
	raw []byte
}

// NewProps builds a bag from the given key/value pairs.
func NewProps(kv map[string]any) (Props, error) {
	var p Props
	for k, v := range kv {
		if err := p.Set(k, v); err != nil {
			return Props{}, err
		}
	}
	return p, nil
}

// Get returns the value at path.
func (p Props) Get(path string) gjson.Result {
	if len(p.raw) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(p.raw, path)
}

// Has reports whether path exists.
func (p Props) Has(path string) bool {
	return p.Get(path).Exists()
}

// Set stores v at path, creating intermediate objects as needed.
func (p *Props) Set(path string, v any) error {
	raw, err := sjson.SetBytes(p.bytes(), path, v)
	if err != nil {
		return err
	}
	p.raw = raw
	return nil
}

// Delete removes path. Deleting a missing path is not an error.
func (p *Props) Delete(path string) error {
	if len(p.raw) == 0 {
		return nil
	}
	raw, err := sjson.DeleteBytes(p.raw, path)
	if err != nil {
		return err
	}
	p.raw = raw
	return nil
}

// Clone returns an independent copy.
func (p Props) Clone() Props {
	if len(p.raw) == 0 {
		return Props{}
	}
	return Props{raw: bytes.Clone(p.raw)}
}

// Raw returns the JSON encoding of the bag.
func (p Props) Raw() []byte {
	return p.bytes()
}

// Equal reports whether both bags hold the same encoding.
func (p Props) Equal(o Props) bool {
	return bytes.Equal(p.bytes(), o.bytes())
}

func (p Props) bytes() []byte {
	if len(p.raw) == 0 {
		return []byte("{}")
	}
	return p.raw
}
