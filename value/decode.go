package value

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// ErrDuplicateKey is returned by Decode when an object has a repeated key.
// JTD instances and schemas alike must not carry them (spec §4.1): the
// parser is an out-of-scope collaborator, but this package is the one seam
// where callers who only have JSON text, rather than an already-parsed
// Value, can get one — so it is also the one place duplicate-key rejection
// has to live.
var ErrDuplicateKey = fmt.Errorf("value: duplicate object key")

// Decode reads a single JSON document from r and returns it as a Value.
// It uses github.com/goccy/go-json for tokenization, the same codec
// kaptinlin/jsonschema uses ahead of its own schema/validate logic.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Null, err
	}
	return v, nil
}

// Parse is a convenience wrapper over Decode for callers holding raw bytes.
func Parse(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Null, err
		}
		return NewNumber(f), nil
	case string:
		return NewString(t), nil
	case json.Delim:
		switch t {
		case '[':
			var elems []Value
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return Null, err
				}
				elems = append(elems, elem)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Null, err
			}
			return NewArray(elems), nil
		case '{':
			obj := NewOrderedObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Null, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Null, fmt.Errorf("value: object key is not a string")
				}
				if obj.Has(key) {
					return Null, ErrDuplicateKey
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Null, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Null, err
			}
			return NewObject(obj), nil
		}
	}
	return Null, fmt.Errorf("value: unexpected token %v", tok)
}
