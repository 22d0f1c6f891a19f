package storage

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/opencontainers/go-digest"

	"github.com/heavydata/dms"
	"github.com/heavydata/dms/quantity"
	"github.com/heavydata/dms/schema"
)

// encodeValue validates a client-provided non-link value and produces its
// stored form. Quantities are converted to schema units; bytes payloads move
// to the blob store.
func (c *collection) encodeValue(ctx context.Context, collName, fieldName string, field schema.Field, value interface{}) (interface{}, error) {
	switch field.Dtype {
	case quantity.String:
		s, ok := value.(string)
		if !ok {
			return nil, quantity.ErrTypeMismatch{Value: value, Dtype: field.Dtype}
		}
		return s, nil

	case quantity.Bytes:
		s, ok := value.(string)
		if !ok {
			return nil, quantity.ErrTypeMismatch{Value: value, Dtype: field.Dtype}
		}
		content, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: invalid base64 payload: %v", collName, fieldName, err)
		}
		dgst, err := c.database.registry.blobStore.Put(ctx, content)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"blob": dgst.String(),
			"size": len(content),
		}, nil

	case quantity.Object:
		return value, nil

	default:
		raw := value
		unit := ""
		if m, ok := value.(map[string]interface{}); ok {
			for key := range m {
				if key != "value" && key != "unit" {
					return nil, fmt.Errorf("%s.%s: quantity has extra keyword %q (only value, unit allowed)", collName, fieldName, key)
				}
			}
			var present bool
			raw, present = m["value"]
			if !present {
				return nil, fmt.Errorf("%s.%s: quantity is missing the value keyword", collName, fieldName)
			}
			if u, ok := m["unit"].(string); ok {
				unit = u
			}
		}

		converted, err := quantity.Validate(field.Dtype, field.Shape, field.Unit, raw, unit)
		if err != nil {
			return nil, err
		}
		return quantity.Map(converted, field.Unit), nil
	}
}

// renderValue produces the client-facing form of a stored non-link value.
// Bytes references are inlined from the blob store as base64.
func (c *collection) renderValue(ctx context.Context, field schema.Field, stored interface{}) (interface{}, error) {
	if field.Dtype != quantity.Bytes {
		return stored, nil
	}

	m, ok := stored.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("corrupt bytes field: %v", stored)
	}
	ds, ok := m["blob"].(string)
	if !ok {
		return nil, fmt.Errorf("corrupt bytes field: missing blob reference")
	}
	dgst, err := digest.Parse(ds)
	if err != nil {
		return nil, err
	}

	content, err := c.database.registry.blobStore.Get(ctx, dgst)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.EncodeToString(content), nil
}

// rawLinkValue validates a raw link mutation: an id string for scalar links,
// an array of id strings for sequence links. Inline documents and relative
// references are creation-only.
func rawLinkValue(collName, fieldName string, field schema.Field, value interface{}) (interface{}, error) {
	parse := func(v interface{}) (string, error) {
		s, ok := v.(string)
		if !ok {
			return "", dms.ErrLinkInvalid{
				Collection: collName,
				Field:      fieldName,
				Reason:     fmt.Errorf("raw link values must be object ids"),
			}
		}
		id, err := dms.ParseObjectID(s)
		if err != nil {
			return "", dms.ErrLinkInvalid{Collection: collName, Field: fieldName, Reason: err}
		}
		return id.String(), nil
	}

	if field.Sequence() {
		seq, ok := value.([]interface{})
		if !ok {
			return nil, dms.ErrLinkInvalid{
				Collection: collName,
				Field:      fieldName,
				Reason:     fmt.Errorf("expects a sequence of ids"),
			}
		}
		out := make([]interface{}, len(seq))
		for i, el := range seq {
			id, err := parse(el)
			if err != nil {
				return nil, err
			}
			out[i] = id
		}
		return out, nil
	}

	id, err := parse(value)
	if err != nil {
		return nil, err
	}
	return id, nil
}
