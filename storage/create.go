package storage

import (
	"context"
	"fmt"

	"github.com/heavydata/dms"
	"github.com/heavydata/dms/dotpath"
)

// Create validates doc against the schema and persists it, together with any
// inline documents it nests in link fields. Creation runs in phases: the
// request is first built into a node tree, ids are assigned, relative
// references are resolved against the tree, and only then is anything
// written. A validation failure therefore leaves storage untouched.
func (c *collection) Create(ctx context.Context, doc dms.Document) (dms.ObjectID, error) {
	root, err := c.buildNode(ctx, c.name, map[string]interface{}(doc), nil)
	if err != nil {
		return "", err
	}

	nodes := collectNodes(root, nil)
	for _, node := range nodes {
		node.id = dms.NewObjectID()
	}

	for _, node := range nodes {
		for _, pending := range node.pending {
			id, err := c.resolveRef(ctx, node, pending.ref)
			if err != nil {
				return "", dms.ErrLinkInvalid{
					Collection: node.collection,
					Field:      pending.field,
					Reason:     err,
				}
			}
			node.setLinkSlot(pending, id)
		}
	}

	// Persist leaves first so a half-written request never has a parent
	// pointing at missing children.
	for i := len(nodes) - 1; i >= 0; i-- {
		node := nodes[i]
		stored := &storedDocument{
			Fields:   node.materializedFields(),
			Tracking: node.tracking,
		}
		if err := c.database.registry.putStoredDocument(ctx, c.database.name, node.collection, node.id, stored); err != nil {
			return "", err
		}
	}

	return root.id, nil
}

// pendingRef marks a link slot created from a relative reference, to be
// resolved once the whole request tree is built.
type pendingRef struct {
	field string
	index int // -1 for scalar slots
	ref   dotpath.Ref
}

// slotKey names a tracking record: the bare field name for scalar slots,
// "field[index]" for sequence slots.
func slotKey(field string, index int) string {
	if index < 0 {
		return field
	}
	return fmt.Sprintf("%s[%d]", field, index)
}

// createNode is one object of an in-flight creation request. Link slots in
// fields hold either an id string, a *createNode for inline children, or nil
// for slots awaiting reference resolution.
type createNode struct {
	collection string
	fields     map[string]interface{}
	tracking   map[string]string
	parent     *createNode
	children   []*createNode
	pending    []pendingRef
	id         dms.ObjectID
}

// buildNode validates one request object and recursively builds inline
// children.
func (c *collection) buildNode(ctx context.Context, collName string, doc map[string]interface{}, parent *createNode) (*createNode, error) {
	node := &createNode{
		collection: collName,
		fields:     map[string]interface{}{},
		parent:     parent,
	}

	for name, value := range doc {
		field, ok := c.schema.Field(collName, name)
		if !ok {
			return nil, dms.ErrAttributeUnknown{Collection: collName, Attribute: name}
		}

		if !field.IsLink() {
			stored, err := c.encodeValue(ctx, collName, name, field, value)
			if err != nil {
				return nil, err
			}
			node.fields[name] = stored
			continue
		}

		if field.Sequence() {
			seq, ok := value.([]interface{})
			if !ok {
				return nil, dms.ErrLinkInvalid{
					Collection: collName,
					Field:      name,
					Reason:     fmt.Errorf("expects a sequence of links"),
				}
			}
			slots := make([]interface{}, len(seq))
			for i, el := range seq {
				slot, err := c.buildLinkSlot(ctx, node, field.Link, name, i, el)
				if err != nil {
					return nil, err
				}
				slots[i] = slot
			}
			node.fields[name] = slots
			continue
		}

		slot, err := c.buildLinkSlot(ctx, node, field.Link, name, -1, value)
		if err != nil {
			return nil, err
		}
		node.fields[name] = slot
	}

	return node, nil
}

// buildLinkSlot interprets one link value of a creation request: a raw id, a
// relative reference, or an inline document for the target collection.
func (c *collection) buildLinkSlot(ctx context.Context, node *createNode, targetColl, fieldName string, index int, value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		if dotpath.IsRef(v) {
			ref, err := dotpath.ParseRef(v)
			if err != nil {
				return nil, dms.ErrLinkInvalid{Collection: node.collection, Field: fieldName, Reason: err}
			}
			node.pending = append(node.pending, pendingRef{field: fieldName, index: index, ref: ref})
			if node.tracking == nil {
				node.tracking = map[string]string{}
			}
			node.tracking[slotKey(fieldName, index)] = v
			return nil, nil // filled in after resolution
		}

		id, err := dms.ParseObjectID(v)
		if err != nil {
			return nil, dms.ErrLinkInvalid{Collection: node.collection, Field: fieldName, Reason: err}
		}
		return id.String(), nil

	case map[string]interface{}:
		child, err := c.buildNode(ctx, targetColl, v, node)
		if err != nil {
			return nil, err
		}
		node.children = append(node.children, child)
		return child, nil

	default:
		return nil, dms.ErrLinkInvalid{
			Collection: node.collection,
			Field:      fieldName,
			Reason:     fmt.Errorf("must be an object id, an inline document or a relative reference"),
		}
	}
}

// resolveRef follows a relative reference from its owning node: up through
// the request tree, then down along the dotted path. Descent passes through
// inline children when possible and falls back to stored documents when a
// traversed slot already holds a persisted id.
func (c *collection) resolveRef(ctx context.Context, owner *createNode, ref dotpath.Ref) (string, error) {
	node := owner
	for i := 0; i < ref.Up; i++ {
		node = node.parent
		if node == nil {
			return "", fmt.Errorf("reference %q points above the request root", ref.String())
		}
	}

	var target linkTarget // set when descent leaves the request tree
	inTree := true

	for _, seg := range ref.Path {
		var coll string
		if inTree {
			coll = node.collection
		} else {
			coll = target.coll
		}

		field, ok := c.schema.Field(coll, seg.Stem)
		if !ok {
			return "", dms.ErrAttributeUnknown{Collection: coll, Attribute: seg.Stem}
		}
		if !field.IsLink() {
			return "", fmt.Errorf("reference %q traverses non-link field %s.%s", ref.String(), coll, seg.Stem)
		}
		if seg.Indexed() != field.Sequence() {
			if field.Sequence() {
				return "", fmt.Errorf("%s.%s is a sequence, but was not indexed", coll, seg.Stem)
			}
			return "", fmt.Errorf("%s.%s is scalar, but was indexed with %d", coll, seg.Stem, seg.Index)
		}

		var slot interface{}
		if inTree {
			value, ok := node.fields[seg.Stem]
			if !ok {
				return "", dms.ErrAttributeUnknown{Collection: coll, Attribute: seg.Stem}
			}
			if seg.Indexed() {
				seq, ok := value.([]interface{})
				if !ok || seg.Index >= len(seq) {
					return "", fmt.Errorf("index %d out of range for %s.%s", seg.Index, coll, seg.Stem)
				}
				slot = seq[seg.Index]
			} else {
				slot = value
			}
		} else {
			doc, err := c.database.registry.getStoredDocument(ctx, c.database.name, target.coll, target.id)
			if err != nil {
				return "", err
			}
			value, ok := doc.Fields[seg.Stem]
			if !ok {
				return "", dms.ErrAttributeUnknown{Collection: coll, Attribute: seg.Stem}
			}
			if seg.Indexed() {
				seq, ok := value.([]interface{})
				if !ok || seg.Index >= len(seq) {
					return "", fmt.Errorf("index %d out of range for %s.%s", seg.Index, coll, seg.Stem)
				}
				slot = seq[seg.Index]
			} else {
				slot = value
			}
		}

		switch s := slot.(type) {
		case *createNode:
			node = s
			inTree = true
		case string:
			id, err := dms.ParseObjectID(s)
			if err != nil {
				return "", err
			}
			target = linkTarget{coll: field.Link, id: id}
			inTree = false
		case nil:
			return "", fmt.Errorf("reference %q traverses another unresolved reference", ref.String())
		default:
			return "", fmt.Errorf("reference %q traverses a malformed link slot", ref.String())
		}
	}

	if inTree {
		return node.id.String(), nil
	}
	return target.id.String(), nil
}

// setLinkSlot fills a resolved reference back into its slot.
func (n *createNode) setLinkSlot(pending pendingRef, id string) {
	if pending.index < 0 {
		n.fields[pending.field] = id
		return
	}
	n.fields[pending.field].([]interface{})[pending.index] = id
}

// materializedFields replaces inline child nodes with their assigned ids,
// producing the persistable field map.
func (n *createNode) materializedFields() map[string]interface{} {
	out := make(map[string]interface{}, len(n.fields))
	for name, value := range n.fields {
		switch v := value.(type) {
		case *createNode:
			out[name] = v.id.String()
		case []interface{}:
			seq := make([]interface{}, len(v))
			for i, el := range v {
				if child, ok := el.(*createNode); ok {
					seq[i] = child.id.String()
				} else {
					seq[i] = el
				}
			}
			out[name] = seq
		default:
			out[name] = value
		}
	}
	return out
}

// collectNodes appends the tree rooted at node to acc in pre-order.
func collectNodes(node *createNode, acc []*createNode) []*createNode {
	acc = append(acc, node)
	for _, child := range node.children {
		acc = collectNodes(child, acc)
	}
	return acc
}
