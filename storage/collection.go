package storage

import (
	"context"
	"fmt"

	"github.com/heavydata/dms"
	"github.com/heavydata/dms/dotpath"
	"github.com/heavydata/dms/schema"
	storagedriver "github.com/heavydata/dms/storage/driver"
)

type collection struct {
	database *database
	schema   schema.Schema
	name     string
}

var _ dms.Collection = &collection{}

func (c *collection) Name() string {
	return c.name
}

// Get renders the identified document according to opts. A path option
// descends through link hops first and must terminate on an object.
func (c *collection) Get(ctx context.Context, id dms.ObjectID, opts dms.GetOptions) (dms.Document, error) {
	collName, targetID := c.name, id

	if opts.Path != "" {
		p, err := dotpath.Parse(opts.Path)
		if err != nil {
			return nil, dms.ErrPathInvalid{Path: opts.Path, Reason: err}
		}

		head, tail, err := c.resolvePathHead(ctx, linkTarget{coll: c.name, id: id}, p)
		if err != nil {
			return nil, err
		}
		if len(tail) != 0 {
			return nil, dms.ErrPathInvalid{
				Path:   opts.Path,
				Reason: fmt.Errorf("does not lead to an object (tail %q)", tail.String()),
			}
		}
		collName, targetID = head.coll, head.id
	}

	return c.render(ctx, collName, targetID, 0, opts)
}

// render produces the client-facing form of a stored document, resolving link
// fields up to the level budget.
func (c *collection) render(ctx context.Context, collName string, id dms.ObjectID, level int, opts dms.GetOptions) (dms.Document, error) {
	doc, err := c.database.registry.getStoredDocument(ctx, c.database.name, collName, id)
	if err != nil {
		return nil, err
	}

	ret := dms.Document{}
	for name, value := range doc.Fields {
		field, ok := c.schema.Field(collName, name)
		if !ok {
			return nil, dms.ErrAttributeUnknown{Collection: collName, Attribute: name}
		}

		if !field.IsLink() {
			rendered, err := c.renderValue(ctx, field, value)
			if err != nil {
				return nil, err
			}
			ret[name] = rendered
			continue
		}

		// Link fields are omitted entirely once the level budget is
		// exhausted; omission wins over tracking.
		if opts.MaxLevel >= 0 && level == opts.MaxLevel {
			continue
		}

		if field.Sequence() {
			seq, ok := value.([]interface{})
			if !ok {
				return nil, dms.ErrLinkInvalid{
					Collection: collName,
					Field:      name,
					Reason:     fmt.Errorf("stored value is not a sequence"),
				}
			}

			out := make([]interface{}, len(seq))
			for i, el := range seq {
				if opts.Tracking {
					if ref, ok := doc.Tracking[fmt.Sprintf("%s[%d]", name, i)]; ok {
						out[i] = ref
						continue
					}
				}
				linkID, err := storedLinkID(collName, name, el)
				if err != nil {
					return nil, err
				}
				sub, err := c.render(ctx, field.Link, linkID, level+1, opts)
				if err != nil {
					return nil, err
				}
				out[i] = map[string]interface{}(sub)
			}
			ret[name] = out
			continue
		}

		if opts.Tracking {
			if ref, ok := doc.Tracking[name]; ok {
				ret[name] = ref
				continue
			}
		}

		linkID, err := storedLinkID(collName, name, value)
		if err != nil {
			return nil, err
		}
		sub, err := c.render(ctx, field.Link, linkID, level+1, opts)
		if err != nil {
			return nil, err
		}
		ret[name] = map[string]interface{}(sub)
	}

	if opts.Meta {
		ret["_meta"] = map[string]interface{}{
			"id":   id.String(),
			"type": collName,
		}
	}

	return ret, nil
}

// linkTarget addresses a stored object during path descent.
type linkTarget struct {
	coll string
	id   dms.ObjectID
}

// resolvePathHead descends along path as far as link hops allow and returns
// the object it lands on along with the unconsumed non-link tail.
func (c *collection) resolvePathHead(ctx context.Context, target linkTarget, path dotpath.Path) (linkTarget, dotpath.Path, error) {
	if len(path) == 0 {
		return target, nil, nil
	}

	seg := path[0]
	field, ok := c.schema.Field(target.coll, seg.Stem)
	if !ok {
		return linkTarget{}, nil, dms.ErrAttributeUnknown{Collection: target.coll, Attribute: seg.Stem}
	}

	if !field.IsLink() {
		return target, path, nil
	}

	doc, err := c.database.registry.getStoredDocument(ctx, c.database.name, target.coll, target.id)
	if err != nil {
		return linkTarget{}, nil, err
	}

	value, ok := doc.Fields[seg.Stem]
	if !ok {
		return linkTarget{}, nil, dms.ErrAttributeUnknown{Collection: target.coll, Attribute: seg.Stem}
	}

	var next interface{}
	if seg.Indexed() {
		if !field.Sequence() {
			return linkTarget{}, nil, dms.ErrPathInvalid{
				Path:   path.String(),
				Reason: fmt.Errorf("%s.%s is scalar, but was indexed with %d", target.coll, seg.Stem, seg.Index),
			}
		}
		seq, ok := value.([]interface{})
		if !ok || seg.Index >= len(seq) {
			return linkTarget{}, nil, dms.ErrPathInvalid{
				Path:   path.String(),
				Reason: fmt.Errorf("index %d out of range for %s.%s", seg.Index, target.coll, seg.Stem),
			}
		}
		next = seq[seg.Index]
	} else {
		if field.Sequence() {
			return linkTarget{}, nil, dms.ErrPathInvalid{
				Path:   path.String(),
				Reason: fmt.Errorf("%s.%s is a sequence, but was not indexed", target.coll, seg.Stem),
			}
		}
		next = value
	}

	linkID, err := storedLinkID(target.coll, seg.Stem, next)
	if err != nil {
		return linkTarget{}, nil, err
	}

	return c.resolvePathHead(ctx, linkTarget{coll: field.Link, id: linkID}, path[1:])
}

// Attribute resolves a dot path that must terminate on a plain attribute and
// returns its stored representation.
func (c *collection) Attribute(ctx context.Context, id dms.ObjectID, path string) (interface{}, error) {
	p, err := dotpath.Parse(path)
	if err != nil {
		return nil, dms.ErrPathInvalid{Path: path, Reason: err}
	}

	head, tail, err := c.resolvePathHead(ctx, linkTarget{coll: c.name, id: id}, p)
	if err != nil {
		return nil, err
	}

	if len(tail) == 0 {
		return nil, dms.ErrPathInvalid{
			Path:   path,
			Reason: fmt.Errorf("leads to an object (%s), not an attribute", head.coll),
		}
	}
	if len(tail) > 1 {
		return nil, dms.ErrPathInvalid{
			Path:   path,
			Reason: fmt.Errorf("has too long a tail (%s)", tail.String()),
		}
	}
	if tail[0].Indexed() {
		return nil, dms.ErrPathInvalid{
			Path:   path,
			Reason: fmt.Errorf("has leaf index %d", tail[0].Index),
		}
	}

	doc, err := c.database.registry.getStoredDocument(ctx, c.database.name, head.coll, head.id)
	if err != nil {
		return nil, err
	}

	value, ok := doc.Fields[tail[0].Stem]
	if !ok {
		return nil, dms.ErrAttributeUnknown{Collection: head.coll, Attribute: tail[0].Stem}
	}

	field, _ := c.schema.Field(head.coll, tail[0].Stem)
	return c.renderValue(ctx, field, value)
}

// Update replaces the given fields on a stored document. Link fields accept
// raw ids only; mutating a tracked slot drops its tracking record.
func (c *collection) Update(ctx context.Context, id dms.ObjectID, fields dms.Document) error {
	doc, err := c.database.registry.getStoredDocument(ctx, c.database.name, c.name, id)
	if err != nil {
		return err
	}

	for name, value := range fields {
		field, ok := c.schema.Field(c.name, name)
		if !ok {
			return dms.ErrAttributeUnknown{Collection: c.name, Attribute: name}
		}

		var stored interface{}
		if field.IsLink() {
			stored, err = rawLinkValue(c.name, name, field, value)
		} else {
			stored, err = c.encodeValue(ctx, c.name, name, field, value)
		}
		if err != nil {
			return err
		}

		doc.Fields[name] = stored
		dropTracking(doc, name)
	}

	return c.database.registry.putStoredDocument(ctx, c.database.name, c.name, id, doc)
}

// List returns the ids of all stored documents in the collection.
func (c *collection) List(ctx context.Context) ([]dms.ObjectID, error) {
	root, err := pathFor(objectsRootPathSpec{database: c.database.name, collection: c.name})
	if err != nil {
		return nil, err
	}

	children, err := c.database.registry.driver.List(ctx, root)
	if err != nil {
		if _, ok := err.(storagedriver.PathNotFoundError); ok {
			return nil, nil
		}
		return nil, err
	}

	ids := make([]dms.ObjectID, 0, len(children))
	for _, child := range children {
		id, err := dms.ParseObjectID(lastPathComponent(child))
		if err != nil {
			continue // not a document directory
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Exists reports whether the identified document is stored.
func (c *collection) Exists(ctx context.Context, id dms.ObjectID) (bool, error) {
	dp, err := pathFor(objectDataPathSpec{database: c.database.name, collection: c.name, id: id})
	if err != nil {
		return false, err
	}

	if _, err := c.database.registry.driver.Stat(ctx, dp); err != nil {
		if _, ok := err.(storagedriver.PathNotFoundError); ok {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// storedLinkID interprets a stored link slot as an object id.
func storedLinkID(collName, fieldName string, value interface{}) (dms.ObjectID, error) {
	s, ok := value.(string)
	if !ok {
		return "", dms.ErrLinkInvalid{
			Collection: collName,
			Field:      fieldName,
			Reason:     fmt.Errorf("stored value is not an id"),
		}
	}
	id, err := dms.ParseObjectID(s)
	if err != nil {
		return "", dms.ErrLinkInvalid{Collection: collName, Field: fieldName, Reason: err}
	}
	return id, nil
}

// dropTracking removes tracking records for a field and all of its sequence
// slots.
func dropTracking(doc *storedDocument, field string) {
	if doc.Tracking == nil {
		return
	}
	delete(doc.Tracking, field)
	prefix := field + "["
	for key := range doc.Tracking {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(doc.Tracking, key)
		}
	}
	if len(doc.Tracking) == 0 {
		doc.Tracking = nil
	}
}
