// Package docstore persists a hierarchical JSON document tree addressed by
// slash-separated paths. Each node holds its own fields; child collections are
// separate nodes below it.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Document is the field set stored at one path.
type Document map[string]any

// Patch merges fields into the document at a path, creating it when absent.
// A nil field value removes that field.
type Patch map[string]any

// Updates maps paths to the value written there in one atomic step:
//   - nil deletes the path and everything below it
//   - Document replaces the node's fields
//   - Patch merges into the node's fields
type Updates map[string]any

var (
	ErrInvalidPath  = errors.New("invalid_path")
	ErrInvalidValue = errors.New("invalid_value")
)

// Store is the document tree contract the repositories are written against.
type Store interface {
	// Get returns the fields at path, or nil when nothing is stored there.
	Get(ctx context.Context, path string) (Document, error)
	// Children returns the direct child documents of a collection path keyed by child key.
	Children(ctx context.Context, path string) (map[string]Document, error)
	Set(ctx context.Context, path string, doc Document) error
	Merge(ctx context.Context, path string, patch Patch) error
	Update(ctx context.Context, updates Updates) error
	// Remove deletes path and all of its descendants.
	Remove(ctx context.Context, path string) error
}

// Join builds a path from segments, rejecting empty segments or embedded slashes.
func Join(segments ...string) (string, error) {
	for _, seg := range segments {
		if strings.TrimSpace(seg) == "" || strings.Contains(seg, "/") {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, seg)
		}
	}
	return strings.Join(segments, "/"), nil
}

// MustJoin is Join for segments that are known-valid constants or generated ids.
func MustJoin(segments ...string) string {
	p, err := Join(segments...)
	if err != nil {
		panic(err)
	}
	return p
}

func cleanPath(path string) (string, error) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(path, "/") {
		if strings.TrimSpace(seg) == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return path, nil
}

func splitPath(path string) (parent, key string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// Encode converts a tagged struct to a Document, dropping zero-valued fields
// tagged omitempty and nested objects left empty.
func Encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return Clean(doc), nil
}

// Decode fills v from a Document.
func Decode(doc Document, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Clean removes nil values and nested maps that end up empty.
func Clean(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		switch val := v.(type) {
		case nil:
			continue
		case map[string]any:
			nested := Clean(Document(val))
			if len(nested) == 0 {
				continue
			}
			out[k] = map[string]any(nested)
		case Document:
			nested := Clean(val)
			if len(nested) == 0 {
				continue
			}
			out[k] = map[string]any(nested)
		default:
			out[k] = v
		}
	}
	return out
}

// applyPatch merges patch into base in place. Nested maps in the patch
// replace the stored value wholesale.
func applyPatch(base Document, patch Patch) Document {
	if base == nil {
		base = Document{}
	}
	for k, v := range patch {
		if v == nil {
			delete(base, k)
			continue
		}
		base[k] = v
	}
	return base
}
