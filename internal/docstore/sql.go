package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/smallbiznis/branchops/internal/clock"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Node is one stored document.
type Node struct {
	Path      string         `gorm:"primaryKey;size:512"`
	Parent    string         `gorm:"size:512;not null;index"`
	Data      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (Node) TableName() string { return "document_nodes" }

type SQLStore struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewSQLStore(db *gorm.DB, log *zap.Logger, clk clock.Clock) *SQLStore {
	if clk == nil {
		clk = clock.System{}
	}
	return &SQLStore{
		db:    db,
		log:   log.Named("docstore"),
		clock: clk,
	}
}

func (s *SQLStore) Get(ctx context.Context, path string) (Document, error) {
	path, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, s.db, path)
}

func (s *SQLStore) get(ctx context.Context, tx *gorm.DB, path string) (Document, error) {
	var nodes []Node
	if err := tx.WithContext(ctx).Where("path = ?", path).Limit(1).Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return decodeNode(nodes[0])
}

func (s *SQLStore) Children(ctx context.Context, path string) (map[string]Document, error) {
	path, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	var nodes []Node
	if err := s.db.WithContext(ctx).Where("parent = ?", path).Order("path asc").Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	out := make(map[string]Document, len(nodes))
	for _, n := range nodes {
		doc, err := decodeNode(n)
		if err != nil {
			return nil, err
		}
		_, key := splitPath(n.Path)
		out[key] = doc
	}
	return out, nil
}

func (s *SQLStore) Set(ctx context.Context, path string, doc Document) error {
	return s.Update(ctx, Updates{path: doc})
}

func (s *SQLStore) Merge(ctx context.Context, path string, patch Patch) error {
	return s.Update(ctx, Updates{path: patch})
}

func (s *SQLStore) Remove(ctx context.Context, path string) error {
	return s.Update(ctx, Updates{path: nil})
}

// Update applies every entry in one transaction. Deletions run first so a
// batch may clear a subtree and rewrite nodes inside it.
func (s *SQLStore) Update(ctx context.Context, updates Updates) error {
	if len(updates) == 0 {
		return nil
	}

	type op struct {
		path  string
		value any
	}
	deletes := make([]op, 0)
	writes := make([]op, 0, len(updates))
	for raw, value := range updates {
		path, err := cleanPath(raw)
		if err != nil {
			return err
		}
		switch value.(type) {
		case nil:
			deletes = append(deletes, op{path: path})
		case Document, Patch, map[string]any:
			writes = append(writes, op{path: path, value: value})
		default:
			return fmt.Errorf("%w: %T at %s", ErrInvalidValue, value, path)
		}
	}
	sort.Slice(deletes, func(i, j int) bool { return deletes[i].path < deletes[j].path })
	sort.Slice(writes, func(i, j int) bool { return writes[i].path < writes[j].path })

	now := s.clock.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range deletes {
			if err := deleteSubtree(tx, d.path); err != nil {
				return err
			}
		}
		for _, w := range writes {
			var doc Document
			switch v := w.value.(type) {
			case Patch:
				existing, err := s.get(ctx, tx, w.path)
				if err != nil {
					return err
				}
				doc = applyPatch(existing, v)
			case Document:
				doc = Clean(v)
			case map[string]any:
				doc = Clean(Document(v))
			}
			if err := upsert(tx, w.path, doc, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn("update failed", zap.Int("paths", len(updates)), zap.Error(err))
		return err
	}
	return nil
}

func upsert(tx *gorm.DB, path string, doc Document, now time.Time) error {
	if doc == nil {
		doc = Document{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	parent, _ := splitPath(path)
	node := Node{
		Path:      path,
		Parent:    parent,
		Data:      datatypes.JSON(raw),
		UpdatedAt: now,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"parent", "data", "updated_at"}),
	}).Create(&node).Error
}

func deleteSubtree(tx *gorm.DB, path string) error {
	return tx.Where("path = ? OR path LIKE ? ESCAPE '!'", path, escapeLike(path)+"/%").
		Delete(&Node{}).Error
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

func decodeNode(n Node) (Document, error) {
	doc := Document{}
	if len(n.Data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(n.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", n.Path, err)
	}
	return doc, nil
}
