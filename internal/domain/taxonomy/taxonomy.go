// Package taxonomy provides an immutable snapshot of a workspace's category tree.
package taxonomy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/finance-tracker/bookkeeping/internal/domain/entity"
	domainerror "github.com/finance-tracker/bookkeeping/internal/domain/error"
)

// MaxDepth is the deepest level below a root: root -> parent -> leaf.
const MaxDepth = 2

// UnknownCategoryName is displayed for ids that do not resolve.
const UnknownCategoryName = "Unknown category"

// pathSeparator joins names in a display path.
const pathSeparator = " > "

// Taxonomy is a validated, read-only view of a category tree.
// It is safe for concurrent use once built.
type Taxonomy struct {
	byID     map[uuid.UUID]entity.Category
	depth    map[uuid.UUID]int
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
	ordered  []uuid.UUID
}

// New validates categories and builds a snapshot.
// Duplicate ids, dangling parents, cycles and trees deeper than MaxDepth are rejected.
func New(categories []*entity.Category) (*Taxonomy, error) {
	t := &Taxonomy{
		byID:     make(map[uuid.UUID]entity.Category, len(categories)),
		depth:    make(map[uuid.UUID]int, len(categories)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}

	for _, c := range categories {
		if c == nil {
			continue
		}
		if _, exists := t.byID[c.ID]; exists {
			return nil, invalid(fmt.Sprintf("category %s appears twice", c.ID), domainerror.ErrDuplicateCategoryID)
		}
		stored := *c
		if c.ParentID != nil {
			parentID := *c.ParentID
			stored.ParentID = &parentID
		}
		t.byID[c.ID] = stored
	}

	for id, c := range t.byID {
		if c.ParentID == nil {
			continue
		}
		if _, ok := t.byID[*c.ParentID]; !ok {
			return nil, invalid(fmt.Sprintf("category %s references missing parent %s", id, *c.ParentID), domainerror.ErrParentCategoryNotFound)
		}
		t.children[*c.ParentID] = append(t.children[*c.ParentID], id)
	}

	for id := range t.byID {
		d, err := t.computeDepth(id)
		if err != nil {
			return nil, err
		}
		t.depth[id] = d
		t.ordered = append(t.ordered, id)
		if d == 0 {
			t.roots = append(t.roots, id)
		}
	}

	less := func(ids []uuid.UUID) func(i, j int) bool {
		return func(i, j int) bool { return t.compare(ids[i], ids[j]) < 0 }
	}
	sort.Slice(t.ordered, less(t.ordered))
	sort.Slice(t.roots, less(t.roots))
	for parent, kids := range t.children {
		sort.Slice(kids, less(kids))
		t.children[parent] = kids
	}

	return t, nil
}

func (t *Taxonomy) computeDepth(id uuid.UUID) (int, error) {
	depth := 0
	current := t.byID[id]
	for current.ParentID != nil {
		depth++
		if depth > len(t.byID) {
			return 0, invalid(fmt.Sprintf("category %s is part of a parent cycle", id), domainerror.ErrCategoryCycle)
		}
		current = t.byID[*current.ParentID]
	}
	if depth > MaxDepth {
		return 0, invalid(fmt.Sprintf("category %s sits %d levels below its root", id, depth), domainerror.ErrCategoryTooDeep)
	}
	return depth, nil
}

// compare orders by depth, then case-insensitive name, then id.
func (t *Taxonomy) compare(a, b uuid.UUID) int {
	if da, db := t.depth[a], t.depth[b]; da != db {
		return da - db
	}
	na, nb := strings.ToLower(t.byID[a].Name), strings.ToLower(t.byID[b].Name)
	if c := strings.Compare(na, nb); c != 0 {
		return c
	}
	return strings.Compare(a.String(), b.String())
}

func invalid(message string, sentinel error) error {
	return domainerror.NewCategoryError(domainerror.ErrCodeInvalidTaxonomy, message, sentinel)
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int {
	return len(t.byID)
}

// Contains reports whether id is part of the tree.
func (t *Taxonomy) Contains(id uuid.UUID) bool {
	_, ok := t.byID[id]
	return ok
}

// ByID returns a copy of the category with the given id.
func (t *Taxonomy) ByID(id uuid.UUID) (entity.Category, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// ByName returns the category with the given name, case-insensitively.
// When several categories share a name the shallowest wins, then the lowest id.
func (t *Taxonomy) ByName(name string) (entity.Category, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return entity.Category{}, false
	}
	for _, id := range t.ordered {
		if strings.ToLower(t.byID[id].Name) == want {
			return t.byID[id], true
		}
	}
	return entity.Category{}, false
}

// FindPath resolves a parent name and an optional child name to ids.
// A parent that has a child with the requested name is preferred; when no
// such child exists the parent alone is returned.
func (t *Taxonomy) FindPath(parentName, childName string) (uuid.UUID, *uuid.UUID, error) {
	wantParent := strings.ToLower(strings.TrimSpace(parentName))
	wantChild := strings.ToLower(strings.TrimSpace(childName))

	var fallback *uuid.UUID
	for _, id := range t.ordered {
		if t.depth[id] >= MaxDepth || strings.ToLower(t.byID[id].Name) != wantParent {
			continue
		}
		if wantChild == "" {
			return id, nil, nil
		}
		for _, childID := range t.children[id] {
			if strings.ToLower(t.byID[childID].Name) == wantChild {
				child := childID
				return id, &child, nil
			}
		}
		if fallback == nil {
			parent := id
			fallback = &parent
		}
	}

	if fallback != nil {
		return *fallback, nil, nil
	}
	return uuid.Nil, nil, domainerror.NewCategoryError(
		domainerror.ErrCodeCategoryNotFound,
		fmt.Sprintf("no category named %q", parentName),
		domainerror.ErrCategoryNotFound,
	)
}

// ParentOf returns the parent id of a category.
func (t *Taxonomy) ParentOf(id uuid.UUID) (uuid.UUID, bool) {
	c, ok := t.byID[id]
	if !ok || c.ParentID == nil {
		return uuid.Nil, false
	}
	return *c.ParentID, true
}

// Children returns the direct children of a category, ordered by name.
func (t *Taxonomy) Children(id uuid.UUID) []uuid.UUID {
	kids := t.children[id]
	out := make([]uuid.UUID, len(kids))
	copy(out, kids)
	return out
}

// HasChildren reports whether a category has at least one child.
func (t *Taxonomy) HasChildren(id uuid.UUID) bool {
	return len(t.children[id]) > 0
}

// Roots returns the root categories, ordered by name.
func (t *Taxonomy) Roots() []uuid.UUID {
	out := make([]uuid.UUID, len(t.roots))
	copy(out, t.roots)
	return out
}

// Depth returns 0 for roots, 1 for their children and 2 for leaves below those.
// It returns -1 for unknown ids.
func (t *Taxonomy) Depth(id uuid.UUID) int {
	d, ok := t.depth[id]
	if !ok {
		return -1
	}
	return d
}

// IsSelfOrDescendant reports whether id equals ancestor or lies below it.
// Unknown ids only match themselves.
func (t *Taxonomy) IsSelfOrDescendant(id, ancestor uuid.UUID) bool {
	if id == ancestor {
		return true
	}
	current := id
	for step := 0; step < MaxDepth; step++ {
		parent, ok := t.ParentOf(current)
		if !ok {
			return false
		}
		if parent == ancestor {
			return true
		}
		current = parent
	}
	return false
}

// Path returns the categories from the root down to id.
func (t *Taxonomy) Path(id uuid.UUID) []entity.Category {
	c, ok := t.byID[id]
	if !ok {
		return nil
	}
	path := []entity.Category{c}
	for c.ParentID != nil {
		c = t.byID[*c.ParentID]
		path = append([]entity.Category{c}, path...)
	}
	return path
}

// DisplayName returns the root-to-leaf name path of a category.
func (t *Taxonomy) DisplayName(id uuid.UUID) string {
	path := t.Path(id)
	if len(path) == 0 {
		return UnknownCategoryName
	}
	names := make([]string, len(path))
	for i, c := range path {
		names[i] = c.Name
	}
	return strings.Join(names, pathSeparator)
}

// All returns every category ordered by depth, then name.
func (t *Taxonomy) All() []entity.Category {
	out := make([]entity.Category, 0, len(t.ordered))
	for _, id := range t.ordered {
		out = append(out, t.byID[id])
	}
	return out
}
