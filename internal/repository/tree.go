package repository

import "blogapi/internal/model"

// NestTree assembles the subtree rooted at rootID from a flat descendant set.
// Siblings keep the order of rows; rows whose parent is missing from the set
// are dropped. ok is false when rootID is not among rows.
func NestTree(rootID string, rows []model.Category) (model.Category, bool) {
	byParent := make(map[string][]model.Category, len(rows))
	var root model.Category
	found := false
	for _, c := range rows {
		if c.ID == rootID {
			root = c
			found = true
			continue
		}
		if c.ParentID != nil {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}
	if !found {
		return model.Category{}, false
	}
	return attachChildren(root, byParent, map[string]bool{}), true
}

func attachChildren(node model.Category, byParent map[string][]model.Category, seen map[string]bool) model.Category {
	seen[node.ID] = true
	kids := byParent[node.ID]
	node.Children = make([]model.Category, 0, len(kids))
	for _, k := range kids {
		if seen[k.ID] {
			continue
		}
		node.Children = append(node.Children, attachChildren(k, byParent, seen))
	}
	return node
}

// FlattenTrees walks trees in pre-order. Each item is stamped with its depth
// (starting at depth) and a reference to its parent; children are dropped.
func FlattenTrees(trees []model.Category, depth int, parent *model.Category) []model.Category {
	out := make([]model.Category, 0, len(trees))
	for _, item := range trees {
		children := item.Children
		item.Children = nil
		item.Depth = depth
		if parent != nil {
			p := *parent
			p.Children = nil
			p.Parent = nil
			item.Parent = &p
		}
		out = append(out, item)
		out = append(out, FlattenTrees(children, depth+1, &item)...)
	}
	return out
}
