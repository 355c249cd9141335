// Package navigation derives sidebar navigation state.
// Everything here is a pure function of its inputs.
package navigation

import "strings"

// Item is a sidebar entry. Keys are unique among siblings.
type Item struct {
	Key      string `json:"id"`
	Label    string `json:"title"`
	Children []Item `json:"children,omitempty"`
}

// NestedKeys flattens the keys of a tree depth-first, parents first.
func NestedKeys(items []Item) []string {
	var keys []string
	for _, it := range items {
		keys = append(keys, it.Key)
		keys = append(keys, NestedKeys(it.Children)...)
	}
	return keys
}

// FilterAndArrange keeps only the items whose key appears in keys and orders
// siblings by the position of their key. Children are filtered the same way.
// The input tree is not modified.
func FilterAndArrange(tree []Item, keys []string) []Item {
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		if _, seen := index[k]; !seen {
			index[k] = i
		}
	}
	return arrange(tree, index)
}

func arrange(nodes []Item, index map[string]int) []Item {
	out := make([]Item, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := index[n.Key]; !ok {
			continue
		}
		if n.Children != nil {
			n.Children = arrange(n.Children, index)
		}
		out = append(out, n)
	}
	// insertion sort keeps equal keys stable and the lists are short
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && index[out[j].Key] < index[out[j-1].Key]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Resolve returns the tree to render: the static tree arranged by the
// persona tree, or the static tree unchanged when no persona tree exists.
func Resolve(static, persona []Item) []Item {
	if len(persona) == 0 {
		return static
	}
	return FilterAndArrange(static, NestedKeys(persona))
}

// SelectedKeys computes the menu selection for path. The first three path
// segments are selected when they form a nested key, else the first two.
func SelectedKeys(path string, nested map[string]bool) []string {
	parts := strings.Split(path, "/")
	deep := strings.Join(parts[:min(3, len(parts))], "/")
	if nested[deep] {
		return []string{deep}
	}
	return []string{strings.Join(parts[:min(2, len(parts))], "/")}
}

// Find returns the item with key anywhere in the tree.
func Find(items []Item, key string) (Item, bool) {
	for _, it := range items {
		if it.Key == key {
			return it, true
		}
		if found, ok := Find(it.Children, key); ok {
			return found, true
		}
	}
	return Item{}, false
}
