// Package startmenu indexes desktop apps and portfolio projects for the
// start menu search box.
package startmenu

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/Zachkp/deskfolio/internal/desktop"
	"github.com/Zachkp/deskfolio/internal/profile"
)

const DefaultLimit = 10

type Kind string

const (
	KindApp     Kind = "app"
	KindProject Kind = "project"
)

// Entry is one searchable start menu item. Window is the id to open when
// the entry is chosen.
type Entry struct {
	Title  string `json:"title"`
	Window string `json:"window"`
	Icon   string `json:"icon,omitempty"`
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail,omitempty"`

	key string
}

type Result struct {
	Entry
	Score   int   `json:"score"`
	Matched []int `json:"matched"`
}

// Index is an immutable search index; it is safe for concurrent use.
type Index struct {
	entries []Entry
}

// New builds the index from the window manifest and the profile projects.
// Projects pointing at windows missing from the manifest are skipped.
func New(defs []desktop.Definition, p *profile.Profile) *Index {
	idx := &Index{}
	icons := make(map[string]string, len(defs))
	for _, def := range defs {
		icons[def.ID] = def.Icon
		title := def.Title
		if title == "" {
			title = def.ID
		}
		idx.entries = append(idx.entries, Entry{
			Title:  title,
			Window: def.ID,
			Icon:   def.Icon,
			Kind:   KindApp,
			key:    title + " " + def.ID,
		})
	}
	if p == nil {
		return idx
	}
	for _, proj := range p.Projects {
		icon, ok := icons[proj.Window]
		if !ok {
			continue
		}
		stack := strings.Join(proj.Stack, ", ")
		idx.entries = append(idx.entries, Entry{
			Title:  proj.Name,
			Window: proj.Window,
			Icon:   icon,
			Kind:   KindProject,
			Detail: stack,
			key:    proj.Name + " " + strings.Join(proj.Stack, " "),
		})
	}
	return idx
}

// Len and String implement fuzzy.Source.
func (i *Index) Len() int { return len(i.entries) }

func (i *Index) String(n int) string { return i.entries[n].key }

// Apps returns the app entries in manifest order, shown when the search box
// is empty.
func (i *Index) Apps() []Entry {
	var out []Entry
	for _, e := range i.entries {
		if e.Kind == KindApp {
			out = append(out, e)
		}
	}
	return out
}

// Search returns up to limit entries matching query, best match first.
func (i *Index) Search(query string, limit int) []Result {
	query = strings.TrimSpace(query)
	if limit <= 0 {
		limit = DefaultLimit
	}
	if query == "" {
		apps := i.Apps()
		out := make([]Result, 0, min(limit, len(apps)))
		for _, e := range apps[:min(limit, len(apps))] {
			out = append(out, Result{Entry: e, Matched: []int{}})
		}
		return out
	}

	matches := fuzzy.FindFrom(query, i)
	out := make([]Result, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, Result{
			Entry:   i.entries[m.Index],
			Score:   m.Score,
			Matched: m.MatchedIndexes,
		})
	}
	return out
}
