package core

import "sort"

// FolderCount is one collection folder and the number of records in it.
type FolderCount struct {
	Folder string `json:"folder"`
	Count  int    `json:"count"`
}

// ExtractFolders groups records by collection folder and returns the folders
// sorted ascending by byte order. Records without a folder are counted under
// UncategorizedFolder.
func ExtractFolders(records []Record) []FolderCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Folder()]++
	}

	folders := make([]FolderCount, 0, len(counts))
	for f, n := range counts {
		folders = append(folders, FolderCount{Folder: f, Count: n})
	}
	sort.Slice(folders, func(i, j int) bool {
		return folders[i].Folder < folders[j].Folder
	})

	return folders
}

// FolderNames returns just the folder names of fc, in order.
func FolderNames(fc []FolderCount) []string {
	names := make([]string, len(fc))
	for i, f := range fc {
		names[i] = f.Folder
	}
	return names
}

// Selection is the active folder filter.
//
// It has three observable states:
//
//   - unset: no filter has been applied since the store was created, every
//     record is visible.
//   - set to a non-empty set: only records in those folders are visible.
//   - set to the empty set: nothing is visible. Clear produces this state;
//     it does not mean "show everything".
//
// The zero value is unset. Selection is not safe for concurrent use; the
// Store guards it.
type Selection struct {
	set     bool
	folders map[string]struct{}
}

// Reset replaces the selection with exactly the given folders and marks it set.
func (s *Selection) Reset(folders []string) {
	s.set = true
	s.folders = make(map[string]struct{}, len(folders))
	for _, f := range folders {
		s.folders[f] = struct{}{}
	}
}

// SetFolderSelected adds or removes one folder. Adding a present folder or
// removing an absent one leaves the selection unchanged. It reports whether
// the selection changed.
func (s *Selection) SetFolderSelected(folder string, included bool) bool {
	if !s.set {
		// First explicit toggle turns an unset selection into a set one.
		s.set = true
		s.folders = make(map[string]struct{})
	}

	_, present := s.folders[folder]
	switch {
	case included && !present:
		s.folders[folder] = struct{}{}
		return true
	case !included && present:
		delete(s.folders, folder)
		return true
	}
	return false
}

// Clear empties the selection. Afterwards no record matches.
func (s *Selection) Clear() {
	s.set = true
	s.folders = make(map[string]struct{})
}

// IsSet reports whether a filter is applied at all.
func (s *Selection) IsSet() bool {
	return s.set
}

// Contains reports whether folder passes the filter.
// Every folder passes an unset selection.
func (s *Selection) Contains(folder string) bool {
	if !s.set {
		return true
	}
	_, ok := s.folders[folder]
	return ok
}

// Folders returns the selected folder names sorted ascending.
// An unset selection returns nil.
func (s *Selection) Folders() []string {
	if !s.set {
		return nil
	}
	out := make([]string, 0, len(s.folders))
	for f := range s.folders {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// clone returns an independent copy.
func (s *Selection) clone() Selection {
	c := Selection{set: s.set}
	if s.folders != nil {
		c.folders = make(map[string]struct{}, len(s.folders))
		for f := range s.folders {
			c.folders[f] = struct{}{}
		}
	}
	return c
}
