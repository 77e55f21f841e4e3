package types

import "sort"

// FileEntry is one fetched file. Entries are immutable once fetched; identity
// is the (Package, Name) pair.
type FileEntry struct {
	Package PackagePath
	Name    string
	Content []byte
}

// SortFileEntries orders entries by (package, filename) in place so the
// output sequence is stable regardless of traversal order.
func SortFileEntries(entries []FileEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Package != entries[j].Package {
			return entries[i].Package < entries[j].Package
		}
		return entries[i].Name < entries[j].Name
	})
}

// Warning records a non-fatal diagnostic raised during resolution.
type Warning struct {
	Package PackagePath
	File    string
	Reason  string
}

// SortWarnings orders warnings by (package, file, reason) in place.
func SortWarnings(warnings []Warning) {
	sort.Slice(warnings, func(i, j int) bool {
		if warnings[i].Package != warnings[j].Package {
			return warnings[i].Package < warnings[j].Package
		}
		if warnings[i].File != warnings[j].File {
			return warnings[i].File < warnings[j].File
		}
		return warnings[i].Reason < warnings[j].Reason
	})
}

// ResolutionResult is the terminal artifact of a resolution run. Files are
// sorted by (package, filename); ownership transfers fully to the caller.
type ResolutionResult struct {
	Root     PackagePath
	Files    []FileEntry
	Graph    *DependencyGraph
	Warnings []Warning
}

// WriteFailure records a single file that could not be materialized.
type WriteFailure struct {
	Path   string
	Reason string
}

// WriteSummary reports the outcome of the storage-writing stage. A failed
// file does not abort sibling writes, so both lists may be populated.
type WriteSummary struct {
	Written []string
	Failed  []WriteFailure
}
