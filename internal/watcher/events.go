package watcher

import (
	"sort"
	"time"
)

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

type FileEvent struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}

// Paths returns the sorted paths of events whose file may have new content.
// Deletes and renames-away carry nothing to rewrite.
func Paths(events []FileEvent) []string {
	paths := make([]string, 0, len(events))
	for _, event := range events {
		if event.Type == EventDelete || event.Type == EventRename {
			continue
		}
		paths = append(paths, event.Path)
	}
	sort.Strings(paths)
	return paths
}
