// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the poembook pipeline:
// the outline that drives generation and the configuration passed to every
// stage.
package types

// Chapter is one part of the book and its ordered topics.
type Chapter struct {
	Name   string
	Topics []string
}

// Outline is the ordered chapter → topics structure. Order is significant:
// it fixes every topic's global index. It is built by book.ParseOutline,
// not decoded directly, because a mapping decode would lose chapter order.
type Outline struct {
	Chapters []Chapter
}

// Entry is one topic positioned in the flattened outline.
type Entry struct {
	// Index is the 1-based position across all chapters.
	Index   int
	Chapter string
	Topic   string
}

// Flatten walks chapters in order, then topics in order, assigning each
// topic its global 1-based index.
func (o Outline) Flatten() []Entry {
	var entries []Entry
	idx := 0
	for _, ch := range o.Chapters {
		for _, topic := range ch.Topics {
			idx++
			entries = append(entries, Entry{Index: idx, Chapter: ch.Name, Topic: topic})
		}
	}
	return entries
}

// Len returns the number of topics across all chapters.
func (o Outline) Len() int {
	n := 0
	for _, ch := range o.Chapters {
		n += len(ch.Topics)
	}
	return n
}
