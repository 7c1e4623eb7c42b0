package chat

import "strings"

// BlockList is the set of administratively blocked usernames. Entries are
// unique case-insensitively and independent of whether the named user is
// currently connected.
//
// BlockList is not safe for concurrent use; the hub's event loop is its
// only caller.
type BlockList struct {
	index   map[string]struct{}
	entries []string
}

// NewBlockList creates an empty block list.
func NewBlockList() *BlockList {
	return &BlockList{index: make(map[string]struct{})}
}

// Block adds username to the list, preserving the casing of the first add.
// Blocking a name that is already blocked, in any casing, is a no-op.
func (b *BlockList) Block(username string) {
	key := strings.ToLower(username)
	if _, ok := b.index[key]; ok {
		return
	}
	b.index[key] = struct{}{}
	b.entries = append(b.entries, username)
}

// Unblock removes username from the list, matching case-insensitively.
// Unblocking a name that is not blocked is a no-op.
func (b *BlockList) Unblock(username string) {
	key := strings.ToLower(username)
	if _, ok := b.index[key]; !ok {
		return
	}
	delete(b.index, key)
	for i, entry := range b.entries {
		if strings.ToLower(entry) == key {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			break
		}
	}
}

// IsBlocked reports whether username is blocked, matching
// case-insensitively.
func (b *BlockList) IsBlocked(username string) bool {
	_, ok := b.index[strings.ToLower(username)]
	return ok
}

// List returns the blocked usernames in the order they were added.
func (b *BlockList) List() []string {
	entries := make([]string, len(b.entries))
	copy(entries, b.entries)
	return entries
}

// Len reports the number of blocked usernames.
func (b *BlockList) Len() int {
	return len(b.entries)
}
