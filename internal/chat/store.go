package chat

import "bizchat/internal/types"

// MessageStore holds the messages of the currently open conversation,
// newest first. The history fetch populates it wholesale; realtime events
// are merged in one at a time. Entries are never removed or edited.
type MessageStore struct {
	messages []types.Message
	seen     map[int64]struct{}
}

func NewMessageStore() *MessageStore {
	return &MessageStore{seen: map[int64]struct{}{}}
}

// Load replaces the store content with the fetched history. Input order is
// preserved as-is; the backend returns newest-first and the display layer
// reverses for chronological rendering.
func (s *MessageStore) Load(initial []types.Message) {
	if s == nil {
		return
	}
	s.messages = append([]types.Message(nil), initial...)
	s.seen = make(map[int64]struct{}, len(initial))
	for _, msg := range initial {
		s.seen[msg.ID] = struct{}{}
	}
}

// Merge prepends incoming unless a message with the same id is already
// present. The check is keyed on the id field, never on value or reference
// equality, so redelivered copies of a message are dropped no matter how
// they were decoded. Returns true when the store changed; the caller uses
// that as the signal to invalidate the conversation index.
func (s *MessageStore) Merge(incoming types.Message) bool {
	if s == nil {
		return false
	}
	if _, ok := s.seen[incoming.ID]; ok {
		return false
	}
	if s.seen == nil {
		s.seen = map[int64]struct{}{}
	}
	s.seen[incoming.ID] = struct{}{}
	s.messages = append([]types.Message{incoming}, s.messages...)
	return true
}

// Messages returns the newest-first sequence.
func (s *MessageStore) Messages() []types.Message {
	if s == nil {
		return nil
	}
	return s.messages
}

func (s *MessageStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.messages)
}
