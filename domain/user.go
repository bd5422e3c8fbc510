package domain

// UserID identifies a chat user across the whole system.
// It matches the BIGINT primary key used by the chat store.
type UserID int64

// UserSet holds the users impacted by a single decoded notification.
type UserSet map[UserID]struct{}

func NewUserSet(ids ...UserID) UserSet {
	s := make(UserSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s UserSet) Add(id UserID) {
	s[id] = struct{}{}
}

func (s UserSet) Contains(id UserID) bool {
	_, ok := s[id]
	return ok
}
