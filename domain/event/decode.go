package event

import (
	"encoding/json"
	"fmt"

	"notify-lab/domain"
	"notify-lab/errors"

	"github.com/samber/lo"
)

// Notification channels emitted by the chat store's triggers.
//
// chat_updated:          pg_notify('chat_updated', json_build_object('op', TG_OP, 'old', OLD, 'new', NEW)::text)
// chat_message_created:  pg_notify('chat_message_created', json_build_object('message', NEW, 'members', ...)::text)
const (
	ChannelChatUpdated    = "chat_updated"
	ChannelMessageCreated = "chat_message_created"
)

// Channels lists every channel the listener subscribes to.
func Channels() []string {
	return []string{ChannelChatUpdated, ChannelMessageCreated}
}

// Notification is a decoded store notification: the event to push and the
// users it must reach.
type Notification struct {
	Users domain.UserSet
	Event ChangeEvent
}

type chatUpdated struct {
	Op  string       `json:"op"`
	Old *domain.Chat `json:"old"`
	New *domain.Chat `json:"new"`
}

type messageCreated struct {
	Message domain.Message  `json:"message"`
	Members []domain.UserID `json:"members"`
}

// Decode parses a raw notification into a Notification. It is a pure
// function: no I/O, no shared state.
//
// A chat update whose old and new member sets are identical is a pure
// no-op; Decode reports it as (nil, nil) so callers dispatch nothing.
func Decode(channel, payload string) (*Notification, error) {
	switch channel {
	case ChannelChatUpdated:
		var p chatUpdated
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
		}
		return decodeChatUpdated(p)
	case ChannelMessageCreated:
		var p messageCreated
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
		}
		return &Notification{
			Users: domain.NewUserSet(p.Members...),
			Event: NewMessage{Message: p.Message},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownChannel, channel)
	}
}

func decodeChatUpdated(p chatUpdated) (*Notification, error) {
	if p.Old == nil && p.New == nil {
		return nil, fmt.Errorf("%w: mutation without old or new row", errors.ErrMalformedPayload)
	}

	var evt ChangeEvent
	switch p.Op {
	case "INSERT":
		if p.New == nil {
			return nil, fmt.Errorf("%w: INSERT without new row", errors.ErrMalformedPayload)
		}
		evt = NewChat{Chat: *p.New}
	case "UPDATE":
		// The trigger ships the old snapshot on UPDATE; clients diff it
		// against their local view. Kept as the store has always behaved.
		if p.Old == nil {
			return nil, fmt.Errorf("%w: UPDATE without old row", errors.ErrMalformedPayload)
		}
		evt = AddToChat{Chat: *p.Old}
	case "DELETE":
		if p.Old == nil {
			return nil, fmt.Errorf("%w: DELETE without old row", errors.ErrMalformedPayload)
		}
		evt = RemoveFromChat{Chat: *p.Old}
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownOperation, p.Op)
	}

	users, ok := affectedUsers(p.Old, p.New)
	if !ok {
		return nil, nil
	}

	return &Notification{Users: users, Event: evt}, nil
}

// affectedUsers computes the users to notify for a chat mutation. The second
// return value is false when both snapshots are present with identical
// member sets, meaning there is nothing to dispatch.
func affectedUsers(old, new *domain.Chat) (domain.UserSet, bool) {
	switch {
	case old != nil && new != nil:
		oldMembers := lo.Uniq(old.Members)
		newMembers := lo.Uniq(new.Members)
		if len(oldMembers) == len(newMembers) && lo.Every(oldMembers, newMembers) {
			return nil, false
		}
		return domain.NewUserSet(lo.Union(oldMembers, newMembers)...), true
	case old != nil:
		return domain.NewUserSet(old.Members...), true
	case new != nil:
		return domain.NewUserSet(new.Members...), true
	default:
		return nil, false
	}
}
