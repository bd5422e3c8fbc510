// Package event defines the typed change events produced by the engine and
// the decoding of raw store notifications into them.
package event

import (
	"encoding/json"
	"fmt"

	"notify-lab/domain"
	"notify-lab/errors"
)

// Raw is a notification exactly as received from the store's pub/sub
// facility: a channel name and an opaque text payload.
type Raw struct {
	Channel string
	Payload string
}

type Kind string

const (
	KindNewChat        Kind = "NewChat"
	KindAddToChat      Kind = "AddToChat"
	KindRemoveFromChat Kind = "RemoveFromChat"
	KindNewMessage     Kind = "NewMessage"
)

// ChangeEvent is the union of events pushed to clients. Implementations are
// immutable value types: one decoded instance is shared by every recipient
// of a dispatch.
type ChangeEvent interface {
	Kind() Kind
	// Payload returns the record serialized on the data line of the frame.
	Payload() any
}

type NewChat struct{ Chat domain.Chat }

func (e NewChat) Kind() Kind   { return KindNewChat }
func (e NewChat) Payload() any { return e.Chat }

type AddToChat struct{ Chat domain.Chat }

func (e AddToChat) Kind() Kind   { return KindAddToChat }
func (e AddToChat) Payload() any { return e.Chat }

type RemoveFromChat struct{ Chat domain.Chat }

func (e RemoveFromChat) Kind() Kind   { return KindRemoveFromChat }
func (e RemoveFromChat) Payload() any { return e.Chat }

type NewMessage struct{ Message domain.Message }

func (e NewMessage) Kind() Kind   { return KindNewMessage }
func (e NewMessage) Payload() any { return e.Message }

// Marshal serializes the event payload for the wire. The kind travels
// separately on the event-type line of the frame.
func Marshal(e ChangeEvent) ([]byte, error) {
	return json.Marshal(e.Payload())
}

// Unmarshal rebuilds a ChangeEvent from its kind and payload bytes.
// Used by stream consumers (viewer, tests) to reverse Marshal.
func Unmarshal(kind Kind, data []byte) (ChangeEvent, error) {
	switch kind {
	case KindNewChat, KindAddToChat, KindRemoveFromChat:
		var chat domain.Chat
		if err := json.Unmarshal(data, &chat); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
		}
		switch kind {
		case KindNewChat:
			return NewChat{Chat: chat}, nil
		case KindAddToChat:
			return AddToChat{Chat: chat}, nil
		default:
			return RemoveFromChat{Chat: chat}, nil
		}
	case KindNewMessage:
		var msg domain.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
		}
		return NewMessage{Message: msg}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEventKind, kind)
	}
}
