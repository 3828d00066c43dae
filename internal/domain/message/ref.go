package message

import "github.com/google/uuid"

// Ref identifies a message either by id or by a previously loaded value.
// Either way the message is re-read from the store before use.
type Ref struct {
	id uuid.UUID
}

func ByID(id uuid.UUID) Ref {
	return Ref{id: id}
}

func ByValue(m Message) Ref {
	return Ref{id: m.ID}
}

func (r Ref) ID() uuid.UUID {
	return r.id
}
