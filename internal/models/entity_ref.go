package models

import "fmt"

type EntityKind string

const (
	EntityAttempt EntityKind = "attempt"
	EntityAnswer  EntityKind = "answer"
)

// EntityRef names one row of one entity type.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   uint       `json:"id"`
}

func RefAttempt(id uint) EntityRef {
	return EntityRef{Kind: EntityAttempt, ID: id}
}

func RefAnswer(id uint) EntityRef {
	return EntityRef{Kind: EntityAnswer, ID: id}
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}
