package domain

import (
	"errors"
	"time"
)

var ErrValidation = errors.New("validation failed")
var ErrNotReady = errors.New("session not ready")
var ErrPersistence = errors.New("persistence failure")
var ErrSubscription = errors.New("subscription failure")

// Supplier is the registry's only entity. Identifier holds the normalized
// CNPJ digits and doubles as the document key inside a namespace.
type Supplier struct {
	Identifier string    `json:"identifier" bson:"identifier"`
	Name       string    `json:"name" bson:"name"`
	Address    string    `json:"address" bson:"address"`
	Contact    string    `json:"contact" bson:"contact"`
	LogoRef    string    `json:"logoRef" bson:"logo_ref"` // opaque: data URI or external URL
	Notes      string    `json:"notes" bson:"notes"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}
