package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OnboardedUser is created once a subject explicitly opts in.
// UserID and Name are fixed at creation; contact identifiers may change.
type OnboardedUser struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID              string             `bson:"user_id" json:"user_id"`
	Name                string             `bson:"name" json:"name"`
	ProviderID          string             `bson:"provider_id,omitempty" json:"provider_id,omitempty"`
	ProviderMessagingID string             `bson:"provider_messaging_id,omitempty" json:"provider_messaging_id,omitempty"`
	Email               string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone               string             `bson:"phone,omitempty" json:"phone,omitempty"`
	OnboardedAt         time.Time          `bson:"onboarded_at" json:"onboarded_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

// OnboardedUserContacts holds the mutable identifiers of an onboarded user
type OnboardedUserContacts struct {
	ProviderID          Optional[string] `json:"provider_id"`
	ProviderMessagingID Optional[string] `json:"provider_messaging_id"`
	Email               Optional[string] `json:"email"`
	Phone               Optional[string] `json:"phone"`
}

// ApplyTo overlays the present contact fields on u
func (c OnboardedUserContacts) ApplyTo(u *OnboardedUser) {
	if v, ok := c.ProviderID.Get(); ok {
		u.ProviderID = v
	}
	if v, ok := c.ProviderMessagingID.Get(); ok {
		u.ProviderMessagingID = v
	}
	if v, ok := c.Email.Get(); ok {
		u.Email = v
	}
	if v, ok := c.Phone.Get(); ok {
		u.Phone = v
	}
}
