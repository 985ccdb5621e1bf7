package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InviteCode represents the structure of an invite code document in MongoDB
type InviteCode struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code          string             `bson:"code" json:"code" index:"unique"`
	ReferrerEmail string             `bson:"referrerEmail,omitempty" json:"referrerEmail,omitempty"`
	MaxUses       int                `bson:"maxUses" json:"maxUses"`
	CurrentUses   int                `bson:"currentUses" json:"currentUses"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// UsesLeft reports how many uses remain on the code.
func (ic *InviteCode) UsesLeft() int {
	return ic.MaxUses - ic.CurrentUses
}

// Status derives the admin-facing status label. Inactive wins over exhausted.
func (ic *InviteCode) Status() string {
	switch {
	case !ic.IsActive:
		return "inactive"
	case ic.CurrentUses >= ic.MaxUses:
		return "exhausted"
	default:
		return "active"
	}
}
