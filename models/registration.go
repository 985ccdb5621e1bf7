package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registration types accepted by the reserve endpoint.
const (
	RegistrationTypeNFT    = "nft"
	RegistrationTypeInvite = "invite"
)

// Registration represents the structure of a registration document in MongoDB.
// A registration is immutable once created.
type Registration struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Email            string              `bson:"email" json:"email" index:"unique"`
	WalletAddress    string              `bson:"walletAddress,omitempty" json:"walletAddress,omitempty" index:"unique,sparse"`
	InviteCodeID     *primitive.ObjectID `bson:"inviteCodeId,omitempty" json:"inviteCodeId,omitempty"`
	RegistrationType string              `bson:"registrationType" json:"registrationType"`
	RegisteredAt     time.Time           `bson:"registeredAt" json:"registeredAt"`
}

// Public returns the projection of a registration exposed over the wire.
func (r *Registration) Public() RegistrationPublic {
	return RegistrationPublic{
		Email:        r.Email,
		Type:         r.RegistrationType,
		RegisteredAt: r.RegisteredAt,
	}
}

// RegistrationPublic is the wire projection of a registration
type RegistrationPublic struct {
	Email        string    `json:"email"`
	Type         string    `json:"type"`
	RegisteredAt time.Time `json:"registeredAt"`
}
