package databases

// go generate: mockery --name InviteCodeDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mocagate/gating-api/models"
)

const inviteCodeName = "inviteCodes"

// InviteCodeDatabase contains the methods to use with the inviteCode database
type InviteCodeDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.InviteCode, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.InviteCode, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, inviteCode models.InviteCode, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error
	ConsumeUse(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type inviteCodeDatabase struct {
	db DatabaseHelper
}

// NewInviteCodeDatabase initializes a new instance of inviteCode database with the provided db connection
func NewInviteCodeDatabase(db DatabaseHelper) InviteCodeDatabase {
	return &inviteCodeDatabase{
		db: db,
	}
}

func (c *inviteCodeDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.InviteCode, error) {
	inviteCode := &models.InviteCode{}
	err := c.db.Collection(inviteCodeName).FindOne(ctx, filter, opts...).Decode(&inviteCode)
	if err != nil {
		return nil, err
	}
	return inviteCode, nil
}

func (c *inviteCodeDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.InviteCode, error) {
	var inviteCodes []models.InviteCode
	cur := c.db.Collection(inviteCodeName).Find(ctx, filter, opts...)
	err := cur.Decode(&inviteCodes)
	if err != nil {
		return nil, err
	}
	return inviteCodes, nil
}

func (c *inviteCodeDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(inviteCodeName).CountDocuments(ctx, filter, opts...)
}

func (c *inviteCodeDatabase) InsertOne(ctx context.Context, inviteCode models.InviteCode, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(inviteCodeName).InsertOne(ctx, inviteCode, opts...)
}

func (c *inviteCodeDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(inviteCodeName).UpdateOne(ctx, filter, update, opts...)
	return err
}

// ConsumeUse atomically increments currentUses on the matching code, guarded
// so currentUses can never exceed maxUses. Returns false when the code had no
// uses left at the time of the update.
func (c *inviteCodeDatabase) ConsumeUse(ctx context.Context, id primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id":   id,
		"$expr": bson.M{"$lt": bson.A{"$currentUses", "$maxUses"}},
	}
	update := bson.M{"$inc": bson.M{"currentUses": 1}}

	res, err := c.db.Collection(inviteCodeName).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount() > 0, nil
}
