package databases

// go generate: mockery --name RegistrationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mocagate/gating-api/models"
)

const registrationName = "registrations"

// RegistrationDatabase contains the methods to use with the registration database
type RegistrationDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Registration, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Registration, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, registration models.Registration, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type registrationDatabase struct {
	db DatabaseHelper
}

// NewRegistrationDatabase initializes a new instance of registration database with the provided db connection
func NewRegistrationDatabase(db DatabaseHelper) RegistrationDatabase {
	return &registrationDatabase{
		db: db,
	}
}

func (c *registrationDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Registration, error) {
	registration := &models.Registration{}
	err := c.db.Collection(registrationName).FindOne(ctx, filter, opts...).Decode(&registration)
	if err != nil {
		return nil, err
	}
	return registration, nil
}

func (c *registrationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Registration, error) {
	var registrations []models.Registration
	cur := c.db.Collection(registrationName).Find(ctx, filter, opts...)
	err := cur.Decode(&registrations)
	if err != nil {
		return nil, err
	}
	return registrations, nil
}

func (c *registrationDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(registrationName).CountDocuments(ctx, filter, opts...)
}

func (c *registrationDatabase) InsertOne(ctx context.Context, registration models.Registration, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(registrationName).InsertOne(ctx, registration, opts...)
}
