package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Creates the unique indexes the API relies on to serialize duplicate
// registrations and code collisions.
// Usage: DB_URI=... DB_NAME=... go run scripts/create_indexes.go
func main() {
	uri := os.Getenv("DB_URI")
	name := os.Getenv("DB_NAME")
	if uri == "" || name == "" {
		fmt.Println("Usage: DB_URI=... DB_NAME=... go run scripts/create_indexes.go")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		fmt.Printf("Error connecting to MongoDB: %v\n", err)
		os.Exit(1)
	}
	defer client.Disconnect(ctx)

	db := client.Database(name)

	_, err = db.Collection("inviteCodes").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		fmt.Printf("Error creating inviteCodes.code index: %v\n", err)
		os.Exit(1)
	}

	_, err = db.Collection("registrations").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// sparse so invite registrations without a wallet don't collide
			Keys:    bson.D{{Key: "walletAddress", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		fmt.Printf("Error creating registrations indexes: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Indexes created:")
	fmt.Println("  inviteCodes.code (unique)")
	fmt.Println("  registrations.email (unique)")
	fmt.Println("  registrations.walletAddress (unique, sparse)")
}
