package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const defaultDatabase = "authgate"

// Connect opens a MongoDB client, pings it and returns the database named
// by dbName, or by the URI path when dbName is empty.
func Connect(ctx context.Context, mongoURI, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(mongoURI).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	if dbName == "" {
		dbName = DatabaseName(mongoURI)
	}
	return client, client.Database(dbName), nil
}

// DatabaseName extracts the database from a connection string, falling back
// to the default when it names none. Seed lists such as
// "mongodb://a:27017,b:27017/db" are supported.
func DatabaseName(mongoURI string) string {
	// Parsing an SRV URI resolves DNS records. The database name never
	// depends on them, so read it as a plain URI instead.
	if rest, ok := strings.CutPrefix(mongoURI, connstring.SchemeMongoDBSRV+"://"); ok {
		mongoURI = connstring.SchemeMongoDB + "://" + rest
	}
	cs, err := connstring.ParseAndValidate(mongoURI)
	if err != nil || cs.Database == "" {
		return defaultDatabase
	}
	return cs.Database
}

func Disconnect(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}
