package persistence

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestMongoDB_Database(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	// Disconnected client is enough here; no commands are issued
	dummyClient, _ := mongo.Connect(context.TODO(), options.Client().ApplyURI("mongodb://localhost:27017"))
	dummyDB := dummyClient.Database("wallet_ledger_test")

	mdb := &MongoDB{
		logger:   logger,
		client:   dummyClient,
		database: dummyDB,
	}
	assert.Equal(t, dummyDB, mdb.Database(), "Database() should return the initialized database instance")
	assert.NotNil(t, mdb.Collection("wallet_transactions"))
}
