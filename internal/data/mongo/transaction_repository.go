package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketplace-wallet-ledger/internal/domain/transaction"
)

const (
	// TransactionCollectionName is the name of the transaction history collection in MongoDB
	TransactionCollectionName = "wallet_transactions"
)

// TransactionRepository implements the transaction.Repository interface for MongoDB
type TransactionRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewTransactionRepository creates a new MongoDB transaction history repository
func NewTransactionRepository(logger *slog.Logger, db *mongo.Database) transaction.Repository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new transaction entry after checking for duplicates.
// Returns ErrDuplicateEntry if an entry with the same transaction ID exists,
// which lets the outbox poller replay a batch without duplicating history.
func (r *TransactionRepository) Create(ctx context.Context, entry *transaction.Entry) error {
	collection := r.db.Collection(TransactionCollectionName)

	existingEntry, err := r.GetByTransactionID(ctx, entry.TransactionID)
	if err != nil && !errors.Is(err, transaction.ErrEntryNotFound{}) {
		r.logger.Error("Failed to check for existing transaction entry",
			"transaction_id", entry.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing transaction entry: %w", err)
	}

	if existingEntry != nil {
		return transaction.ErrDuplicateEntry{TransactionID: entry.TransactionID}
	}

	_, err = collection.InsertOne(ctx, entry)
	if err != nil {
		r.logger.Error("Failed to create transaction entry",
			"transaction_id", entry.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to create transaction entry: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves a transaction entry by its transaction ID.
// Returns ErrEntryNotFound if no entry exists for the given transaction.
func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*transaction.Entry, error) {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{"transaction_id": transactionID}
	var entry transaction.Entry
	err := collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, transaction.ErrEntryNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get transaction entry",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get transaction entry: %w", err)
	}

	return &entry, nil
}

// GetByReferenceID retrieves a transaction entry by its external reference.
// Returns nil if no entry exists with the given reference.
func (r *TransactionRepository) GetByReferenceID(ctx context.Context, referenceID string) (*transaction.Entry, error) {
	if referenceID == "" {
		return nil, errors.New("reference id cannot be empty")
	}

	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{"reference_id": referenceID}
	var entry transaction.Entry
	err := collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // No entry found with this reference
		}
		r.logger.Error("Failed to get transaction entry by reference id",
			"reference_id", referenceID,
			"error", err)
		return nil, fmt.Errorf("failed to get transaction entry by reference id: %w", err)
	}

	return &entry, nil
}

// GetByWalletID retrieves paginated transaction entries for a wallet.
// Results are sorted by creation time in descending order (newest first).
func (r *TransactionRepository) GetByWalletID(ctx context.Context, walletID string, limit, offset int) ([]*transaction.Entry, error) {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{"wallet_id": walletID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get transaction entries",
			"wallet_id", walletID,
			"error", err)
		return nil, fmt.Errorf("failed to get transaction entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*transaction.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode transaction entries",
			"wallet_id", walletID,
			"error", err)
		return nil, fmt.Errorf("failed to decode transaction entries: %w", err)
	}

	return entries, nil
}

// CountByWalletID counts the total number of transaction entries for a wallet
func (r *TransactionRepository) CountByWalletID(ctx context.Context, walletID string) (int64, error) {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{"wallet_id": walletID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count transaction entries",
			"wallet_id", walletID,
			"error", err)
		return 0, fmt.Errorf("failed to count transaction entries: %w", err)
	}

	return count, nil
}

// GetByTimeRange retrieves paginated transaction entries within the specified time window.
// Results are sorted by creation time in descending order for recent-first access.
func (r *TransactionRepository) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*transaction.Entry, error) {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{
		"created_at": bson.M{
			"$gte": startTime,
			"$lte": endTime,
		},
	}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get transaction entries by time range",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to get transaction entries by time range: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*transaction.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode transaction entries",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to decode transaction entries: %w", err)
	}

	return entries, nil
}
