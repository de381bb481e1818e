package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/vajra/internal/models"
)

// UsersCollection is the collection holding user documents.
const UsersCollection = "users"

// MongoStore keeps each user as one document with embedded addresses and orders.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore wraps the users collection.
func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

// EnsureIndexes creates the unique email index and the order lookup index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "orders.orderId", Value: 1}}},
	})
	return err
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = models.NewID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	normalize(user)

	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindByOrderID(ctx context.Context, orderID string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"orders.orderId": orderID})
}

func (s *MongoStore) SetResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	return s.updateUser(ctx, userID, bson.M{
		"$set": bson.M{"otp": code, "otpExpiry": expiresAt, "updatedAt": time.Now().UTC()},
	})
}

func (s *MongoStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.updateUser(ctx, userID, bson.M{
		"$set":   bson.M{"passwordHash": passwordHash, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"otp": "", "otpExpiry": ""},
	})
}

func (s *MongoStore) AddAddress(ctx context.Context, userID string, addr models.Address) (bool, error) {
	if addr.ID == "" {
		addr.ID = models.NewID()
	}

	filter := bson.M{
		"_id": userID,
		"addresses": bson.M{"$not": bson.M{
			"$elemMatch": bson.M{"line1": addr.Line1, "zip": addr.Zip},
		}},
	}
	res, err := s.col.UpdateOne(ctx, filter, bson.M{
		"$push": bson.M{"addresses": addr},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return false, fmt.Errorf("push address: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	// Nothing matched: either the user is missing or the address is a duplicate.
	count, err := s.col.CountDocuments(ctx, bson.M{"_id": userID})
	if err != nil {
		return false, fmt.Errorf("count user: %w", err)
	}
	if count == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

func (s *MongoStore) AddOrder(ctx context.Context, userID string, order models.Order) error {
	return s.updateUser(ctx, userID, bson.M{
		"$push": bson.M{"orders": order},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (s *MongoStore) SetOrderSession(ctx context.Context, orderID, sessionID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"orders.orderId": orderID},
		bson.M{"$set": bson.M{"orders.$.paymentSessionId": sessionID}},
	)
	if err != nil {
		return fmt.Errorf("set order session: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) MarkOrderPaid(ctx context.Context, orderID string, paidAt time.Time) (bool, error) {
	filter := bson.M{"orders": bson.M{"$elemMatch": bson.M{
		"orderId": orderID,
		"status":  bson.M{"$ne": models.OrderStatusPaid},
	}}}
	res, err := s.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"orders.$.status": models.OrderStatusPaid,
		"orders.$.paidAt": paidAt,
		"updatedAt":       time.Now().UTC(),
	}})
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := s.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	normalize(&user)
	return &user, nil
}

func (s *MongoStore) updateUser(ctx context.Context, userID string, update bson.M) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
