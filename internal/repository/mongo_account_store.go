package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/authgate-backend/internal/models"
)

const AccountsCollection = "accounts"

type MongoAccountStore struct {
	coll      *mongo.Collection
	validator Validator
	now       func() time.Time
}

func NewMongoAccountStore(db *mongo.Database, v Validator) *MongoAccountStore {
	return &MongoAccountStore{
		coll:      db.Collection(AccountsCollection),
		validator: v,
		now:       time.Now,
	}
}

// EnsureIndexes creates the unique email index and the lookup indexes used by
// the verification and session flows.
func (s *MongoAccountStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userName", Value: 1}},
			Options: options.Index().SetName("uniq_user_name").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "otp", Value: 1}},
			Options: options.Index().SetName("otp_lookup").
				SetPartialFilterExpression(bson.M{"otp": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "forgotPasswordToken", Value: 1}},
			Options: options.Index().SetName("reset_token_lookup").
				SetPartialFilterExpression(bson.M{"forgotPasswordToken": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "refreshToken", Value: 1}},
			Options: options.Index().SetName("refresh_token_lookup").
				SetPartialFilterExpression(bson.M{"refreshToken": bson.M{"$exists": true}}),
		},
	}

	_, err := s.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *MongoAccountStore) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	var acc models.Account
	if err := s.coll.FindOne(ctx, filter).Decode(&acc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

func (s *MongoAccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.findOne(ctx, bson.M{"email": normalize(email)})
}

func (s *MongoAccountStore) FindByID(ctx context.Context, id string) (*models.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoAccountStore) FindByUserName(ctx context.Context, userName string) (*models.Account, error) {
	return s.findOne(ctx, bson.M{"userName": normalize(userName)})
}

func (s *MongoAccountStore) FindByOTP(ctx context.Context, otpHash string, now time.Time) (*models.Account, error) {
	if otpHash == "" {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"otp": otpHash, "otpExpires": bson.M{"$gt": now}})
}

func (s *MongoAccountStore) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.Account, error) {
	if tokenHash == "" {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"forgotPasswordToken": tokenHash, "forgotPasswordTokenExpiry": bson.M{"$gt": now}})
}

func (s *MongoAccountStore) FindByRefreshToken(ctx context.Context, tokenHash string) (*models.Account, error) {
	if tokenHash == "" {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"refreshToken": tokenHash})
}

func (s *MongoAccountStore) Create(ctx context.Context, acc *models.Account) error {
	if err := prepare(acc, s.validator, true, s.now()); err != nil {
		return err
	}
	if acc.ID.IsZero() {
		acc.ID = primitive.NewObjectID()
	}

	if _, err := s.coll.InsertOne(ctx, acc); err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (s *MongoAccountStore) Save(ctx context.Context, acc *models.Account, opts ...SaveOption) error {
	o := applySaveOptions(opts)
	if err := prepare(acc, s.validator, !o.skipValidation, s.now()); err != nil {
		return err
	}

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": acc.ID}, acc)
	if err != nil {
		return mapWriteError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoAccountStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoAccountStore) RecordFailedLogin(ctx context.Context, id string, threshold int, lockUntil time.Time) (*models.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	now := s.now()
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var acc models.Account
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$inc": bson.M{"loginAttempts": 1},
			"$set": bson.M{"updatedAt": now},
		},
		after,
	).Decode(&acc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if acc.LoginAttempts < threshold || acc.IsAccountLocked {
		return &acc, nil
	}

	// Only the request that crosses the threshold sets the lock window.
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "isAccountLocked": false},
		bson.M{"$set": bson.M{
			"isAccountLocked": true,
			"blockedUntil":    lockUntil,
			"updatedAt":       now,
		}},
		after,
	).Decode(&acc)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return s.findOne(ctx, bson.M{"_id": oid})
	}
	return &acc, nil
}

func (s *MongoAccountStore) RecordFailedOTP(ctx context.Context, id string, maxAttempts int) (*models.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	now := s.now()
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var acc models.Account
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$inc": bson.M{"otpAttempts": 1},
			"$set": bson.M{"updatedAt": now},
		},
		after,
	).Decode(&acc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if acc.OTPAttempts < maxAttempts || acc.OTP == "" {
		return &acc, nil
	}

	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "otpAttempts": bson.M{"$gte": maxAttempts}},
		bson.M{
			"$unset": bson.M{"otp": "", "otpExpires": ""},
			"$set":   bson.M{"updatedAt": now},
		},
		after,
	).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return s.findOne(ctx, bson.M{"_id": oid})
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func mapWriteError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	if strings.Contains(err.Error(), "uniq_user_name") {
		return ErrDuplicateName
	}
	return ErrDuplicateEmail
}
