package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lightning66/GiftMe/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection  = "users"
	signInCollection = "signin_logs"
)

// MongoStore keeps users as one document each, with items embedded.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	logs   *mongo.Collection
	now    func() time.Time
}

// OpenMongo connects to uri, verifies the connection and ensures the
// unique email index.
func OpenMongo(uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: ping MongoDB: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client: client,
		users:  db.Collection(usersCollection),
		logs:   db.Collection(signInCollection),
		now:    time.Now,
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		slog.Warn("could not create users email index", "error", err)
	}
	return s, nil
}

func (s *MongoStore) UpsertUser(ctx context.Context, info models.UserInfo, provider string) (bool, error) {
	user := newUser(info, provider, s.now)
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": info.Email},
		bson.M{"$setOnInsert": user},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("store: upsert user: %w", err)
	}
	return res.UpsertedCount == 1, nil
}

func (s *MongoStore) GetUser(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	if u.Items == nil {
		u.Items = []models.Item{}
	}
	return &u, nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, email string) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return fmt.Errorf("store: delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *MongoStore) AppendItem(ctx context.Context, email string, item models.Item) (*models.Item, error) {
	item = stampItem(item, s.now)
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$push": bson.M{"items": item}},
	)
	if err != nil {
		return nil, fmt.Errorf("store: append item: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrUserNotFound
	}
	return &item, nil
}

func (s *MongoStore) ListItems(ctx context.Context, email string) ([]models.Item, error) {
	u, err := s.GetUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return u.Items, nil
}

// DeleteItem resolves index to the item's ID, then pulls that ID. A
// concurrent change that removes the item first yields ErrItemNotFound.
func (s *MongoStore) DeleteItem(ctx context.Context, email string, index int) error {
	items, err := s.ListItems(ctx, email)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return ErrItemNotFound
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$pull": bson.M{"items": bson.M{"id": items[index].ID}}},
	)
	if err != nil {
		return fmt.Errorf("store: delete item: %w", err)
	}
	if res.ModifiedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *MongoStore) LogSignIn(ctx context.Context, ev models.SignInEvent) error {
	if _, err := s.logs.InsertOne(ctx, ev); err != nil {
		return fmt.Errorf("store: log sign-in: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
