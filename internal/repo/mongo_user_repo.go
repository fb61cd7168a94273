package repo

import (
	"context"
	"errors"
	"time"

	dom "github.com/hirmezb/tasktracker/internal/domain"
	"github.com/hirmezb/tasktracker/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
}

// MongoUserRepo implements UserRepo on a users collection with a unique email index.
type MongoUserRepo struct {
	coll *mongo.Collection
}

func NewMongoUserRepo(ctx context.Context, db *mongo.Database) (*MongoUserRepo, error) {
	r := &MongoUserRepo{coll: db.Collection(usersCollection)}
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.M{"email": utils.NormalizeEmail(email)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	return dom.User{
		ID:           doc.ID,
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt.UTC(),
	}, nil
}

func (r *MongoUserRepo) Create(ctx context.Context, u dom.User) (dom.User, error) {
	u.Email = utils.NormalizeEmail(u.Email)
	_, err := r.coll.InsertOne(ctx, userDocument{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	})
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return dom.User{}, ErrDuplicate
		}
		return dom.User{}, err
	}
	return u, nil
}
