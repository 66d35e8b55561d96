package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"myflix-api/internal/domain"
	"myflix-api/internal/repository"
)

// userDoc is the BSON shape of a user document. Field names match the
// historical collection layout.
type userDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Username       string             `bson:"Username"`
	Password       string             `bson:"Password"`
	Email          string             `bson:"Email"`
	Birthday       *time.Time         `bson:"Birthday,omitempty"`
	FavoriteMovies []string           `bson:"FavoriteMovies"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository binds to the users collection and ensures the unique
// username index. The index closes the check-then-create race on concurrent
// registrations: the second insert fails with a duplicate-key error.
func NewUserRepository(ctx context.Context, db *mongo.Database) (repository.UserRepository, error) {
	collection := db.Collection("users")

	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateOne(indexCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create username index: %w", err)
	}

	return &UserRepository{collection: collection}, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	doc := toUserDoc(user)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %q: %w", user.Username, repository.ErrAlreadyExists)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	user.ID = doc.ID.Hex()
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var doc userDoc
	err := r.collection.FindOne(ctx, bson.M{"Username": username}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "Username", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]domain.User, len(docs))
	for i := range docs {
		users[i] = *docs[i].toDomain()
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if user.PasswordHash != "" {
		set["Password"] = user.PasswordHash
	}
	if user.Email != "" {
		set["Email"] = user.Email
	}
	if user.Birthday != nil {
		set["Birthday"] = user.Birthday
	}

	return r.findOneAndUpdate(ctx, user.Username, bson.M{"$set": set})
}

func (r *UserRepository) Delete(ctx context.Context, username string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"Username": username})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) AddFavorite(ctx context.Context, username, movieID string) (*domain.User, error) {
	return r.findOneAndUpdate(ctx, username, bson.M{
		"$addToSet": bson.M{"FavoriteMovies": movieID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *UserRepository) RemoveFavorite(ctx context.Context, username, movieID string) (*domain.User, error) {
	return r.findOneAndUpdate(ctx, username, bson.M{
		"$pull": bson.M{"FavoriteMovies": movieID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, username string, update bson.M) (*domain.User, error) {
	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"Username": username},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	var doc userDoc
	if err := result.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode updated user: %w", err)
	}
	return doc.toDomain(), nil
}

func toUserDoc(user *domain.User) userDoc {
	favorites := user.FavoriteMovies
	if favorites == nil {
		favorites = []string{}
	}
	return userDoc{
		Username:       user.Username,
		Password:       user.PasswordHash,
		Email:          user.Email,
		Birthday:       user.Birthday,
		FavoriteMovies: favorites,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		PasswordHash:   d.Password,
		Email:          d.Email,
		Birthday:       d.Birthday,
		FavoriteMovies: d.FavoriteMovies,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
