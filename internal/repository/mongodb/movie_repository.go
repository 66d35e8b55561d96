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

type movieDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"Title"`
	Description string             `bson:"Description"`
	Genre       genreDoc           `bson:"Genre"`
	Director    directorDoc        `bson:"Director"`
	ImagePath   string             `bson:"ImagePath"`
	Actors      []string           `bson:"Actors"`
	Featured    bool               `bson:"Featured"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type genreDoc struct {
	Name        string `bson:"Name"`
	Description string `bson:"Description"`
}

type directorDoc struct {
	Name  string `bson:"Name"`
	Bio   string `bson:"Bio"`
	Birth string `bson:"Birth"`
	Death string `bson:"Date,omitempty"`
}

type MovieRepository struct {
	collection *mongo.Collection
}

// NewMovieRepository binds to the movies collection with a unique index on
// title.
func NewMovieRepository(ctx context.Context, db *mongo.Database) (repository.MovieRepository, error) {
	collection := db.Collection("movies")

	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateOne(indexCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Title", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create title index: %w", err)
	}

	return &MovieRepository{collection: collection}, nil
}

func (r *MovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	now := time.Now().UTC()
	movie.CreatedAt = now
	movie.UpdatedAt = now

	doc := toMovieDoc(movie)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("movie %q: %w", movie.Title, repository.ErrAlreadyExists)
		}
		return fmt.Errorf("insert movie: %w", err)
	}

	movie.ID = doc.ID.Hex()
	return nil
}

func (r *MovieRepository) List(ctx context.Context) ([]domain.Movie, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "Title", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []movieDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}

	movies := make([]domain.Movie, len(docs))
	for i := range docs {
		movies[i] = *docs[i].toDomain()
	}
	return movies, nil
}

func (r *MovieRepository) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("movie id %q: %w", id, repository.ErrNotFound)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *MovieRepository) GetByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	return r.findOne(ctx, bson.M{"Title": title})
}

func (r *MovieRepository) UpdateImagePath(ctx context.Context, id, imagePath string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("movie id %q: %w", id, repository.ErrNotFound)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{
		"$set": bson.M{"ImagePath": imagePath, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("update image path: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("movie %q: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *MovieRepository) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	docs, err := r.groupEmbedded(ctx, "$Genre.Name", "$Genre")
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}

	genres := make([]domain.Genre, 0, len(docs))
	for _, raw := range docs {
		var g genreDoc
		if err := unmarshalGrouped(raw, &g); err != nil {
			return nil, fmt.Errorf("decode genre: %w", err)
		}
		genres = append(genres, domain.Genre(g))
	}
	return genres, nil
}

func (r *MovieRepository) GetGenre(ctx context.Context, name string) (*domain.Genre, error) {
	movie, err := r.findOne(ctx, bson.M{"Genre.Name": name})
	if err != nil {
		return nil, err
	}
	return &movie.Genre, nil
}

func (r *MovieRepository) ListDirectors(ctx context.Context) ([]domain.Director, error) {
	docs, err := r.groupEmbedded(ctx, "$Director.Name", "$Director")
	if err != nil {
		return nil, fmt.Errorf("list directors: %w", err)
	}

	directors := make([]domain.Director, 0, len(docs))
	for _, raw := range docs {
		var d directorDoc
		if err := unmarshalGrouped(raw, &d); err != nil {
			return nil, fmt.Errorf("decode director: %w", err)
		}
		directors = append(directors, domain.Director(d))
	}
	return directors, nil
}

func (r *MovieRepository) GetDirector(ctx context.Context, name string) (*domain.Director, error) {
	movie, err := r.findOne(ctx, bson.M{"Director.Name": name})
	if err != nil {
		return nil, err
	}
	return &movie.Director, nil
}

func (r *MovieRepository) findOne(ctx context.Context, filter bson.M) (*domain.Movie, error) {
	var doc movieDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("movie: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("find movie: %w", err)
	}
	return doc.toDomain(), nil
}

// groupEmbedded deduplicates an embedded subdocument across the collection,
// keyed by keyExpr, keeping the first occurrence of valueExpr.
func (r *MovieRepository) groupEmbedded(ctx context.Context, keyExpr, valueExpr string) ([]bson.Raw, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: keyExpr},
			{Key: "value", Value: bson.D{{Key: "$first", Value: valueExpr}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Value bson.Raw `bson:"value"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	docs := make([]bson.Raw, len(rows))
	for i := range rows {
		docs[i] = rows[i].Value
	}
	return docs, nil
}

func unmarshalGrouped(raw bson.Raw, out any) error {
	return bson.Unmarshal(raw, out)
}

func toMovieDoc(movie *domain.Movie) movieDoc {
	actors := movie.Actors
	if actors == nil {
		actors = []string{}
	}
	return movieDoc{
		Title:       movie.Title,
		Description: movie.Description,
		Genre:       genreDoc(movie.Genre),
		Director:    directorDoc(movie.Director),
		ImagePath:   movie.ImagePath,
		Actors:      actors,
		Featured:    movie.Featured,
		CreatedAt:   movie.CreatedAt,
		UpdatedAt:   movie.UpdatedAt,
	}
}

func (d *movieDoc) toDomain() *domain.Movie {
	return &domain.Movie{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Genre:       domain.Genre(d.Genre),
		Director:    domain.Director(d.Director),
		ImagePath:   d.ImagePath,
		Actors:      d.Actors,
		Featured:    d.Featured,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
