package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPostRepository implements ContentRepository on the MongoDB posts
// collection. Post ids are numeric and allocated from the counters collection so
// feeds from either backend order the same way.
type MongoPostRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{
		collection: db.Collection("posts"),
		counters:   db.Collection("counters"),
	}
}

// JoinsTx is false: MongoDB writes commit independently of PostgreSQL.
func (r *MongoPostRepository) JoinsTx() bool { return false }

// EnsureIndexes creates the (author_id, created_at, _id) index the feed query uses.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	})
	return classifyMongo("posts.ensure_indexes", err)
}

// Create allocates the next id and inserts the post
func (r *MongoPostRepository) Create(ctx context.Context, post *models.Micropost) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	post.ID = uint(id)
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	_, err = r.collection.InsertOne(ctx, post)
	return classifyMongo("posts.create", err)
}

func (r *MongoPostRepository) QueryByAuthors(ctx context.Context, authorIDs []uint, offset, limit int) ([]models.Micropost, error) {
	posts := []models.Micropost{}
	if len(authorIDs) == 0 {
		return posts, nil
	}
	findOptions := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, authorFilter(authorIDs), findOptions)
	if err != nil {
		return nil, classifyMongo("posts.query_by_authors", err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, classifyMongo("posts.query_by_authors", err)
	}
	return posts, nil
}

func (r *MongoPostRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (int64, error) {
	if len(authorIDs) == 0 {
		return 0, nil
	}
	count, err := r.collection.CountDocuments(ctx, authorFilter(authorIDs))
	if err != nil {
		return 0, classifyMongo("posts.count_by_authors", err)
	}
	return count, nil
}

func (r *MongoPostRepository) DeleteByAuthor(ctx context.Context, authorID uint) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"author_id": authorID})
	if err != nil {
		return 0, classifyMongo("posts.delete_by_author", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoPostRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Value int64 `bson:"value"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "posts"},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, classifyMongo("posts.next_id", err)
	}
	return counter.Value, nil
}

func authorFilter(authorIDs []uint) bson.M {
	return bson.M{"author_id": bson.M{"$in": authorIDs}}
}

func classifyMongo(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperror.Wrap(op, apperror.NotFound, "document not found", err)
	case mongo.IsDuplicateKeyError(err):
		return apperror.Wrap(op, apperror.Conflict, "document already exists", err)
	case mongo.IsTimeout(err), mongo.IsNetworkError(err), errors.Is(err, context.DeadlineExceeded):
		return apperror.Wrap(op, apperror.TransientStore, "document store unavailable", err)
	}
	return apperror.Wrap(op, apperror.Unknown, "document store error", err)
}
