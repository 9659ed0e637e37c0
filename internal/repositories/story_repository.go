package repositories

import (
	"context"
	"time"

	"github.com/shariar-hasan/instaflow/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StoryRepository defines the interface for story operations
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	GetStoriesByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Story, error)
	GetActiveStoriesByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Story, error)
	AddView(ctx context.Context, storyID, viewerID primitive.ObjectID) (added bool, err error)
	DeleteStory(ctx context.Context, id primitive.ObjectID) error
	DeleteExpiredStories(ctx context.Context) error
}

// MongoStoryRepository implements StoryRepository for MongoDB
type MongoStoryRepository struct {
	collection *mongo.Collection
}

// NewMongoStoryRepository creates a new MongoStoryRepository
func NewMongoStoryRepository(db *mongo.Database) *MongoStoryRepository {
	return &MongoStoryRepository{collection: db.Collection("stories")}
}

// EnsureIndexes creates the TTL index that purges stories once their
// expiry timestamp passes. Feed queries also filter on expires_at, so
// a story is invisible the moment it expires even before the purge runs.
func (r *MongoStoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return err
}

// CreateStory creates a new story expiring 24 hours after creation
func (r *MongoStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	story.CreatedAt = time.Now()
	story.ExpiresAt = story.CreatedAt.Add(models.StoryTTL)
	if story.Views == nil {
		story.Views = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, story)
	return err
}

// GetStoryByID retrieves a story by ID
func (r *MongoStoryRepository) GetStoryByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	var story models.Story
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&story)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return &story, nil
}

// GetStoriesByUserID retrieves one user's stories, oldest first
func (r *MongoStoryRepository) GetStoriesByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Story, error) {
	return r.findStories(ctx, bson.M{"user_id": userID})
}

// GetActiveStoriesByUserIDs retrieves unexpired stories owned by any of
// userIDs, in insertion order
func (r *MongoStoryRepository) GetActiveStoriesByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Story, error) {
	if len(userIDs) == 0 {
		return []models.Story{}, nil
	}
	filter := bson.M{
		"user_id":    bson.M{"$in": userIDs},
		"expires_at": bson.M{"$gt": time.Now()},
	}
	return r.findStories(ctx, filter)
}

func (r *MongoStoryRepository) findStories(ctx context.Context, filter bson.M) ([]models.Story, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stories := make([]models.Story, 0)
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// AddView records viewerID in the story's views set. Returns whether the
// viewer was newly added, so the caller emits at most one notification
// per viewer no matter how many times the story is opened.
func (r *MongoStoryRepository) AddView(ctx context.Context, storyID, viewerID primitive.ObjectID) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": storyID},
		bson.M{"$addToSet": bson.M{"views": viewerID}})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrStoryNotFound
	}
	return res.ModifiedCount > 0, nil
}

// DeleteStory deletes a story by ID
func (r *MongoStoryRepository) DeleteStory(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrStoryNotFound
	}
	return nil
}

// DeleteExpiredStories removes every story past its expiry. The TTL
// index already covers this; kept as a manual fallback for stores
// running without TTL monitors.
func (r *MongoStoryRepository) DeleteExpiredStories(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now()}})
	return err
}
