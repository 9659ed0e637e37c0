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

// MessageRepository defines the interface for direct-message operations
type MessageRepository interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessageByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	GetConversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error)
	GetMessagesBetween(ctx context.Context, userID, otherID primitive.ObjectID, skip, limit int64) ([]models.Message, error)
	MarkRead(ctx context.Context, senderID, receiverID primitive.ObjectID) error
	DeleteMessage(ctx context.Context, id primitive.ObjectID) error
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

// CreateMessage creates a new message in MongoDB
func (r *MongoMessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	message.IsRead = false
	_, err := r.collection.InsertOne(ctx, message)
	return err
}

// GetMessageByID retrieves a message by ID
func (r *MongoMessageRepository) GetMessageByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var message models.Message
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

// GetConversations aggregates every message involving userID into one
// row per counterpart: the most recent message plus the count of their
// messages userID has not read. The counterpart profile is looked up in
// the same pipeline with password and email projected out.
func (r *MongoMessageRepository) GetConversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"$or": bson.A{
				bson.M{"sender": userID},
				bson.M{"receiver": userID},
			},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"$cond": bson.A{
					bson.M{"$eq": bson.A{"$sender", userID}},
					"$receiver",
					"$sender",
				},
			},
			"last_message": bson.M{"$first": "$$ROOT"},
			"unread_count": bson.M{
				"$sum": bson.M{
					"$cond": bson.A{
						bson.M{"$and": bson.A{
							bson.M{"$eq": bson.A{"$receiver", userID}},
							bson.M{"$eq": bson.A{"$is_read", false}},
						}},
						1,
						0,
					},
				},
			},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$project", Value: bson.M{
			"user.password": 0,
			"user.email":    0,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_message.created_at", Value: -1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	conversations := make([]models.Conversation, 0)
	if err = cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// GetMessagesBetween retrieves a newest-first page of the messages
// exchanged between userID and otherID
func (r *MongoMessageRepository) GetMessagesBetween(ctx context.Context, userID, otherID primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"sender": userID, "receiver": otherID},
			bson.M{"sender": otherID, "receiver": userID},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := make([]models.Message, 0)
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flips the read flag on every unread message from senderID to
// receiverID
func (r *MongoMessageRepository) MarkRead(ctx context.Context, senderID, receiverID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"sender": senderID, "receiver": receiverID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	return err
}

// DeleteMessage deletes a message by ID
func (r *MongoMessageRepository) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}
