package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	domainMessage "github.com/shipliyo/smsgate/domains/message"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const messageCollection = "sms_messages"

// messageDocument matches the documents written by the first gateway
// deployment, so existing collections stay readable.
type messageDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	From            string             `bson:"from"`
	Body            string             `bson:"body"`
	Timestamp       time.Time          `bson:"timestamp"`
	DeviceID        string             `bson:"device_id"`
	ClientTimestamp string             `bson:"client_timestamp,omitempty"`
	Processed       bool               `bson:"processed"`
	Source          string             `bson:"source"`
	BotReply        *string            `bson:"bot_reply,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
}

type MessageMongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMessageMongoRepository connects and pings the server before returning.
func NewMessageMongoRepository(ctx context.Context, uri, database string) (*MessageMongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logrus.Infof("[STORE] connected to MongoDB database %s", database)
	return &MessageMongoRepository{
		client:     client,
		collection: client.Database(database).Collection(messageCollection),
	}, nil
}

func (r *MessageMongoRepository) InitSchema(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "from", Value: 1}}},
		{Keys: bson.D{{Key: "processed", Value: 1}}},
	})
	return err
}

func (r *MessageMongoRepository) Insert(ctx context.Context, msg *domainMessage.InboundMessage) error {
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = time.Now().UTC()
	}
	doc := messageDocument{
		From:            msg.Sender,
		Body:            msg.Body,
		Timestamp:       msg.ReceivedAt.UTC(),
		DeviceID:        msg.DeviceID,
		ClientTimestamp: msg.ClientTimestamp,
		Processed:       msg.Processed,
		Source:          string(msg.Source),
		BotReply:        msg.BotReply,
		CreatedAt:       time.Now().UTC(),
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return nil
}

func (r *MessageMongoRepository) MarkProcessed(ctx context.Context, id string, botReply *string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domainMessage.ErrMessageNotFound
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"processed": true, "bot_reply": botReply}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainMessage.ErrMessageNotFound
	}
	return nil
}

func (r *MessageMongoRepository) Find(ctx context.Context, filter domainMessage.Filter) ([]domainMessage.InboundMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []messageDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domainMessage.InboundMessage, len(docs))
	for i, d := range docs {
		out[i] = domainMessage.InboundMessage{
			ID:              d.ID.Hex(),
			Sender:          d.From,
			Body:            d.Body,
			ReceivedAt:      d.Timestamp.UTC(),
			DeviceID:        d.DeviceID,
			ClientTimestamp: d.ClientTimestamp,
			Processed:       d.Processed,
			Source:          domainMessage.Source(d.Source),
			BotReply:        d.BotReply,
		}
	}
	return out, nil
}

func (r *MessageMongoRepository) Recent(ctx context.Context, limit int) ([]domainMessage.InboundMessage, error) {
	return r.Find(ctx, domainMessage.Filter{Limit: limit})
}

func (r *MessageMongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MessageMongoRepository) Close(ctx context.Context) error {
	if err := r.client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return err
	}
	return nil
}

func mongoFilter(filter domainMessage.Filter) bson.M {
	query := bson.M{}
	if !filter.Since.IsZero() {
		query["timestamp"] = bson.M{"$gte": filter.Since.UTC()}
	}

	var conditions []bson.M
	if len(filter.ContainsAny) > 0 {
		anyOf := make([]bson.M, 0, len(filter.ContainsAny))
		for _, kw := range filter.ContainsAny {
			anyOf = append(anyOf, bson.M{"body": bodyRegex(kw)})
		}
		conditions = append(conditions, bson.M{"$or": anyOf})
	}
	for _, kw := range filter.ExcludesAll {
		conditions = append(conditions, bson.M{"body": bson.M{"$not": bodyRegex(kw)}})
	}
	if len(conditions) > 0 {
		query["$and"] = conditions
	}
	return query
}

func bodyRegex(kw string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(kw), Options: "i"}
}
