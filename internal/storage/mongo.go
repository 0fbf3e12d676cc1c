package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/adanyl0v/todo-reminders/internal/models"
)

// Concurrent writers can make the compare-and-swap in Update miss.
const mongoUpdateAttempts = 3

var errMongoUpdateConflict = errors.New("storage: concurrent update conflict")

type mongoTask struct {
	ID        string    `bson:"_id"`
	Text      string    `bson:"text"`
	Completed bool      `bson:"completed"`
	DueDate   string    `bson:"dueDate,omitempty"`
	DueTime   string    `bson:"dueTime,omitempty"`
	Notified  bool      `bson:"notified"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func newMongoTask(t *models.Task) mongoTask {
	return mongoTask{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		DueDate:   t.DueDate,
		DueTime:   t.DueTime,
		Notified:  t.Notified,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (d mongoTask) model() *models.Task {
	return &models.Task{
		ID:        d.ID,
		Text:      d.Text,
		Completed: d.Completed,
		DueDate:   d.DueDate,
		DueTime:   d.DueTime,
		Notified:  d.Notified,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type MongoRepository struct {
	logger zerolog.Logger
	client *mongo.Client
	todos  *mongo.Collection
}

func OpenMongo(ctx context.Context, logger zerolog.Logger, uri, database, collection string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	r := &MongoRepository{
		logger: logger,
		client: client,
		todos:  client.Database(database).Collection(collection),
	}

	_, err = r.todos.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create mongo index: %w", err)
	}
	return r, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.todos.Find(ctx, bson.D{}, opts)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to find tasks")
		return nil, err
	}

	var docs []mongoTask
	err = cursor.All(ctx, &docs)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to decode tasks")
		return nil, err
	}

	tasks := make([]*models.Task, len(docs))
	for i, d := range docs {
		tasks[i] = d.model()
	}
	return tasks, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.Task, error) {
	var doc mongoTask
	err := r.todos.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to find task by id")
		return nil, err
	}
	return doc.model(), nil
}

func (r *MongoRepository) Create(ctx context.Context, task *models.Task) error {
	_, err := r.todos.InsertOne(ctx, newMongoTask(task))
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return err
	}
	return nil
}

// Update replaces the document only if it still carries the updatedAt it
// was read with, retrying a few times when another writer got there first.
func (r *MongoRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*models.Task, error) {
	for attempt := 0; attempt < mongoUpdateAttempts; attempt++ {
		task, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		readAt := task.UpdatedAt

		err = fn(task)
		if err != nil {
			return nil, err
		}
		task.ID = id

		res, err := r.todos.ReplaceOne(
			ctx,
			bson.M{"_id": id, "updatedAt": readAt},
			newMongoTask(task),
		)
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("task_id", id).
				Msg("failed to replace task")
			return nil, err
		}
		if res.MatchedCount == 1 {
			return task, nil
		}
		r.logger.Debug().
			Str("task_id", id).
			Int("attempt", attempt+1).
			Msg("task changed concurrently, retrying update")
	}
	return nil, errMongoUpdateConflict
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.todos.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) MarkNotified(ctx context.Context, id string, reminder models.Reminder, at time.Time) (bool, error) {
	filter := bson.M{
		"_id":       id,
		"dueDate":   reminder.Date,
		"dueTime":   reminder.Time,
		"completed": false,
		"notified":  false,
	}
	update := bson.M{
		"$set": bson.M{
			"notified":  true,
			"updatedAt": at,
		},
	}
	res, err := r.todos.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to mark task notified")
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
