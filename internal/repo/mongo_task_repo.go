package repo

import (
	"context"
	"errors"
	"time"

	dom "github.com/hirmezb/tasktracker/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const tasksCollection = "tasks"

type taskDocument struct {
	ID          string     `bson:"_id"`
	UserID      string     `bson:"user"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Priority    string     `bson:"priority"`
	DueDate     *time.Time `bson:"dueDate,omitempty"`
	Completed   bool       `bson:"completed"`
	Category    string     `bson:"category"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func toTaskDocument(t dom.Task) taskDocument {
	return taskDocument{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		Category:    t.Category,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d taskDocument) toDomain() dom.Task {
	t := dom.Task{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Priority:    dom.Priority(d.Priority),
		Completed:   d.Completed,
		Category:    d.Category,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

// MongoTaskRepo stores tasks as documents keyed by their UUID string.
type MongoTaskRepo struct {
	coll *mongo.Collection
}

// NewMongoTaskRepo returns a repo on db.tasks and ensures the owner/due date index.
func NewMongoTaskRepo(ctx context.Context, db *mongo.Database) (*MongoTaskRepo, error) {
	r := &MongoTaskRepo{coll: db.Collection(tasksCollection)}
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "dueDate", Value: 1}},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	if _, err := r.coll.InsertOne(ctx, toTaskDocument(t)); err != nil {
		return dom.Task{}, err
	}
	return t, nil
}

func (r *MongoTaskRepo) GetByID(ctx context.Context, userID, id string) (dom.Task, error) {
	var doc taskDocument
	err := r.coll.FindOne(ctx, ownedBy(userID, id)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	return doc.toDomain(), nil
}

func (r *MongoTaskRepo) List(ctx context.Context, userID string, f dom.TaskFilter) ([]dom.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}, {Key: "createdAt", Value: 1}})
	cur, err := r.coll.Find(ctx, buildTaskFilter(userID, f), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	list := []dom.Task{}
	for cur.Next(ctx) {
		var doc taskDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		list = append(list, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	// Mongo sorts missing fields first; keep undated tasks last like the other stores.
	dom.SortByDueDate(list)
	return list, nil
}

func (r *MongoTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	res, err := r.coll.ReplaceOne(ctx, ownedBy(t.UserID, t.ID), toTaskDocument(t))
	if err != nil {
		return dom.Task{}, err
	}
	if res.MatchedCount == 0 {
		return dom.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MongoTaskRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.coll.DeleteOne(ctx, ownedBy(userID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func ownedBy(userID, id string) bson.M {
	return bson.M{"_id": id, "user": userID}
}

// buildTaskFilter renders the owner-scoped query document for List.
func buildTaskFilter(userID string, f dom.TaskFilter) bson.M {
	q := bson.M{"user": userID}
	if f.Priority != "" {
		q["priority"] = string(f.Priority)
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Completed != nil {
		q["completed"] = *f.Completed
	}
	return q
}
