package sharepoints

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "sharepoints"

var sortFields = map[SortField]string{
	SortTitle:           "title",
	SortDeadline:        "deadline",
	SortCreationDate:    "creationDate",
	SortStatus:          "status",
	SortUpdatedAt:       "updatedAt",
	SortManagerApproved: "managerApproved",
	SortApprovedAt:      "approvedAt",
	SortLink:            "link",
}

var terminalStatuses = []Status{StatusCompleted, StatusRejected, StatusDisapproved, StatusCancelled}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository stores SharePoints as documents of the sharepoints collection.
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the indexes used by list filters.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		{Keys: bson.D{{Key: "deadline", Value: 1}}},
		{Keys: bson.D{{Key: "usersToSign.user", Value: 1}}},
		{Keys: bson.D{{Key: "managersToApprove", Value: 1}}},
	})
	return err
}

func (r *mongoRepository) Create(ctx context.Context, sp *SharePoint) error {
	_, err := r.coll.InsertOne(ctx, sp)
	return err
}

func (r *mongoRepository) GetByID(ctx context.Context, id uuid.UUID) (*SharePoint, error) {
	var sp SharePoint
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func mongoFilter(filter Filter) bson.M {
	q := bson.M{}
	if filter.Status != nil {
		q["status"] = *filter.Status
	}
	if filter.CreatedBy != nil {
		q["createdBy"] = *filter.CreatedBy
	}
	if filter.AssignedTo != nil {
		q["usersToSign.user"] = *filter.AssignedTo
	}
	if filter.ManagedBy != nil {
		q["managersToApprove"] = *filter.ManagedBy
	}
	if filter.ManagerApproved != nil {
		q["managerApproved"] = *filter.ManagerApproved
	}
	if filter.Search != "" {
		pattern := regexp.QuoteMeta(filter.Search)
		q["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"comment": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if filter.OverdueAt != nil {
		q["deadline"] = bson.M{"$lt": *filter.OverdueAt}
		if filter.Status == nil {
			q["status"] = bson.M{"$nin": terminalStatuses}
		}
	}
	return q
}

func (r *mongoRepository) List(ctx context.Context, filter Filter, sort Sort, page Page) ([]SharePoint, error) {
	field, ok := sortFields[sort.Field]
	if !ok {
		field = "creationDate"
	}
	direction := 1
	if sort.Desc {
		direction = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: direction}, {Key: "_id", Value: 1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))

	cursor, err := r.coll.Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []SharePoint
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *mongoRepository) Count(ctx context.Context, filter Filter) (int, error) {
	n, err := r.coll.CountDocuments(ctx, mongoFilter(filter))
	return int(n), err
}

func (r *mongoRepository) Update(ctx context.Context, sp *SharePoint) error {
	expected := sp.Version
	next := *sp
	next.Version = expected + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": sp.ID, "version": expected}, &next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	sp.Version = next.Version
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
