package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeCollection implements every narrow collection interface the
// repositories declare. Results are seeded per call kind; filters and
// documents are recorded for assertions.
type fakeCollection struct {
	findDocs   []interface{}
	findErr    error
	findOneDoc interface{}
	findOneErr error

	insertErr     error
	insertManyErr error
	updateResult  *mongo.UpdateResult
	updateErr     error
	deleteResult  *mongo.DeleteResult
	deleteErr     error

	findFilters    []interface{}
	findOneFilters []interface{}
	inserted       []interface{}
	updates        []updateCall
	deleteFilters  []interface{}
}

type updateCall struct {
	filter interface{}
	update interface{}
	upsert bool
}

func (f *fakeCollection) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	f.findFilters = append(f.findFilters, filter)
	if f.findErr != nil {
		return nil, f.findErr
	}
	return mongo.NewCursorFromDocuments(f.findDocs, nil, nil)
}

func (f *fakeCollection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	f.findOneFilters = append(f.findOneFilters, filter)
	if f.findOneErr != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, f.findOneErr, nil)
	}
	if f.findOneDoc == nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(f.findOneDoc, nil, nil)
}

func (f *fakeCollection) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	f.inserted = append(f.inserted, document)
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return &mongo.InsertOneResult{}, nil
}

func (f *fakeCollection) InsertMany(_ context.Context, documents []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.inserted = append(f.inserted, documents...)
	if f.insertManyErr != nil {
		return nil, f.insertManyErr
	}
	ids := make([]interface{}, len(documents))
	return &mongo.InsertManyResult{InsertedIDs: ids}, nil
}

func (f *fakeCollection) UpdateOne(_ context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	upsert := false
	for _, opt := range opts {
		if opt != nil && opt.Upsert != nil && *opt.Upsert {
			upsert = true
		}
	}
	f.updates = append(f.updates, updateCall{filter: filter, update: update, upsert: upsert})
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateResult != nil {
		return f.updateResult, nil
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeCollection) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	f.deleteFilters = append(f.deleteFilters, filter)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	if f.deleteResult != nil {
		return f.deleteResult, nil
	}
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func (f *fakeCollection) DeleteMany(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	f.deleteFilters = append(f.deleteFilters, filter)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	if f.deleteResult != nil {
		return f.deleteResult, nil
	}
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}
