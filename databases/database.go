package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/vehicle-intake-api/config"
)

// DatabaseHelper contains the collection and client to be used to access the methods
// defined below
type DatabaseHelper interface {
	Collection(name string) CollectionHelper
	Client() ClientHelper
}

// CollectionHelper contains all the methods defined for collections in this project
type CollectionHelper interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) SingleResultHelper
	Find(context.Context, interface{}, ...*options.FindOptions) CursorHelper
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	ReplaceOne(context.Context, interface{}, interface{}, ...*options.ReplaceOptions) error
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
	DeleteMany(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
}

// SingleResultHelper contains a single method to decode the result
type SingleResultHelper interface {
	Decode(v interface{}) error
}

// InsertOneResultHelper contains a single method to decode the result
type InsertOneResultHelper interface {
	Decode() interface{}
}

// CursorHelper contains a method to decode the cursor
type CursorHelper interface {
	Decode(v interface{}) error
}

// ClientHelper defined to help at client creation inside cmd/serve.go
type ClientHelper interface {
	Database(string) DatabaseHelper
	Connect(context.Context) error
	Disconnect(context.Context) error
	Ping(context.Context) error
}

type mongoClient struct {
	cl *mongo.Client
}

type mongoDatabase struct {
	db *mongo.Database
}

type mongoCollection struct {
	coll *mongo.Collection
}

type mongoSingleResult struct {
	sr *mongo.SingleResult
}

type mongoInsertOneResult struct {
	ior *mongo.InsertOneResult
}

type mongoCursor struct {
	cr  *mongo.Cursor
	err error
}

// NewClient uses the values from the config and returns a mongo client
func NewClient(conf *config.Config) (ClientHelper, error) {
	c, err := mongo.NewClient(options.Client().ApplyURI(conf.URL))

	return &mongoClient{cl: c}, err
}

// NewDatabase uses the client from NewClient and sets the database name
func NewDatabase(conf *config.Config, client ClientHelper) DatabaseHelper {
	return client.Database(conf.DatabaseName)
}

func (mc *mongoClient) Database(dbName string) DatabaseHelper {
	db := mc.cl.Database(dbName)
	return &mongoDatabase{db: db}
}

func (mc *mongoClient) Connect(ctx context.Context) error {
	return mc.cl.Connect(ctx)
}

func (mc *mongoClient) Disconnect(ctx context.Context) error {
	return mc.cl.Disconnect(ctx)
}

func (mc *mongoClient) Ping(ctx context.Context) error {
	return mc.cl.Ping(ctx, nil)
}

func (md *mongoDatabase) Collection(colName string) CollectionHelper {
	collection := md.db.Collection(colName)
	return &mongoCollection{coll: collection}
}

func (md *mongoDatabase) Client() ClientHelper {
	client := md.db.Client()
	return &mongoClient{cl: client}
}

func (mc *mongoCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) SingleResultHelper {
	singleResult := mc.coll.FindOne(ctx, filter, opts...)
	return &mongoSingleResult{sr: singleResult}
}

func (mc *mongoCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	insertOneResult, err := mc.coll.InsertOne(ctx, document, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoInsertOneResult{ior: insertOneResult}, nil
}

func (mc *mongoCollection) ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) error {
	_, err := mc.coll.ReplaceOne(ctx, filter, replacement, opts...)
	return err
}

func (mc *mongoCollection) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	res, err := mc.coll.DeleteOne(ctx, filter, opts...)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (mc *mongoCollection) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	res, err := mc.coll.DeleteMany(ctx, filter, opts...)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (mc *mongoCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) CursorHelper {
	cursor, err := mc.coll.Find(ctx, filter, opts...)
	return &mongoCursor{cr: cursor, err: err}
}

func (sr *mongoSingleResult) Decode(v interface{}) error {
	return sr.sr.Decode(v)
}

func (ior *mongoInsertOneResult) Decode() interface{} {
	return ior.ior.InsertedID
}

func (cr *mongoCursor) Decode(v interface{}) error {
	if cr.err != nil {
		return cr.err
	}
	return cr.cr.All(context.Background(), v)
}
