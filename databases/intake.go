package databases

//go generate: mockery --name IntakeDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

const intakeName = "intakes"

// IntakeDatabase contains the methods to use with the intake database
type IntakeDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Intake, error)
	Find(ctx context.Context, filter interface{}) ([]models.Intake, error)
	Save(ctx context.Context, intake *models.Intake) error
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
}

type intakeDatabase struct {
	db DatabaseHelper
}

// NewIntakeDatabase initializes a new instance of intake database with the provided db connection
func NewIntakeDatabase(db DatabaseHelper) IntakeDatabase {
	return &intakeDatabase{
		db: db,
	}
}

func (c *intakeDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Intake, error) {
	intake := &models.Intake{}
	err := c.db.Collection(intakeName).FindOne(ctx, filter).Decode(&intake)
	if err != nil {
		return nil, err
	}
	return intake, nil
}

func (c *intakeDatabase) Find(ctx context.Context, filter interface{}) ([]models.Intake, error) {
	var intakes []models.Intake
	err := c.db.Collection(intakeName).Find(ctx, filter).Decode(&intakes)
	if err != nil {
		return nil, err
	}
	return intakes, nil
}

// Save upserts the whole document by id
func (c *intakeDatabase) Save(ctx context.Context, intake *models.Intake) error {
	return c.db.Collection(intakeName).ReplaceOne(ctx, bson.M{"_id": intake.ID}, intake, options.Replace().SetUpsert(true))
}

func (c *intakeDatabase) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(intakeName).DeleteOne(ctx, filter)
}

func (c *intakeDatabase) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(intakeName).DeleteMany(ctx, filter)
}
