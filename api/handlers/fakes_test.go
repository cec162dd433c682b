package handlers

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/vehicle-intake-api/backend"
	"github.com/linesmerrill/vehicle-intake-api/models"
)

type memIntakes struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func (m *memIntakes) FindOne(_ context.Context, filter interface{}) (*models.Intake, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, _ := filter.(bson.M)["_id"].(string)
	b, ok := m.docs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	var in models.Intake
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (m *memIntakes) Find(_ context.Context, filter interface{}) ([]models.Intake, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, _ := filter.(bson.M)["ownerId"].(string)
	intakes := []models.Intake{}
	for _, b := range m.docs {
		var in models.Intake
		if err := json.Unmarshal(b, &in); err != nil {
			return nil, err
		}
		if in.OwnerID == owner {
			intakes = append(intakes, in)
		}
	}
	return intakes, nil
}

func (m *memIntakes) Save(_ context.Context, in *models.Intake) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[in.ID] = b
	m.mu.Unlock()
	return nil
}

func (m *memIntakes) DeleteOne(context.Context, interface{}) (int64, error)  { return 0, nil }
func (m *memIntakes) DeleteMany(context.Context, interface{}) (int64, error) { return 0, nil }

type memSessions struct {
	mu   sync.Mutex
	docs map[string]models.Session
}

func (m *memSessions) FindOne(_ context.Context, filter interface{}) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, _ := filter.(bson.M)["_id"].(string)
	s, ok := m.docs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &s, nil
}

func (m *memSessions) InsertOne(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	m.docs[s.ID] = *s
	m.mu.Unlock()
	return nil
}

func (m *memSessions) DeleteOne(_ context.Context, filter interface{}) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, _ := filter.(bson.M)["_id"].(string)
	delete(m.docs, id)
	return 1, nil
}

func (m *memSessions) DeleteMany(context.Context, interface{}) (int64, error) { return 0, nil }

// fakeUpstream stands in for every upstream endpoint the handlers reach
type fakeUpstream struct {
	zipCalls   atomic.Int32
	offerCalls atomic.Int32

	loginErr error
	otpErr   error

	mu        sync.Mutex
	passwords []string
	deleted   []string
}

func (f *fakeUpstream) DecodeVIN(_ context.Context, vin, zip string) (models.VehicleRecord, error) {
	return models.VehicleRecord{
		Make:                "Honda",
		Model:               "Accord",
		Year:                "2003",
		BodyType:            "Sedan",
		FuelType:            "Gasoline",
		EngineLiters:        "2.4",
		EngineCylinders:     "4",
		EngineConfiguration: "In-Line",
	}, nil
}

func (f *fakeUpstream) Login(_ context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	if f.loginErr != nil {
		return models.AuthResponse{}, f.loginErr
	}
	return models.AuthResponse{Token: "upstream-token", ExpiresIn: 3600, User: models.UserProfile{ID: "user-" + req.Email, Email: req.Email, FirstName: "Sam"}}, nil
}

func (f *fakeUpstream) Register(_ context.Context, req models.RegistrationRequest) (models.AuthResponse, error) {
	return models.AuthResponse{Token: "upstream-token", ExpiresIn: 3600, User: models.UserProfile{ID: "user-" + req.Email, Email: req.Email, FirstName: req.FirstName, LastName: req.LastName}}, nil
}

func (f *fakeUpstream) InstantCash(context.Context, string, models.OfferRequest) (models.OfferResult, error) {
	f.offerCalls.Add(1)
	return models.OfferResult{OfferAmount: 12500, IsAuctionable: true, ProductID: "p-1"}, nil
}

func (f *fakeUpstream) StartAuction(_ context.Context, _, productID, _ string) (models.AuctionStart, error) {
	return models.AuctionStart{ProductID: productID, AuctionEndsAt: "2026-10-25T00:00:00Z"}, nil
}

func (f *fakeUpstream) CityStateByZip(_ context.Context, zip string) (models.Location, error) {
	f.zipCalls.Add(1)
	if zip == "00000" {
		return models.Location{}, &backend.APIError{Status: 404, Message: "Unknown zip code"}
	}
	return models.Location{City: "San Francisco", State: "California"}, nil
}

func (f *fakeUpstream) UpdateProfile(_ context.Context, _ string, p models.UserProfile) (models.UserProfile, error) {
	return p, nil
}

func (f *fakeUpstream) ChangePassword(_ context.Context, _, _, next string) error {
	f.mu.Lock()
	f.passwords = append(f.passwords, next)
	f.mu.Unlock()
	return nil
}

func (f *fakeUpstream) ForgotPassword(context.Context, string) error { return nil }

func (f *fakeUpstream) VerifyOTP(_ context.Context, _, otp string) (string, error) {
	if f.otpErr != nil {
		return "", f.otpErr
	}
	return "reset-" + otp, nil
}

func (f *fakeUpstream) ResetPassword(_ context.Context, token, password string) error {
	f.mu.Lock()
	f.passwords = append(f.passwords, token+":"+password)
	f.mu.Unlock()
	return nil
}

func (f *fakeUpstream) UploadImage(_ context.Context, _, vin, filename string, r io.Reader) (models.Image, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return models.Image{}, err
	}
	return models.Image{ID: "img-" + filename, URL: "https://cdn.example.com/" + vin + "/" + filename, UploadedAt: time.Now().UTC()}, nil
}

func (f *fakeUpstream) DeleteImage(_ context.Context, _, imageID string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, imageID)
	f.mu.Unlock()
	return nil
}
