package intake

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

type memIntakes struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemIntakes() *memIntakes {
	return &memIntakes{docs: make(map[string][]byte)}
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

func (m *memIntakes) DeleteOne(_ context.Context, filter interface{}) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, _ := filter.(bson.M)["_id"].(string)
	if _, ok := m.docs[id]; !ok {
		return 0, nil
	}
	delete(m.docs, id)
	return 1, nil
}

func (m *memIntakes) DeleteMany(context.Context, interface{}) (int64, error) {
	return 0, nil
}

type memSessions struct {
	mu   sync.Mutex
	docs map[string]models.Session
}

func newMemSessions() *memSessions {
	return &memSessions{docs: make(map[string]models.Session)}
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

func (m *memSessions) DeleteMany(context.Context, interface{}) (int64, error) {
	return 0, nil
}

// fakeBackend counts every upstream call. decodeGate and authGate, when set, block DecodeVIN
// and Register until they are closed.
type fakeBackend struct {
	decodeCalls  atomic.Int32
	authCalls    atomic.Int32
	offerCalls   atomic.Int32
	auctionCalls atomic.Int32
	// auctionFailures counts down StartAuction calls that fail before one succeeds
	auctionFailures atomic.Int32

	decodeGate chan struct{}
	authGate   chan struct{}
	decodeErr  error
	authErr    error
	offerErr   error
	offer      models.OfferResult
	lastOffer  models.OfferRequest
	mu         sync.Mutex
}

func (f *fakeBackend) DecodeVIN(ctx context.Context, vin, zip string) (models.VehicleRecord, error) {
	f.decodeCalls.Add(1)
	if f.decodeGate != nil {
		<-f.decodeGate
	}
	if f.decodeErr != nil {
		return models.VehicleRecord{}, f.decodeErr
	}
	return models.VehicleRecord{
		Make:                "Honda",
		Model:               "Accord",
		Year:                "2003",
		BodyType:            "Sedan",
		Transmission:        "n/a",
		FuelType:            "Gasoline",
		EngineLiters:        "2.4",
		EngineCylinders:     "4",
		EngineConfiguration: "In-Line",
		City:                "San Francisco",
		State:               "California",
	}, nil
}

func (f *fakeBackend) Login(_ context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	f.authCalls.Add(1)
	if f.authErr != nil {
		return models.AuthResponse{}, f.authErr
	}
	return models.AuthResponse{Token: "upstream-token", ExpiresIn: 3600, User: models.UserProfile{ID: "user-1", Email: req.Email, FirstName: "Sam"}}, nil
}

func (f *fakeBackend) Register(_ context.Context, req models.RegistrationRequest) (models.AuthResponse, error) {
	f.authCalls.Add(1)
	if f.authGate != nil {
		<-f.authGate
	}
	if f.authErr != nil {
		return models.AuthResponse{}, f.authErr
	}
	return models.AuthResponse{Token: "upstream-token", User: models.UserProfile{ID: "user-1", Email: req.Email}}, nil
}

func (f *fakeBackend) InstantCash(_ context.Context, token string, req models.OfferRequest) (models.OfferResult, error) {
	f.offerCalls.Add(1)
	f.mu.Lock()
	f.lastOffer = req
	f.mu.Unlock()
	if f.offerErr != nil {
		return models.OfferResult{}, f.offerErr
	}
	return f.offer, nil
}

func (f *fakeBackend) StartAuction(_ context.Context, token, productID, scope string) (models.AuctionStart, error) {
	f.auctionCalls.Add(1)
	if f.auctionFailures.Add(-1) >= 0 {
		return models.AuctionStart{}, errors.New("auction service unavailable")
	}
	return models.AuctionStart{ProductID: productID, AuctionEndsAt: "2026-10-25T00:00:00Z"}, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []models.Identity
}

func (n *fakeNotifier) AuctionStarted(_ context.Context, who models.Identity, _ models.OfferResult, _ models.AuctionStart, _ []models.ConditionQuestion, _ models.DeductionResult) error {
	n.mu.Lock()
	n.sent = append(n.sent, who)
	n.mu.Unlock()
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	deleted []string
	n       int
}

func (s *fakeStore) Upload(_ context.Context, _, vin, filename string, _ io.Reader) (models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return models.Image{ID: filename, URL: "https://cdn.example.com/" + vin + "/" + filename}, nil
}

func (s *fakeStore) Delete(_ context.Context, _, imageID string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, imageID)
	s.mu.Unlock()
	return nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
