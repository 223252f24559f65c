package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/harxxhilgg/univent/internal/infrastructure/redis"
	"github.com/harxxhilgg/univent/internal/models"
)

type fakeUserRepo struct {
	createFn        func(ctx context.Context, user *models.User) error
	getByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	deleteByEmailFn func(ctx context.Context, email string) error
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	return f.createFn(ctx, user)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.getByEmailFn(ctx, email)
}

func (f *fakeUserRepo) DeleteByEmail(ctx context.Context, email string) error {
	return f.deleteByEmailFn(ctx, email)
}

type fakeEventRepo struct {
	createFn        func(ctx context.Context, event *models.Event) error
	existsByTitleFn func(ctx context.Context, title string) (bool, error)
	getAllFn        func(ctx context.Context) ([]models.Event, error)
	getByCreatorFn  func(ctx context.Context, email string) ([]models.Event, error)
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	return f.createFn(ctx, event)
}

func (f *fakeEventRepo) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	return f.existsByTitleFn(ctx, title)
}

func (f *fakeEventRepo) GetAll(ctx context.Context) ([]models.Event, error) {
	return f.getAllFn(ctx)
}

func (f *fakeEventRepo) GetByCreator(ctx context.Context, email string) ([]models.Event, error) {
	return f.getByCreatorFn(ctx, email)
}

// fakeRedis is an in-memory stand-in for the cache client. Deleted keys are
// recorded so tests can assert on cache invalidation.
type fakeRedis struct {
	mu      sync.Mutex
	values  map[string]string
	deleted []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.values[key]
	if !ok {
		return "", redis.ErrKeyNotFound
	}
	return val, nil
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := value.(string); ok {
		f.values[key] = s
	}
	return nil
}

func (f *fakeRedis) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeRedis) Close() error { return nil }

func (f *fakeRedis) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.values[key]
	return ok
}

func (f *fakeRedis) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type sentMessage struct {
	topic string
	key   string
	value []byte
}

// fakeProducer records published messages; Send is called from background
// goroutines, so access is guarded.
type fakeProducer struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeProducer) Send(ctx context.Context, topic string, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{topic: topic, key: key, value: value})
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func (f *fakeProducer) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeFeed struct {
	mu        sync.Mutex
	broadcast []models.Event
}

func (f *fakeFeed) Broadcast(event models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, event)
}

func (f *fakeFeed) events() []models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Event(nil), f.broadcast...)
}

type fakeUploader struct {
	uploadFn func(ctx context.Context, image []byte, filename string) (string, error)
}

func (f *fakeUploader) Upload(ctx context.Context, image []byte, filename string) (string, error) {
	return f.uploadFn(ctx, image, filename)
}
