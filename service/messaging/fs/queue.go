package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/storage"
	"github.com/viant/storyflow/service/messaging"
)

// MessageState represents the state of a message in the filesystem queue
type MessageState string

const (
	MessageStatePending    MessageState = "pending"
	MessageStateProcessing MessageState = "processing"
	MessageStateFailed     MessageState = "failed"
)

// Message implements messaging.Message for filesystem queue
type Message[T any] struct {
	ID        string       `json:"id"`
	Data      T            `json:"data"`
	State     MessageState `json:"state"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Retries   int          `json:"retries"`

	filename  string
	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack removes the message from the processing directory
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.ID)
	}
	m.processed = true
	return m.queue.remove(context.Background(), path.Join(m.queue.processingDir, m.filename))
}

// Nack moves the message back to pending or to the dead letter directory
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.ID)
	}
	m.processed = true
	m.Retries++
	m.UpdatedAt = time.Now()
	if err != nil {
		m.Error = err.Error()
	}
	return m.queue.fail(context.Background(), m)
}

// Config holds configuration for filesystem queue
type Config struct {
	BasePath     string        // Base directory for queue files
	MaxRetries   int           // Maximum number of redeliveries
	PollInterval time.Duration // Delay between pending directory scans
}

// DefaultConfig returns a default queue configuration
func DefaultConfig() Config {
	return Config{
		BasePath:     "/tmp/storyflow/queue",
		MaxRetries:   3,
		PollInterval: 100 * time.Millisecond,
	}
}

// Queue implements a filesystem-based messaging.Queue backed by viant/afs
type Queue[T any] struct {
	fs            afs.Service
	config        Config
	pendingDir    string
	processingDir string
	dlqDir        string
	mu            sync.Mutex
}

// NewQueue creates a new filesystem-based queue. Messages left in the
// processing directory by a previous run are moved back to pending.
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    path.Join(config.BasePath, "pending"),
		processingDir: path.Join(config.BasePath, "processing"),
		dlqDir:        path.Join(config.BasePath, "dlq"),
	}
	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.dlqDir} {
		if exists, _ := fs.Exists(ctx, dir); !exists {
			if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	if err := q.recover(ctx); err != nil {
		return nil, err
	}
	return q, nil
}

// Publish writes a new message to the pending directory
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	now := time.Now()
	message := &Message[T]{
		ID:        uuid.New().String(),
		Data:      *t,
		State:     MessageStatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	message.filename = fmt.Sprintf("%020d-%s.json", now.UnixNano(), message.ID)
	return q.write(ctx, path.Join(q.pendingDir, message.filename), message)
}

// Consume polls the pending directory until a message is available or ctx is done
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	for {
		message, err := q.next(ctx)
		if err != nil || message != nil {
			return message, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(q.config.PollInterval):
		}
	}
}

// Pending returns number of pending messages
func (q *Queue[T]) Pending(ctx context.Context) (int, error) {
	objects, err := q.list(ctx, q.pendingDir)
	return len(objects), err
}

// DeadLetters returns number of dead lettered messages
func (q *Queue[T]) DeadLetters(ctx context.Context) (int, error) {
	objects, err := q.list(ctx, q.dlqDir)
	return len(objects), err
}

func (q *Queue[T]) next(ctx context.Context) (*Message[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	objects, err := q.list(ctx, q.pendingDir)
	if err != nil || len(objects) == 0 {
		return nil, err
	}
	object := objects[0]
	message, err := q.read(ctx, object.URL())
	if err != nil {
		_ = q.fs.Move(ctx, object.URL(), path.Join(q.dlqDir, "invalid-"+object.Name()))
		return nil, err
	}
	message.filename = object.Name()
	message.State = MessageStateProcessing
	message.UpdatedAt = time.Now()
	message.queue = q
	if err = q.write(ctx, path.Join(q.processingDir, object.Name()), message); err != nil {
		return nil, fmt.Errorf("failed to move message to processing directory: %w", err)
	}
	if err = q.fs.Delete(ctx, object.URL()); err != nil {
		return nil, fmt.Errorf("failed to delete message from pending directory: %w", err)
	}
	return message, nil
}

func (q *Queue[T]) fail(ctx context.Context, m *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	target := path.Join(q.pendingDir, m.filename)
	m.State = MessageStatePending
	if m.Retries > q.config.MaxRetries {
		target = path.Join(q.dlqDir, m.filename)
		m.State = MessageStateFailed
	}
	if err := q.write(ctx, target, m); err != nil {
		return err
	}
	return q.removeLocked(ctx, path.Join(q.processingDir, m.filename))
}

func (q *Queue[T]) recover(ctx context.Context) error {
	objects, err := q.list(ctx, q.processingDir)
	if err != nil {
		return err
	}
	for _, object := range objects {
		if err := q.fs.Move(ctx, object.URL(), path.Join(q.pendingDir, object.Name())); err != nil {
			return fmt.Errorf("failed to recover message %s: %w", object.Name(), err)
		}
	}
	return nil
}

func (q *Queue[T]) remove(ctx context.Context, URL string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(ctx, URL)
}

func (q *Queue[T]) removeLocked(ctx context.Context, URL string) error {
	if exists, _ := q.fs.Exists(ctx, URL); !exists {
		return nil
	}
	return q.fs.Delete(ctx, URL)
}

// list returns json files sorted by name, names start with publish time
func (q *Queue[T]) list(ctx context.Context, dir string) ([]storage.Object, error) {
	objects, err := q.fs.List(ctx, dir, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var files []storage.Object
	for _, object := range objects {
		if !object.IsDir() && strings.HasSuffix(object.Name(), ".json") {
			files = append(files, object)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })
	return files, nil
}

func (q *Queue[T]) write(ctx context.Context, URL string, m *Message[T]) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return q.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data))
}

func (q *Queue[T]) read(ctx context.Context, URL string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", URL, err)
	}
	var message Message[T]
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", URL, err)
	}
	return &message, nil
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
