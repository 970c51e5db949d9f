package storyflow

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/dao/step"
	stepfs "github.com/viant/storyflow/service/dao/step/fs"
	stepmemory "github.com/viant/storyflow/service/dao/step/memory"
	stepsqlite "github.com/viant/storyflow/service/dao/step/sqlite"
	"github.com/viant/storyflow/service/event"
	"github.com/viant/storyflow/service/messaging"
	mfs "github.com/viant/storyflow/service/messaging/fs"
	mmemory "github.com/viant/storyflow/service/messaging/memory"
	"github.com/viant/storyflow/service/protocol/local"
)

// NewHub creates a local protocol hub with the store and queue selected by config.
// The returned closer releases the store.
func NewHub(config *Config, logger *slog.Logger, options ...local.Option) (*local.Hub, io.Closer, error) {
	steps, closer, err := newStepDAO(config.Store)
	if err != nil {
		return nil, nil, err
	}
	queue, err := newQueue(config.Queue)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	hubOptions := []local.Option{
		local.WithStepDAO(steps),
		local.WithQueue(queue),
		local.WithWorkers(config.Workers),
		local.WithLogger(logger),
	}
	return local.New(append(hubOptions, options...)...), closer, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newStepDAO(config StoreConfig) (step.DAO, io.Closer, error) {
	nop := closerFunc(func() error { return nil })
	switch config.Type {
	case StoreMemory, "":
		return stepmemory.New(), nop, nil
	case StoreFs:
		srv, err := stepfs.New(config.Location)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create fs step store: %w", err)
		}
		return srv, nop, nil
	case StoreSqlite:
		srv, err := stepsqlite.New(config.Location)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite step store: %w", err)
		}
		return srv, srv, nil
	}
	return nil, nil, fmt.Errorf("unsupported store type: %v", config.Type)
}

func newQueue(config QueueConfig) (messaging.Queue[event.Event[model.StepEvent]], error) {
	switch config.Vendor {
	case messaging.VendorMemory, "":
		queueConfig := mmemory.DefaultConfig()
		queueConfig.MaxRetries = config.MaxRetries
		return mmemory.NewQueue[event.Event[model.StepEvent]](queueConfig), nil
	case messaging.VendorFs:
		queueConfig := mfs.DefaultConfig()
		queueConfig.BasePath = config.BasePath
		queueConfig.MaxRetries = config.MaxRetries
		queue, err := mfs.NewQueue[event.Event[model.StepEvent]](afs.New(), queueConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create fs queue: %w", err)
		}
		return queue, nil
	}
	return nil, fmt.Errorf("unsupported queue vendor: %v", config.Vendor)
}
