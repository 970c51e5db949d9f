package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/dao"
	"github.com/viant/storyflow/service/dao/criteria"
	"github.com/viant/storyflow/service/dao/step"
)

// Service implements a filesystem-based step storage, one JSON document per step
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

// Ensure Service implements dao.Service
var _ step.DAO = (*Service)(nil)

// Save persists a step to the filesystem
func (s *Service) Save(ctx context.Context, aStep *model.Step) error {
	if aStep == nil {
		return dao.ErrNilEntity
	}
	if aStep.StepID == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(aStep)
	if err != nil {
		return fmt.Errorf("failed to marshal step: %w", err)
	}
	filePath := s.stepPath(aStep.StepID)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save step to file %s: %w", filePath, err)
	}
	return nil
}

// Load retrieves a step from the filesystem
func (s *Service) Load(ctx context.Context, id string) (*model.Step, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.stepPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if step exists: %w", err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read step file: %w", err)
	}
	var aStep model.Step
	if err := json.Unmarshal(data, &aStep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal step data: %w", err)
	}
	return &aStep, nil
}

// Delete removes a step from the filesystem
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.stepPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check if step exists: %w", err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	if err := s.fs.Delete(ctx, filePath); err != nil {
		return fmt.Errorf("failed to delete step file: %w", err)
	}
	return nil
}

// List returns steps matching parameters
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Step, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list step files: %w", err)
	}

	var steps []*model.Step
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			log.Printf("failed to read step file %s: %v", object.URL(), err)
			continue
		}
		var aStep model.Step
		if err := json.Unmarshal(data, &aStep); err != nil {
			log.Printf("failed to unmarshal step from %s: %v", object.URL(), err)
			continue
		}
		if !criteria.Matches(step.Fields(&aStep), parameters) {
			continue
		}
		steps = append(steps, &aStep)
	}
	return steps, nil
}

func (s *Service) stepPath(id string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// New creates a new filesystem step storage service
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fs := afs.New()
	ctx := context.Background()
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	basePath = url.Normalize(basePath, file.Scheme)
	return &Service{
		basePath: basePath,
		fs:       fs,
	}, nil
}
