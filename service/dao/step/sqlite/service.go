package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/glebarez/go-sqlite"
	"github.com/viant/storyflow/model"
	"github.com/viant/storyflow/service/dao"
	"github.com/viant/storyflow/service/dao/step"
)

const driverName = "sqlite"

const createTableSQL = `CREATE TABLE IF NOT EXISTS steps (
	step_id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	predecessor TEXT,
	step_status TEXT NOT NULL,
	data TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const upsertSQL = `INSERT INTO steps (step_id, task_id, predecessor, step_status, data, updated_at)
VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(step_id) DO UPDATE SET
	task_id = excluded.task_id,
	predecessor = excluded.predecessor,
	step_status = excluded.step_status,
	data = excluded.data,
	updated_at = CURRENT_TIMESTAMP`

// columns maps list parameter names to table columns
var columns = map[string]string{
	dao.TaskIDParam:      "task_id",
	dao.PredecessorParam: "predecessor",
	dao.StatusParam:      "step_status",
}

// Service implements a sqlite-backed step storage
type Service struct {
	db *sql.DB
}

var _ step.DAO = (*Service)(nil)

// Save inserts or replaces a step
func (s *Service) Save(ctx context.Context, aStep *model.Step) error {
	if aStep == nil {
		return dao.ErrNilEntity
	}
	if aStep.StepID == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(aStep)
	if err != nil {
		return fmt.Errorf("failed to marshal step: %w", err)
	}
	if _, err = s.db.ExecContext(ctx, upsertSQL, aStep.StepID, aStep.TaskID, aStep.Predecessor, string(aStep.Status), string(data)); err != nil {
		return fmt.Errorf("failed to save step %s: %w", aStep.StepID, err)
	}
	return nil
}

// Load returns a step or dao.ErrNotFound
func (s *Service) Load(ctx context.Context, id string) (*model.Step, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM steps WHERE step_id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dao.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load step %s: %w", id, err)
	}
	return decode(data)
}

// Delete removes a step
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM steps WHERE step_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete step %s: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return dao.ErrNotFound
	}
	return nil
}

// List returns steps matching parameters
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Step, error) {
	query, args := buildListQuery(parameters)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()
	var steps []*model.Step
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		aStep, err := decode(data)
		if err != nil {
			return nil, err
		}
		steps = append(steps, aStep)
	}
	return steps, rows.Err()
}

// Close closes underlying database
func (s *Service) Close() error {
	return s.db.Close()
}

func buildListQuery(parameters []*dao.Parameter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		column, ok := columns[parameter.Name]
		if !ok {
			continue
		}
		switch actual := parameter.Value.(type) {
		case string:
			conditions = append(conditions, column+" = ?")
			args = append(args, actual)
		case []string:
			if len(actual) == 0 {
				continue
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(actual)), ",")
			conditions = append(conditions, column+" IN ("+placeholders+")")
			for _, value := range actual {
				args = append(args, value)
			}
		}
	}
	query := `SELECT data FROM steps`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	return query + ` ORDER BY rowid`, args
}

func decode(data string) (*model.Step, error) {
	aStep := &model.Step{}
	if err := json.Unmarshal([]byte(data), aStep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal step: %w", err)
	}
	return aStep, nil
}

// New opens (creating when needed) a sqlite step store at dbPath
func New(dbPath string) (*Service, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, err
	}
	if _, err = db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create steps table: %w", err)
	}
	return &Service{db: db}, nil
}
