package tasklog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/storyflow/internal/logging"
	"github.com/viant/storyflow/model"
)

type recordingSink struct {
	entries []*model.TaskLog
	err     error
}

func (s *recordingSink) LogTask(ctx context.Context, entry *model.TaskLog) error {
	s.entries = append(s.entries, entry)
	return s.err
}

func TestLogger_Log(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := &recordingSink{}
	logger := New(logging.New(buf, logging.LevelDebug), sink)
	ctx := context.Background()

	logger.Info(ctx, "task-1", "Steps created successfully.")
	logger.Log(ctx, &model.TaskLog{TaskID: "task-1", Level: model.LogLevelInfo, Message: "received", Status: model.StatusPending})
	logger.Error(ctx, "task-1", "failed", "step_id", "s1")

	if assert.Len(t, sink.entries, 3) {
		assert.Equal(t, "Steps created successfully.", sink.entries[0].Message)
		assert.Equal(t, model.StatusPending, sink.entries[1].Status)
		assert.Equal(t, model.LogLevelError, sink.entries[2].Level)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if assert.Len(t, lines, 3) {
		var entry map[string]interface{}
		assert.NoError(t, json.Unmarshal([]byte(lines[2]), &entry))
		assert.Equal(t, "task-1 :: failed", entry["msg"])
		assert.Equal(t, "ERROR", entry["level"])
		assert.Equal(t, "s1", entry["step_id"])
	}
}

func TestLogger_SinkError(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(logging.New(buf, logging.LevelInfo), &recordingSink{err: errors.New("sink down")})
	logger.Warning(context.Background(), "task-2", "careful")
	assert.Contains(t, buf.String(), "failed to send task log")
	assert.Contains(t, buf.String(), "sink down")
}

func TestLogger_NilSink(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(logging.New(buf, logging.LevelInfo), nil)
	logger.Info(context.Background(), "task-3", "local only")
	logger.Log(context.Background(), nil)
	assert.Contains(t, buf.String(), "task-3 :: local only")
}
