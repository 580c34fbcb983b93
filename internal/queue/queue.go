package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const mediaDeleteMaxRetry = 10

// TaskEnqueuer is the part of *asynq.Client used to schedule work.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func EnqueueMediaDelete(ctx context.Context, client TaskEnqueuer, payload MediaDeletePayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeMediaDelete, taskPayload)

	_, err = client.EnqueueContext(ctx, task, asynq.MaxRetry(mediaDeleteMaxRetry), asynq.Timeout(time.Minute))
	if err != nil {
		return err
	}

	slog.Info("media delete scheduled", "keys", payload.Keys)
	return nil
}

// Enqueuer hands orphaned media keys to the worker.
type Enqueuer struct {
	client TaskEnqueuer
}

func NewEnqueuer(client TaskEnqueuer) *Enqueuer {
	return &Enqueuer{client: client}
}

// Cleanup never fails the caller: the records referencing keys are already gone.
func (e *Enqueuer) Cleanup(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	// detach from the request context, which ends with the response
	err := EnqueueMediaDelete(context.WithoutCancel(ctx), e.client, MediaDeletePayload{Keys: keys})
	if err != nil {
		slog.Error("unable to schedule media delete", "keys", keys, "error", err)
	}
}
