package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hibiken/asynq"
)

func (j *Queue) HandleMediaDeleteTask(ctx context.Context, task *asynq.Task) error {
	var payload MediaDeletePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// a malformed payload will never succeed
		return fmt.Errorf("decode media delete payload: %v: %w", err, asynq.SkipRetry)
	}

	return j.DeleteMedia(ctx, payload.Keys)
}

// DeleteMedia removes every key, returning the joined failures so the task is retried.
func (j *Queue) DeleteMedia(ctx context.Context, keys []string) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	semaphore := make(chan struct{}, j.concurrency)

	for _, key := range keys {
		if key == "" {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}
		go func(key string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.store.Delete(ctx, key); err != nil {
				slog.Error("unable to delete media", "key", key, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
				mu.Unlock()
				return
			}
			slog.Info("media deleted", "key", key)
		}(key)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Mux routes queue task types to their handlers.
func (j *Queue) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeMediaDelete, j.HandleMediaDeleteTask)
	return mux
}
