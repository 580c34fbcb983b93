package queue

import (
	"github.com/maheshrc27/social-api/internal/service"
)

// Queue processes background tasks against the object store.
type Queue struct {
	store       service.ObjectStore
	concurrency int
}

func NewQueue(store service.ObjectStore, concurrency int) *Queue {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Queue{
		store:       store,
		concurrency: concurrency,
	}
}

const TaskTypeMediaDelete = "media:delete"

type MediaDeletePayload struct {
	Keys []string `json:"keys"`
}
