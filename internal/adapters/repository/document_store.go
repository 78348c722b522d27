package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/monkmode/tracker/internal/core/domain"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore is the contract of the hosted document database the tracker
// persists into: point reads and per-document atomic writes, addressed by a
// slash-separated path. Merge writes patch top-level fields and leave the
// rest of the document untouched; non-merge writes replace the document.
type DocumentStore interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Set(ctx context.Context, path string, doc any, merge bool) error
}

func protocolPath(userID string) string {
	return "users/" + userID + "/protocol/current"
}

func streakPath(userID string) string {
	return "users/" + userID + "/stats/streak"
}

func dayPath(userID string, day time.Time) string {
	return "users/" + userID + "/dailyTasks/" + domain.DayOf(day).Format(domain.DateLayout)
}
