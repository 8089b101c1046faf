package subscription

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pep299/article-digest/internal/sheets"
)

// TimestampHeader is the column that receives the time of subscription
// instead of a submitted value
const TimestampHeader = "Timestamp"

// DefaultLockTimeout is how long a request waits for the intake lock
const DefaultLockTimeout = 10 * time.Second

// ErrLockTimeout is returned when the intake lock could not be acquired in time
var ErrLockTimeout = errors.New("timed out waiting for the subscription lock")

// Store is where subscriptions are appended
type Store interface {
	SubscriptionHeaders(ctx context.Context) ([]string, error)
	AppendSubscription(ctx context.Context, row []string) (int, error)
}

// Intake appends submitted subscription forms to the store, one at a time
type Intake struct {
	store       Store
	lock        *semaphore.Weighted
	lockTimeout time.Duration
	now         func() time.Time
}

// NewIntake creates an intake. A non-positive timeout uses DefaultLockTimeout.
func NewIntake(store Store, lockTimeout time.Duration) *Intake {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Intake{
		store:       store,
		lock:        semaphore.NewWeighted(1),
		lockTimeout: lockTimeout,
		now:         time.Now,
	}
}

// Subscribe appends one subscription built from params and returns its row
// number. Each header of the Subscriptions sheet takes the param of the same
// name; headers without a param get an empty cell.
func (i *Intake) Subscribe(ctx context.Context, params map[string]string) (int, error) {
	lockCtx, cancel := context.WithTimeout(ctx, i.lockTimeout)
	defer cancel()

	if err := i.lock.Acquire(lockCtx, 1); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, ErrLockTimeout
	}
	defer i.lock.Release(1)

	headers, err := i.store.SubscriptionHeaders(ctx)
	if err != nil {
		return 0, err
	}

	row := BuildRow(headers, params, i.now().UTC())
	n, err := i.store.AppendSubscription(ctx, row)
	if err != nil {
		return 0, err
	}

	log.Printf("✅ New subscription appended at row %d", n)
	return n, nil
}

// BuildRow orders params by headers
func BuildRow(headers []string, params map[string]string, now time.Time) []string {
	row := make([]string, len(headers))
	for i, header := range headers {
		if header == TimestampHeader {
			row[i] = sheets.FormatTimestamp(now)
			continue
		}
		row[i] = params[header]
	}
	return row
}

// Result is the JSON body returned to the subscription form
type Result struct {
	Result string `json:"result"`
	Row    int    `json:"row,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewResult describes the outcome of a Subscribe call
func NewResult(row int, err error) Result {
	if err != nil {
		return Result{Result: "error", Error: fmt.Sprint(err)}
	}
	return Result{Result: "success", Row: row}
}
