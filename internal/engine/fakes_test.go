package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	eansearch "github.com/eansearch/eansearch-go"
	"github.com/eansearch/eansearch-go/internal/notify"
	"github.com/eansearch/eansearch-go/internal/store"
	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// fakeStore is an in-memory store.Store covering the operations the engine
// and scheduler touch. The embedded nil interface panics on anything else,
// which is the signal a test wants for an unexpected call.
type fakeStore struct {
	store.Store

	mu sync.Mutex

	due        []domain.Watch
	listDueErr error
	dueLimit   int

	watches map[string]*domain.Watch

	latest        map[string]*domain.Snapshot
	snapshots     []*domain.Snapshot
	insertSnapErr error

	lastChecked map[string]time.Time

	alerts         []*domain.Alert
	createAlertErr error
	recentAlerts   map[string]bool
	pendingErr     error
	attempts       []fakeAttempt

	credits []int64

	pruned   int
	pruneErr error

	locks        map[string]string
	denyLock     bool
	acquireErr   error
	runs         []*fakeJobRun
	insertRunErr error
	stale        int
	staleErr     error
	staleCutoff  time.Duration
}

type fakeAttempt struct {
	alertID   string
	succeeded bool
	errText   string
}

type fakeJobRun struct {
	id      string
	name    string
	status  string
	errText string
	rows    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		watches:      map[string]*domain.Watch{},
		latest:       map[string]*domain.Snapshot{},
		lastChecked:  map[string]time.Time{},
		recentAlerts: map[string]bool{},
		locks:        map[string]string{},
	}
}

// addWatch registers a watch and queues it as due for the next refresh.
func (f *fakeStore) addWatch(w domain.Watch) {
	f.watches[w.ID] = &w
	f.due = append(f.due, w)
}

func (f *fakeStore) ListDueWatches(_ context.Context, _ time.Time, limit int) ([]domain.Watch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listDueErr != nil {
		return nil, f.listDueErr
	}
	f.dueLimit = limit
	due := f.due
	if limit < len(due) {
		due = due[:limit]
	}
	return append([]domain.Watch(nil), due...), nil
}

func (f *fakeStore) GetWatch(_ context.Context, id string) (*domain.Watch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.watches[id]
	if !ok {
		return nil, fmt.Errorf("watch %s not found", id)
	}
	return w, nil
}

func (f *fakeStore) GetLatestSnapshot(_ context.Context, watchID string) (*domain.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest[watchID], nil
}

func (f *fakeStore) GetSnapshot(_ context.Context, id string) (*domain.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.snapshots {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("snapshot %s not found", id)
}

func (f *fakeStore) InsertSnapshot(_ context.Context, s *domain.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertSnapErr != nil {
		return f.insertSnapErr
	}
	s.ID = fmt.Sprintf("snap-%d", len(f.snapshots)+1)
	s.FetchedAt = time.Now()
	stored := *s
	f.snapshots = append(f.snapshots, &stored)
	f.latest[s.WatchID] = &stored
	return nil
}

func (f *fakeStore) UpdateWatchLastChecked(_ context.Context, watchID string, t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastChecked[watchID] = t
	return nil
}

func (f *fakeStore) CreateAlert(_ context.Context, a *domain.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createAlertErr != nil {
		return f.createAlertErr
	}
	a.ID = fmt.Sprintf("alert-%d", len(f.alerts)+1)
	a.CreatedAt = time.Now()
	stored := *a
	f.alerts = append(f.alerts, &stored)
	return nil
}

func (f *fakeStore) ListPendingAlerts(_ context.Context) ([]domain.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	var pending []domain.Alert
	for _, a := range f.alerts {
		if !a.Notified {
			pending = append(pending, *a)
		}
	}
	return pending, nil
}

func (f *fakeStore) MarkAlertNotified(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ID == id {
			a.Notified = true
			now := time.Now()
			a.NotifiedAt = &now
		}
	}
	return nil
}

func (f *fakeStore) MarkAlertsNotified(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := f.MarkAlertNotified(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) HasRecentAlert(_ context.Context, watchID string, kind domain.AlertKind, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recentAlerts[watchID+"|"+string(kind)], nil
}

func (f *fakeStore) InsertNotificationAttempt(_ context.Context, alertID string, succeeded bool, _ int, errText string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, fakeAttempt{alertID: alertID, succeeded: succeeded, errText: errText})
	return nil
}

func (f *fakeStore) InsertCreditSample(_ context.Context, credits int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credits = append(f.credits, credits)
	return nil
}

func (f *fakeStore) PruneSnapshots(_ context.Context, _ int) (int, error) {
	return f.pruned, f.pruneErr
}

func (f *fakeStore) AcquireSchedulerLock(_ context.Context, jobName, holder string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.denyLock {
		return false, nil
	}
	f.locks[jobName] = holder
	return true, nil
}

func (f *fakeStore) ReleaseSchedulerLock(_ context.Context, jobName, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locks, jobName)
	return nil
}

func (f *fakeStore) InsertJobRun(_ context.Context, jobName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertRunErr != nil {
		return "", f.insertRunErr
	}
	run := &fakeJobRun{id: fmt.Sprintf("run-%d", len(f.runs)+1), name: jobName}
	f.runs = append(f.runs, run)
	return run.id, nil
}

func (f *fakeStore) CompleteJobRun(_ context.Context, id, status, errText string, rows int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.runs {
		if r.id == id {
			r.status = status
			r.errText = errText
			r.rows = rows
		}
	}
	return nil
}

func (f *fakeStore) RecoverStaleJobRuns(_ context.Context, olderThan time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staleCutoff = olderThan
	return f.stale, f.staleErr
}

// fakeClient scripts GtinLookup responses. Without a lookup func every
// barcode resolves to the same well-formed product record.
type fakeClient struct {
	mu      sync.Mutex
	calls   []string
	lookup  func(ean string, language int) (*eansearch.Product, error)
	credits int64
}

func newFakeClient() *fakeClient {
	return &fakeClient{credits: eansearch.CreditsUnknown}
}

func (f *fakeClient) GtinLookup(_ context.Context, ean string, language int) (*eansearch.Product, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ean)
	f.mu.Unlock()
	if f.lookup != nil {
		return f.lookup(ean, language)
	}
	return &eansearch.Product{
		EAN:            ean,
		Name:           "Michael Jackson - Thriller (CD Album)",
		CategoryID:     "15",
		CategoryName:   "Music",
		IssuingCountry: "UK",
	}, nil
}

func (f *fakeClient) CreditsRemaining() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.credits
}

type fakeNotifier struct {
	mu      sync.Mutex
	err     error
	sent    []notify.AlertPayload
	batches [][]notify.AlertPayload
	titles  []string
}

func (f *fakeNotifier) SendAlert(_ context.Context, alert notify.AlertPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, alert)
	return nil
}

func (f *fakeNotifier) SendBatchAlert(_ context.Context, alerts []notify.AlertPayload, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, alerts)
	f.titles = append(f.titles, title)
	return nil
}

var (
	_ store.Store     = (*fakeStore)(nil)
	_ ProductClient   = (*fakeClient)(nil)
	_ notify.Notifier = (*fakeNotifier)(nil)
)
