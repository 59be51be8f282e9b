package handlers_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/eansearch/eansearch-go/internal/store"
	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// fakeStore implements the watch and health slices of store.Store in memory.
// The embedded interface is nil, so any call outside those slices panics,
// which is the signal a test wants for an unexpected call.
type fakeStore struct {
	store.Store

	watches map[string]*domain.Watch

	listErr       error
	createErr     error
	updateErr     error
	deleteErr     error
	setEnabledErr error
	pingErr       error

	lastEnabledOnly bool
	created         []*domain.Watch
	updated         []*domain.Watch
	deleted         []string
	enabledSet      map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		watches:    make(map[string]*domain.Watch),
		enabledSet: make(map[string]bool),
	}
}

func (f *fakeStore) addWatch(w *domain.Watch) {
	f.watches[w.ID] = w
}

func (f *fakeStore) ListWatches(_ context.Context, enabledOnly bool) ([]domain.Watch, error) {
	f.lastEnabledOnly = enabledOnly
	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []domain.Watch
	for _, w := range f.watches {
		if enabledOnly && !w.Enabled {
			continue
		}
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) GetWatch(_ context.Context, id string) (*domain.Watch, error) {
	w, ok := f.watches[id]
	if !ok {
		return nil, fmt.Errorf("watch %s not found", id)
	}
	return w, nil
}

func (f *fakeStore) GetWatchByBarcode(_ context.Context, barcode string) (*domain.Watch, error) {
	for _, w := range f.watches {
		if w.Barcode == barcode {
			return w, nil
		}
	}
	return nil, fmt.Errorf("no watch for barcode %s", barcode)
}

func (f *fakeStore) CreateWatch(_ context.Context, w *domain.Watch) error {
	if f.createErr != nil {
		return f.createErr
	}
	if w.ID == "" {
		w.ID = fmt.Sprintf("watch-%d", len(f.created)+1)
	}
	f.created = append(f.created, w)
	f.watches[w.ID] = w
	return nil
}

func (f *fakeStore) UpdateWatch(_ context.Context, w *domain.Watch) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, w)
	f.watches[w.ID] = w
	return nil
}

func (f *fakeStore) DeleteWatch(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	delete(f.watches, id)
	return nil
}

func (f *fakeStore) SetWatchEnabled(_ context.Context, id string, enabled bool) error {
	if f.setEnabledErr != nil {
		return f.setEnabledErr
	}
	f.enabledSet[id] = enabled
	return nil
}

func (f *fakeStore) Ping(_ context.Context) error {
	return f.pingErr
}
