package internal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeLister struct {
	mu    sync.Mutex
	body  string
	err   error
	calls int
}

func (f *fakeLister) GetCollections(ctx context.Context) (Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return Payload{}, f.err
	}
	return DecodePayload([]byte(f.body)), nil
}

func TestFetchCollections(t *testing.T) {
	refs, err := FetchCollections(context.Background(), &fakeLister{body: `{"collections":["a",{"name":"b","count":3}]}`})
	if err != nil {
		t.Fatalf("FetchCollections() error = %v", err)
	}
	if got := CollectionNames(refs); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("names = %v, want [a b]", got)
	}

	wantErr := &HTTPError{Op: "collections", Status: 500}
	if _, err := FetchCollections(context.Background(), &fakeLister{err: wantErr}); !errors.Is(err, wantErr) {
		t.Errorf("FetchCollections() error = %v, want %v", err, wantErr)
	}
}

func TestCollectionWatcher_Refresh(t *testing.T) {
	lister := &fakeLister{body: `["docs"]`}
	var updates []CollectionsUpdate
	w := NewCollectionWatcher(lister, time.Minute, nil, func(u CollectionsUpdate) {
		updates = append(updates, u)
	})

	u := w.Refresh(context.Background())
	if u.Auto {
		t.Error("manual refresh marked Auto")
	}
	if u.Err != nil || len(u.Collections) != 1 || u.Collections[0].Name != "docs" {
		t.Errorf("Refresh() = %+v", u)
	}
	if len(updates) != 1 {
		t.Errorf("delivered %d updates, want 1", len(updates))
	}
	if w.Last().Collections[0].Name != "docs" {
		t.Errorf("Last() = %+v", w.Last())
	}

	lister.mu.Lock()
	lister.err = errors.New("offline")
	lister.mu.Unlock()

	u = w.Refresh(context.Background())
	if u.Err == nil || u.Collections != nil {
		t.Errorf("failed Refresh() = %+v, want error and no collections", u)
	}
}

func TestCollectionWatcher_AutoRefresh(t *testing.T) {
	lister := &fakeLister{body: `["docs"]`}
	var mu sync.Mutex
	var autos int
	w := NewCollectionWatcher(lister, time.Second, nil, func(u CollectionsUpdate) {
		mu.Lock()
		defer mu.Unlock()
		if u.Auto {
			autos++
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(1500 * time.Millisecond)
	w.Stop()

	mu.Lock()
	defer mu.Unlock()
	if autos < 1 {
		t.Errorf("auto refreshes = %d, want at least 1", autos)
	}
}
