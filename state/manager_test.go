package state_test

import (
	"bytes"
	"testing"

	"pointchain/state"
	"pointchain/storage"
)

type record struct {
	Name    string
	Balance uint64
}

func TestKVRoundTrip(t *testing.T) {
	m := state.NewManager(storage.NewMemDB())
	key := []byte("record/alice")

	ok, err := m.KVGet(key, &record{})
	if err != nil {
		t.Fatalf("get missing key: %v", err)
	}
	if ok {
		t.Fatalf("expected missing key")
	}

	want := record{Name: "alice", Balance: 42}
	if err := m.KVPut(key, &want); err != nil {
		t.Fatalf("put: %v", err)
	}

	var got record
	ok, err = m.KVGet(key, &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("expected key to exist")
	}
	if got != want {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, want)
	}

	has, err := m.KVHas(key)
	if err != nil || !has {
		t.Fatalf("expected KVHas true, got %v %v", has, err)
	}
}

func TestKVAppendAccumulates(t *testing.T) {
	m := state.NewManager(storage.NewMemDB())
	key := []byte("index/members")

	var empty [][]byte
	if err := m.KVGetList(key, &empty); err != nil {
		t.Fatalf("get empty list: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty list, got %d items", len(empty))
	}

	items := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	for _, item := range items {
		if err := m.KVAppend(key, item); err != nil {
			t.Fatalf("append %q: %v", item, err)
		}
	}

	var got [][]byte
	if err := m.KVGetList(key, &got); err != nil {
		t.Fatalf("get list: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(got))
	}
	for i := range items {
		if !bytes.Equal(got[i], items[i]) {
			t.Fatalf("item %d mismatch: %q vs %q", i, got[i], items[i])
		}
	}
}
