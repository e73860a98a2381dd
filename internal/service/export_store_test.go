package service

import (
	"testing"
	"time"
)

func TestExportStorePutGet(t *testing.T) {
	store := NewExportStore(time.Minute)

	exp := store.Put("mf_journal_20240115.csv", []byte("data"), []string{"a", "b"})
	if exp.Token == "" {
		t.Fatal("export has no token")
	}

	got := store.Get(exp.Token)
	if got == nil {
		t.Fatal("export not retrievable")
	}
	if got.FileName != "mf_journal_20240115.csv" || string(got.Data) != "data" {
		t.Errorf("got %+v", got)
	}
}

func TestExportStoreUnknownToken(t *testing.T) {
	store := NewExportStore(time.Minute)
	if store.Get("nope") != nil {
		t.Error("unknown token must return nil")
	}
}

func TestExportStoreExpiry(t *testing.T) {
	store := NewExportStore(time.Minute)
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	store.nowFn = func() time.Time { return now }

	exp := store.Put("x.csv", []byte("data"), nil)

	now = now.Add(59 * time.Second)
	if store.Get(exp.Token) == nil {
		t.Fatal("export expired too early")
	}

	now = now.Add(2 * time.Second)
	if store.Get(exp.Token) != nil {
		t.Error("export must expire after the TTL")
	}
}

func TestExportStoreTokensUnique(t *testing.T) {
	store := NewExportStore(time.Minute)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		exp := store.Put("x.csv", nil, nil)
		if seen[exp.Token] {
			t.Fatalf("duplicate token %q", exp.Token)
		}
		seen[exp.Token] = true
	}
}
