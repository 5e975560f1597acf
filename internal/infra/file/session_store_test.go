package file

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"groq-chat-relay/internal/domain/model"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	store := NewSessionStore(path)
	ctx := context.Background()

	s := model.NewSession("s1")
	s.Title = "weekend plans"
	s.AddMessage(model.RoleUser, "any ideas?")
	s.AddMessage(model.RoleAssistant, "a few")
	in := model.Collection{"s1": s}

	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 1 || out["s1"] == nil {
		t.Fatalf("loaded %v", out)
	}
	if out["s1"].Title != "weekend plans" {
		t.Fatalf("title = %q", out["s1"].Title)
	}
	if !reflect.DeepEqual(out["s1"].Messages, s.Messages) {
		t.Fatalf("messages = %+v, want %+v", out["s1"].Messages, s.Messages)
	}
}

func TestLoadMissingFileYieldsEmptyCollection(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "nope.json"))
	out, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("got %v, want empty collection", out)
	}
}

func TestLoadCorruptFileYieldsEmptyCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := NewSessionStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("got %v, want empty collection", out)
	}
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	store := NewSessionStore(path)
	ctx := context.Background()

	_ = store.Save(ctx, model.Collection{"a": model.NewSession("a")})
	_ = store.Save(ctx, model.Collection{"b": model.NewSession("b")})

	out, _ := store.Load(ctx)
	if _, ok := out["a"]; ok {
		t.Fatal("stale session survived overwrite")
	}
	if _, ok := out["b"]; !ok {
		t.Fatal("latest snapshot missing")
	}
}
