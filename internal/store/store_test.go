package store

import (
	"testing"
	"time"

	"github.com/mmcdole/kinoteka/internal/domain"
)

func TestSessionStore_LinkPersists(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSessionStore(dir, "http://localhost:8000/")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.GetLink(); ok {
		t.Fatal("new store has a link")
	}
	if err := s.SaveLink("q=heat&from=1990"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSessionStore(dir, "http://LOCALHOST:8000")
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	link, ok := reopened.GetLink()
	if !ok || link != "q=heat&from=1990" {
		t.Errorf("GetLink = %q, %v", link, ok)
	}

	if err := reopened.SaveLink(""); err != nil {
		t.Fatal(err)
	}
	if _, ok := reopened.GetLink(); ok {
		t.Error("link still stored after clearing")
	}
}

func TestSessionStore_SeparatesServers(t *testing.T) {
	dir := t.TempDir()

	a, err := NewSessionStore(dir, "http://a.example")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := NewSessionStore(dir, "http://b.example")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if err := a.SaveLink("q=a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.GetLink(); ok {
		t.Error("link leaked to another server's store")
	}
}

func TestSessionStore_Genres(t *testing.T) {
	s, err := NewSessionStore("", "")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	genres := []domain.Genre{{ID: "1", Name: "Action"}}
	if err := s.SaveGenres(genres); err != nil {
		t.Fatal(err)
	}
	got, ok := s.GetGenres()
	if !ok || len(got) != 1 || got[0].Name != "Action" {
		t.Errorf("GetGenres = %v, %v", got, ok)
	}

	now = now.Add(25 * time.Hour)
	if _, ok := s.GetGenres(); ok {
		t.Error("stale genre list returned")
	}
}
