package meaning

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestClientDefineEnglish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/water" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[{"meanings":[{"definitions":[{"definition":"a clear liquid"}]}]}]`))
	}))
	defer srv.Close()

	c := NewClient()
	c.DictionaryURL = srv.URL

	got, err := c.Meaning(context.Background(), "water", "en")
	if err != nil {
		t.Fatal(err)
	}
	if got != "a clear liquid" {
		t.Errorf("meaning = %q", got)
	}
}

func TestClientDefineUnknownWord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient()
	c.DictionaryURL = srv.URL

	got, err := c.Meaning(context.Background(), "xyzzy", "en")
	if err != nil {
		t.Fatalf("404 should not be an error, got %v", err)
	}
	if got != "" {
		t.Errorf("meaning = %q, want empty", got)
	}
}

func TestClientTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "perro" {
			t.Errorf("q = %q", q)
		}
		if lp := r.URL.Query().Get("langpair"); lp != "es|en" {
			t.Errorf("langpair = %q", lp)
		}
		w.Write([]byte(`{"responseData":{"translatedText":"dog"}}`))
	}))
	defer srv.Close()

	c := NewClient()
	c.TranslateURL = srv.URL

	got, err := c.Meaning(context.Background(), "perro", "es")
	if err != nil {
		t.Fatal(err)
	}
	if got != "dog" {
		t.Errorf("meaning = %q, want dog", got)
	}
}

func TestClientTranslateEchoMeansNoMeaning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responseData":{"translatedText":"Zorro"}}`))
	}))
	defer srv.Close()

	c := NewClient()
	c.TranslateURL = srv.URL

	got, err := c.Meaning(context.Background(), "zorro", "es")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("echoed input should yield empty meaning, got %q", got)
	}
}

func TestClientOffline(t *testing.T) {
	c := NewClient()
	c.DictionaryURL = "http://127.0.0.1:1"

	if _, err := c.Meaning(context.Background(), "water", "en"); err == nil {
		t.Error("expected a transport error when the service is unreachable")
	}
}

type recordingApplier struct {
	mu      sync.Mutex
	applied map[string]string
}

func (r *recordingApplier) ApplyMeaning(userID, word, language, meaning string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applied == nil {
		r.applied = make(map[string]string)
	}
	r.applied[word] = meaning
	return nil
}

func (r *recordingApplier) get(word string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied[word]
}

func TestEnricherAppliesMeanings(t *testing.T) {
	lookup := NewFakeLookup(map[string]string{"perro": "dog", "gato": "cat"})
	applier := &recordingApplier{}
	e := NewEnricher(lookup, applier, 2)
	e.Start(context.Background())

	e.Enrich("u1", "es", []string{"perro", "gato", "zorro"})
	e.Close()

	if got := applier.get("perro"); got != "dog" {
		t.Errorf("perro = %q, want dog", got)
	}
	if got := applier.get("gato"); got != "cat" {
		t.Errorf("gato = %q, want cat", got)
	}
	// zorro has no meaning: nothing applied.
	if got := applier.get("zorro"); got != "" {
		t.Errorf("zorro = %q, want nothing applied", got)
	}

	calls := lookup.Calls()
	sort.Strings(calls)
	want := []string{"es:gato", "es:perro", "es:zorro"}
	for i, w := range want {
		if calls[i] != w {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
}

func TestEnricherSurvivesLookupErrors(t *testing.T) {
	lookup := NewFakeLookup(nil)
	lookup.FailWith(errors.New("service down"))
	applier := &recordingApplier{}
	e := NewEnricher(lookup, applier, 1)
	e.Start(context.Background())

	e.Enrich("u1", "en", []string{"water"})
	e.Close()

	if got := applier.get("water"); got != "" {
		t.Errorf("failed lookup applied %q", got)
	}
}

func TestPoolRejectsAfterClose(t *testing.T) {
	p := NewPool(1, 1)
	p.Start(context.Background())
	p.Close()

	err := p.Submit(func(context.Context) {})
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("err = %v, want ErrPoolClosed", err)
	}
}

func TestPoolShedsLoadWhenQueueFull(t *testing.T) {
	// Workers never started: the queue fills and stays full.
	p := NewPool(1, 2)

	for i := 0; i < 2; i++ {
		if err := p.Submit(func(context.Context) {}); err != nil {
			t.Fatal(err)
		}
	}

	done := make(chan error, 1)
	go func() { done <- p.Submit(func(context.Context) {}) }()
	select {
	case err := <-done:
		if !errors.Is(err, ErrQueueFull) {
			t.Errorf("err = %v, want ErrQueueFull", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}
}

func TestPoolRunsQueuedTasksBeforeClose(t *testing.T) {
	p := NewPool(2, 8)
	p.Start(context.Background())

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 8; i++ {
		if err := p.Submit(func(context.Context) {
			time.Sleep(time.Millisecond)
			mu.Lock()
			ran++
			mu.Unlock()
		}); err != nil {
			t.Fatal(err)
		}
	}
	p.Close()

	mu.Lock()
	defer mu.Unlock()
	if ran != 8 {
		t.Errorf("ran = %d, want 8", ran)
	}
}
