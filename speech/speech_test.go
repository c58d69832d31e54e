package speech

import (
	"errors"
	"fmt"
	"testing"
)

func TestPoolFeedOrder(t *testing.T) {
	en := NewFake("en", 2, ScriptedUtterance("hello there", []string{"hello", "there"}, 0.9))
	es := NewFake("es", 2, ScriptedUtterance("hola amigo", []string{"hola", "amigo"}, 0.8))

	pool, err := NewPool(func(lang string) (Recognizer, error) {
		switch lang {
		case "en":
			return en, nil
		case "es":
			return es, nil
		}
		return nil, fmt.Errorf("unknown language %s", lang)
	}, []string{"en", "es"})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	frame := make([]byte, 640)

	finals, errs := pool.Feed(frame)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(finals) != 0 {
		t.Fatalf("finals after one frame: %v", finals)
	}

	// Both recognizers finalize on the second frame; order must follow
	// registration order.
	finals, _ = pool.Feed(frame)
	if len(finals) != 2 {
		t.Fatalf("got %d finals, want 2", len(finals))
	}
	if finals[0].Language != "en" || finals[1].Language != "es" {
		t.Errorf("finals order = %s,%s, want en,es", finals[0].Language, finals[1].Language)
	}
	if finals[1].Utterance.Text != "hola amigo" {
		t.Errorf("es text = %q", finals[1].Utterance.Text)
	}
}

func TestPoolLoadFailureClosesLoaded(t *testing.T) {
	en := NewFake("en", 1)
	_, err := NewPool(func(lang string) (Recognizer, error) {
		if lang == "en" {
			return en, nil
		}
		return nil, errors.New("model not found")
	}, []string{"en", "hi"})
	if err == nil {
		t.Fatal("expected error when a model fails to load")
	}
	if !en.Closed() {
		t.Error("already-loaded recognizer not closed after pool failure")
	}
}

func TestPoolFeedErrorSkipsOnlyFailingRecognizer(t *testing.T) {
	en := NewFake("en", 1, ScriptedUtterance("good morning", []string{"good", "morning"}, 0.9))
	es := NewFake("es", 1)
	es.FailWith(errors.New("decoder fault"))

	pool, err := NewPool(func(lang string) (Recognizer, error) {
		if lang == "en" {
			return en, nil
		}
		return es, nil
	}, []string{"en", "es"})
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	finals, errs := pool.Feed(make([]byte, 640))
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if len(finals) != 1 || finals[0].Language != "en" {
		t.Fatalf("finals = %+v, want one en final", finals)
	}
}

func TestEmptyTextFinalIsNoUtterance(t *testing.T) {
	en := NewFake("en", 1, ScriptedUtterance("", nil, 0))
	pool, err := NewPool(func(string) (Recognizer, error) { return en, nil }, []string{"en"})
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	finals, errs := pool.Feed(make([]byte, 640))
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	if len(finals) != 0 {
		t.Errorf("empty-text final surfaced: %+v", finals)
	}
}

func TestConfidences(t *testing.T) {
	u := ScriptedUtterance("a b", []string{"a", "b"}, 0.5)
	got := u.Confidences()
	if len(got) != 2 || got[0] != 0.5 || got[1] != 0.5 {
		t.Errorf("Confidences = %v", got)
	}
}
