package note

import (
	"testing"
	"time"
)

func TestNormalizeDefaults(t *testing.T) {
	due := time.Now().Add(time.Hour)
	n := &Note{Title: "   ", Due: &due, Completed: true}
	n.Normalize()

	if n.Title != DefaultTitle {
		t.Fatalf("expected default title, got %q", n.Title)
	}
	if n.Kind != KindNote {
		t.Fatalf("expected note kind, got %q", n.Kind)
	}
	if n.Due != nil || n.Completed {
		t.Fatalf("plain notes must not keep task fields: %+v", n)
	}
}

func TestNormalizeKeepsTaskFields(t *testing.T) {
	due := time.Now().Add(time.Hour)
	n := &Note{Title: "Pay rent", Kind: KindTask, Due: &due, Completed: true}
	n.Normalize()
	if n.Due == nil || !n.Completed {
		t.Fatalf("task fields dropped: %+v", n)
	}
	if n.IsActiveTask() {
		t.Fatalf("completed task reported active")
	}
}

func TestNormalizeTimes(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	in := []time.Time{
		base.Add(2 * time.Hour),
		{},
		base,
		base.Add(2*time.Hour + 100*time.Microsecond),
		base.Add(time.Hour),
	}

	got := NormalizeTimes(in)
	if len(got) != 3 {
		t.Fatalf("expected 3 times, got %d: %v", len(got), got)
	}
	for i, want := range []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)} {
		if !got[i].Equal(want) {
			t.Fatalf("index %d: expected %v, got %v", i, want, got[i])
		}
	}
}

func TestReminderFuture(t *testing.T) {
	now := time.Now()
	r := &Reminder{FireAt: now}
	if r.Future(now) {
		t.Fatalf("a reminder at now is not strictly in the future")
	}
	r.FireAt = now.Add(time.Millisecond)
	if !r.Future(now) {
		t.Fatalf("expected future reminder")
	}
}

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"":          CategoryAll,
		"Tasks":     CategoryTasks,
		"notes":     CategoryNotes,
		"done":      CategoryCompleted,
		"completed": CategoryCompleted,
	}
	for in, want := range cases {
		got, err := ParseCategory(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}
	if _, err := ParseCategory("bogus"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestParseMediaKind(t *testing.T) {
	if k, err := ParseMediaKind("image"); err != nil || k != MediaPhoto {
		t.Fatalf("expected photo, got %q (%v)", k, err)
	}
	if k, err := ParseMediaKind(""); err != nil || k != MediaFile {
		t.Fatalf("expected file default, got %q (%v)", k, err)
	}
	if _, err := ParseMediaKind("hologram"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGuessMediaKind(t *testing.T) {
	cases := map[string]MediaKind{
		"beach.JPG":      MediaPhoto,
		"shot.png":       MediaPhoto,
		"clip.mov":       MediaVideo,
		"memo.m4a":       MediaAudio,
		"invoice.pdf":    MediaFile,
		"no-extension":   MediaFile,
		"/tmp/track.MP3": MediaAudio,
	}
	for in, want := range cases {
		if got := GuessMediaKind(in); got != want {
			t.Errorf("%q: expected %s, got %s", in, want, got)
		}
	}
}
