package osr

import (
	"image"
	"testing"
)

func (r *fakeRenderer) imeCommitted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.imeCommits...)
}

func (r *fakeRenderer) imeCancelCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.imeCancels
}

func (r *fakeRenderer) keyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

func TestForwardKey_RequiresFocus(t *testing.T) {
	c, _ := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r)

	c.ForwardKeyEvent(id, KeyEvent{Type: KeyDown, Code: 65})
	c.Sync()
	if n := r.keyCount(); n != 0 {
		t.Fatalf("unfocused surface received %d key events", n)
	}

	c.Focus(id, true)
	c.ForwardKeyEvent(id, KeyEvent{Type: KeyDown, Code: 65})
	c.ForwardKeyEvent(id, KeyEvent{Type: KeyChar, Rune: 'a'})
	c.Sync()
	if n := r.keyCount(); n != 2 {
		t.Errorf("focused surface received %d key events, want 2", n)
	}
}

func TestForwardMouse_NoFocusRequired(t *testing.T) {
	c, _ := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r)

	c.ForwardMouseEvent(id, MouseEvent{Type: MouseMove, Pos: image.Pt(10, 20)})
	c.ForwardWheelEvent(id, WheelEvent{Pos: image.Pt(10, 20), Delta: image.Pt(0, -40)})
	c.Sync()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.mice) != 1 || len(r.wheels) != 1 {
		t.Errorf("mouse/wheel forwarded = %d/%d, want 1/1", len(r.mice), len(r.wheels))
	}
	if r.mice[0].Pos != image.Pt(10, 20) {
		t.Errorf("mouse pos = %v", r.mice[0].Pos)
	}
}

func TestIme_CommitOutsideCompositionIsNoOp(t *testing.T) {
	c, _ := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r)

	c.ImeCommitText(id, "stray")
	c.ImeCancelComposition(id)
	c.ImeFinishComposingText(id, false)
	c.Sync()

	if got := r.imeCommitted(); len(got) != 0 {
		t.Errorf("commit outside composition reached renderer: %v", got)
	}
	if n := r.imeCancelCount(); n != 0 {
		t.Errorf("cancel outside composition reached renderer %d times", n)
	}
}

func TestIme_ComposeThenCommit(t *testing.T) {
	c, _ := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r)

	c.ImeSetComposition(id, "ka", nil, Range{Start: 2, End: 2})
	c.ImeSetComposition(id, "kan", nil, Range{Start: 3, End: 3})
	c.ImeCommitText(id, "漢")
	// A second commit after the first must be dropped.
	c.ImeCommitText(id, "字")
	c.Sync()

	got := r.imeCommitted()
	if len(got) != 1 || got[0] != "漢" {
		t.Errorf("commits = %v, want [漢]", got)
	}
}

func TestIme_CommitNormalizesToNFC(t *testing.T) {
	c, _ := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r)

	c.ImeSetComposition(id, "e", nil, Range{})
	// "e" followed by a combining acute accent; NFC composes to "é".
	c.ImeCommitText(id, "é")
	c.Sync()

	got := r.imeCommitted()
	if len(got) != 1 || got[0] != "é" {
		t.Errorf("commits = %q, want [%q]", got, "é")
	}
}

func TestIme_FocusLossCancelsComposition(t *testing.T) {
	c, _ := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r)

	c.Focus(id, true)
	c.ImeSetComposition(id, "ni", nil, Range{})
	c.Focus(id, false)
	c.Sync()

	if n := r.imeCancelCount(); n != 1 {
		t.Fatalf("cancel count = %d, want 1", n)
	}
	// The composition is gone; a commit now must be a no-op.
	c.ImeCommitText(id, "に")
	c.Sync()
	if got := r.imeCommitted(); len(got) != 0 {
		t.Errorf("commit after implicit cancel reached renderer: %v", got)
	}
}

func TestIme_FinishComposingCommitsCurrentText(t *testing.T) {
	c, _ := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r)

	c.ImeSetComposition(id, "abc", nil, Range{Start: 3, End: 3})
	c.ImeFinishComposingText(id, true)
	c.Sync()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.imeFinish) != 1 || r.imeFinish[0] != "abc" {
		t.Errorf("finish = %v, want [abc]", r.imeFinish)
	}
}

func TestFocus_RepeatedStateIsNoOp(t *testing.T) {
	c, _ := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r)

	c.Focus(id, true)
	c.Focus(id, true)
	c.Focus(id, false)
	c.Sync()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.focuses) != 2 {
		t.Errorf("focus notifications = %v, want [true false]", r.focuses)
	}
}

func TestUpdateCursor_ForwardsAndDedupes(t *testing.T) {
	c, host := newTestCompositor(t)
	r := &fakeRenderer{}
	id := mustCreate(t, c, r)

	c.UpdateCursor(id, CursorPointer) // already the default shape
	c.UpdateCursor(id, CursorIBeam)
	c.UpdateCursor(id, CursorIBeam)
	c.UpdateCursor(id, CursorHand)
	c.Sync()

	host.mu.Lock()
	defer host.mu.Unlock()
	want := []CursorType{CursorIBeam, CursorHand}
	if len(host.cursors) != len(want) {
		t.Fatalf("cursors = %v, want %v", host.cursors, want)
	}
	for i := range want {
		if host.cursors[i] != want[i] {
			t.Errorf("cursors = %v, want %v", host.cursors, want)
			break
		}
	}
}

func TestCursorType_String(t *testing.T) {
	cases := map[CursorType]string{
		CursorPointer:  "pointer",
		CursorIBeam:    "ibeam",
		CursorGrabbing: "grabbing",
		CursorType(77): "CursorType(77)",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", uint8(k), got, want)
		}
	}
}

func TestModifiers(t *testing.T) {
	m := ModShift | ModAlt
	if !m.Shift() || !m.Alt() || m.Ctrl() || m.Super() {
		t.Errorf("modifier accessors wrong for %b", m)
	}
}
