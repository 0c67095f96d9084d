package state

import (
	"testing"

	cl "photo-albums/pkg/catalog"

	"github.com/google/go-cmp/cmp"
)

func TestTracker(t *testing.T) {
	tr := newTracker()
	fav := OpKey{EntityID: "i1", Kind: OpFavorite}
	del := OpKey{EntityID: "i1", Kind: OpDelete}

	if st, _ := tr.status(); st != StatusIdle {
		t.Fatalf("expected idle, got %s", st)
	}
	if !tr.acquire(fav) {
		t.Fatalf("expected to acquire %v", fav)
	}
	if tr.acquire(fav) {
		t.Fatalf("expected a second acquire of %v to fail", fav)
	}
	if !tr.acquire(del) {
		t.Fatalf("expected another kind on the same entity to be independent")
	}

	tr.fail(fav, "Failed to toggle favorite")
	if tr.pending(fav) {
		t.Fatalf("expected %v to leave the in-flight set", fav)
	}
	if st, msg := tr.status(); st != StatusFailed || msg != "Failed to toggle favorite" {
		t.Fatalf("unexpected coarse status %s %q", st, msg)
	}

	// A restarted run keeps the error until it succeeds.
	tr.start(fav)
	if got := tr.failures(); len(got) != 1 {
		t.Fatalf("expected the failure to stay visible while retrying, got %+v", got)
	}
	tr.succeed(fav)
	if got := tr.failures(); len(got) != 0 {
		t.Fatalf("expected success to clear the failure, got %+v", got)
	}

	tr.fail(del, "Failed to delete image")
	tr.dismiss(del)
	if st := tr.snapshot()[del]; st.Status != StatusFailed || st.Error != "" {
		t.Fatalf("expected dismiss to keep the status and drop the error, got %+v", st)
	}
	tr.reset(del)
	if _, ok := tr.snapshot()[del]; ok {
		t.Fatalf("expected reset to drop %v", del)
	}
}

func TestCollection(t *testing.T) {
	c := newCollection(cl.Album.Clone)
	c.reset([]cl.Album{{ID: "a"}, {ID: "b"}, {ID: "c"}}, albumID)

	c.put("b", cl.Album{ID: "b", Name: "renamed"})
	c.put("d", cl.Album{ID: "d"})
	if c.replace("zz", cl.Album{ID: "zz"}) {
		t.Fatalf("expected replace of a missing id to fail")
	}
	c.remove("a")

	var got []string
	for _, a := range c.list() {
		got = append(got, a.ID+a.Name)
	}
	if diff := cmp.Diff([]string{"brenamed", "c", "d"}, got); diff != "" {
		t.Fatalf("unexpected order: %s", diff)
	}

	c.put("c", cl.Album{ID: "c", SharedWith: []string{"x"}})
	listed := c.list()
	listed[1].SharedWith[0] = "mutated"
	if v, _ := c.get("c"); v.SharedWith[0] != "x" {
		t.Fatalf("expected list to return copies")
	}
}

func TestNotifierCoalesces(t *testing.T) {
	var n notifier
	ch, cancel := n.Subscribe()
	n.notify()
	n.notify()

	select {
	case <-ch:
	default:
		t.Fatalf("expected a signal")
	}
	select {
	case <-ch:
		t.Fatalf("expected signals to coalesce")
	default:
	}

	cancel()
	cancel()
	n.notify()
	select {
	case <-ch:
		t.Fatalf("expected no signal after cancel")
	default:
	}
}
