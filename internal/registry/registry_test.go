package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/solvent/internal/model"
)

func TestRegistry_Lifecycle(t *testing.T) {
	reg := New(time.Minute)

	id, chain := reg.Register(model.ChainRequest{URL: "https://q/page1"})
	if id == "" {
		t.Fatal("want a non-empty chain ID")
	}

	snap, ok := reg.Get(id)
	if !ok {
		t.Fatal("chain should be tracked right after registration")
	}
	if snap.Status != StatusRunning || snap.CurrentURL != "https://q/page1" {
		t.Errorf("snapshot = %+v, want running at the start URL", snap)
	}

	chain.PageStarted("https://q/page2")
	chain.VerdictReceived(model.Verdict{Correct: true, URL: "https://q/page2"})
	chain.Finished(nil)

	snap, _ = reg.Get(id)
	if snap.Status != StatusFinished {
		t.Errorf("Status = %q, want finished", snap.Status)
	}
	if snap.PagesVisited != 1 {
		t.Errorf("PagesVisited = %d, want 1", snap.PagesVisited)
	}
	if snap.CurrentURL != "https://q/page2" {
		t.Errorf("CurrentURL = %q", snap.CurrentURL)
	}
	if snap.LastVerdict == nil || !snap.LastVerdict.Correct {
		t.Errorf("LastVerdict = %+v", snap.LastVerdict)
	}
}

func TestRegistry_FailureRecorded(t *testing.T) {
	reg := New(time.Minute)
	id, chain := reg.Register(model.ChainRequest{URL: "https://q/page1"})

	chain.Finished(errors.New("both acquisition paths failed"))

	snap, _ := reg.Get(id)
	if snap.Status != StatusFailed {
		t.Errorf("Status = %q, want failed", snap.Status)
	}
	if snap.Error == "" {
		t.Error("want the failure reason in the snapshot")
	}
}

func TestRegistry_UnknownID(t *testing.T) {
	reg := New(time.Minute)
	if _, ok := reg.Get("nope"); ok {
		t.Error("unknown ID should not resolve")
	}
}

func TestRegistry_DistinctIDs(t *testing.T) {
	reg := New(time.Minute)
	a, _ := reg.Register(model.ChainRequest{URL: "https://q/1"})
	b, _ := reg.Register(model.ChainRequest{URL: "https://q/2"})
	if a == b {
		t.Error("chain IDs must be unique")
	}
}
