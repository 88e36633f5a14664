package bolt

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Comcast/koala/core"
	"github.com/Comcast/koala/storage"
)

func TestImpl(t *testing.T) {
	// Just confirm that this code compiles.
	var _ storage.Storage = &Storage{}
}

func TestBasics(t *testing.T) {
	dir, err := ioutil.TempDir("", "koala-bolt")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	var (
		filename = filepath.Join(dir, "traces.db")
		pid      = "00000000deadbeef"
	)

	s, err := NewStorage(filename)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if err := s.Close(ctx); err != nil {
			t.Fatal(err)
		}
	}()

	if err := s.MakeProgram(ctx, pid); err != nil {
		t.Fatal(err)
	}

	at := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	ts := []*storage.Trace{
		{
			Source: "max.koala",
			Goal:   "MAX(3, 5, Z)",
			At:     at,
			Walked: &core.Walked{
				Strides: []*core.Stride{
					{
						Step:    1,
						From:    []string{"MAX(3, 5, Z)"},
						Literal: "MAX(3, 5, Z)",
						Rule:    "MAX(X, Y, Z) : X < Y : Z = Y | true.",
						State:   core.Finished,
					},
				},
				StoppedBecause: core.Done,
				Results:        []string{"MAX(3, 5, 5)"},
			},
		},
		{
			Source: "max.koala",
			Goal:   "MAX(3, Y, Z)",
			At:     at,
			Walked: &core.Walked{
				StoppedBecause: core.Deadlocked,
			},
		},
	}

	if err := s.WriteTraces(ctx, pid, ts); err != nil {
		t.Fatal(err)
	}
	if ts[0].Id == "" || ts[1].Id == "" || ts[0].Id == ts[1].Id {
		t.Fatalf("bad ids %q %q", ts[0].Id, ts[1].Id)
	}

	got, err := s.GetTraces(ctx, pid)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("wanted 2 traces, got %d", len(got))
	}
	if got[0].Id != ts[0].Id || got[0].Goal != "MAX(3, 5, Z)" {
		t.Fatalf("bad first trace %#v", got[0])
	}
	w := got[0].Walked
	if w.StoppedBecause != core.Done || len(w.Strides) != 1 || w.Strides[0].State != core.Finished {
		t.Fatalf("bad walked %#v", w)
	}
	if !got[0].At.Equal(at) {
		t.Fatalf("bad time %v", got[0].At)
	}
	if got[1].Walked.StoppedBecause != core.Deadlocked {
		t.Fatal(got[1].Walked.StoppedBecause)
	}

	// Delete one.
	got[1].Deleted = true
	if err := s.WriteTraces(ctx, pid, got[1:]); err != nil {
		t.Fatal(err)
	}
	if got, err = s.GetTraces(ctx, pid); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("wanted 1 trace, got %d", len(got))
	}

	pids, err := s.Programs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pids) != 1 || pids[0] != pid {
		t.Fatal(pids)
	}

	if err := s.RemProgram(ctx, pid); err != nil {
		t.Fatal(err)
	}
	if got, err = s.GetTraces(ctx, pid); err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal(got)
	}
}
