// Copyright 2025 Certen Protocol

package store

import (
	"testing"

	"github.com/certen/independant-validator/pkg/statistic"
	"github.com/certen/independant-validator/pkg/trixel"
	"github.com/certen/independant-validator/pkg/world"
)

// memKV is a trivial in-memory KV used for store tests, mirroring the
// donor's main.go MemoryKV helper.
type memKV struct {
	data map[string][]byte
}

func newMemKV() *memKV { return &memKV{data: make(map[string][]byte)} }

func (m *memKV) Get(key []byte) ([]byte, error) { return m.data[string(key)], nil }
func (m *memKV) Set(key, value []byte) error {
	m.data[string(key)] = append([]byte{}, value...)
	return nil
}

func TestWorldRoundTrip(t *testing.T) {
	s := NewStore(newMemKV())
	var addr, name [32]byte
	addr[0] = 1

	w, err := world.Init("alice", addr, name, 3, true, statistic.Count)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveWorld(addr, w); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadWorld(addr)
	if err != nil {
		t.Fatal(err)
	}
	if got.Authority != "alice" || got.CanonicalResolution != 3 {
		t.Fatalf("round-tripped world mismatch: %+v", got)
	}

	var missing [32]byte
	missing[0] = 0xFF
	if _, err := s.LoadWorld(missing); err != ErrWorldNotFound {
		t.Fatalf("err = %v, want ErrWorldNotFound", err)
	}
}

func TestTrixelRoundTrip(t *testing.T) {
	s := NewStore(newMemKV())
	var worldAddr [32]byte
	worldAddr[0] = 7

	tr := trixel.Init(worldAddr, 432, 3, statistic.Count)
	if err := s.SaveTrixel(worldAddr, tr); err != nil {
		t.Fatal(err)
	}
	has, err := s.HasTrixel(worldAddr, 432)
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Fatal("expected trixel to exist after save")
	}
	got, err := s.LoadTrixel(worldAddr, 432)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != 432 || got.Resolution != 3 {
		t.Fatalf("round-tripped trixel mismatch: %+v", got)
	}

	if _, err := s.LoadTrixel(worldAddr, 999999); err != ErrTrixelNotFound {
		t.Fatalf("err = %v, want ErrTrixelNotFound", err)
	}
}

func TestDeriveAddressInjective(t *testing.T) {
	var w1, w2 [32]byte
	w2[0] = 1
	a := DeriveAddress(w1, 432)
	b := DeriveAddress(w1, 433)
	c := DeriveAddress(w2, 432)
	if a == b {
		t.Fatal("distinct ids collided")
	}
	if a == c {
		t.Fatal("distinct worlds collided")
	}
	if DeriveAddress(w1, 432) != a {
		t.Fatal("derive_address not deterministic")
	}
}
