// Copyright 2025 Certen Protocol
//
// Unit tests for AuditRepository. Requires a live Postgres test database;
// skipped unless HTM_TEST_DB is set.

package database

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	connStr := os.Getenv("HTM_TEST_DB")
	if connStr == "" {
		os.Exit(0)
	}

	var err error
	testDB, err = sql.Open("postgres", connStr)
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}

	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func TestRecordAndFetchAuditEntry(t *testing.T) {
	if testDB == nil {
		t.Skip("test database not configured")
	}

	client := &Client{db: testDB}
	repo := NewAuditRepository(client)
	ctx := context.Background()

	var worldAddr, hash [32]byte
	worldAddr[0] = 9
	hash[0] = 7

	entry := AuditEntry{
		WorldAddress:  worldAddr,
		TrixelID:      432,
		Caller:        "authority",
		Value:         10,
		ResultingHash: hash,
		AcceptedAt:    time.Now(),
	}
	if err := repo.Record(ctx, entry); err != nil {
		t.Fatal(err)
	}

	entries, err := repo.RecentForTrixel(ctx, worldAddr, 432, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one audit entry")
	}
	if entries[0].Caller != "authority" || entries[0].Value != 10 {
		t.Fatalf("unexpected audit entry: %+v", entries[0])
	}
}
