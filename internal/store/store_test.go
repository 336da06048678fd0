package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"geo-leads/internal/migrate"

	"github.com/google/uuid"
)

func TestNullStr(t *testing.T) {
	if nullStr("").Valid {
		t.Error("empty string should be NULL")
	}
	if v := nullStr("x"); !v.Valid || v.String != "x" {
		t.Errorf("nullStr(x) = %+v", v)
	}
}

func openTest(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" {
		t.Skip("PG_TEST_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrate.EnsureSchema(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	return AttachDB(db)
}

func TestInsertLeadPostgres(t *testing.T) {
	s := openTest(t)
	c := 7
	id, at, err := s.InsertLead(context.Background(), LeadRow{Ref: uuid.NewString(), Address: "1 Main St", Condition: &c})
	if err != nil {
		t.Fatal(err)
	}
	if id <= 0 || at.IsZero() {
		t.Errorf("id=%d at=%v", id, at)
	}
}

func TestIncrResolutionPostgres(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	slug := "test-" + uuid.NewString()
	for i := 0; i < 2; i++ {
		if err := s.IncrResolution(ctx, "coords", slug, true); err != nil {
			t.Fatal(err)
		}
	}
	rows, err := s.RecentResolutions(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		if r.Slug == slug && r.Hits != 2 {
			t.Errorf("hits = %d", r.Hits)
		}
	}
}
