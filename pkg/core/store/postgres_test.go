package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"

	"electrolyser_tea/pkg/core/pipeline"
	"electrolyser_tea/pkg/core/params/paramstest"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEA_TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := EnsureSchema(context.Background(), pool); err != nil {
		t.Fatal(err)
	}
	return pool
}

func TestPostgres_ImportLoad(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	if err := ImportPostgres(ctx, pool, paramstest.Store()); err != nil {
		t.Fatalf("ImportPostgres: %v", err)
	}
	got, err := NewPGSource(pool).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(paramstest.Tables(), got.Snapshot()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPostgres_RunRepo(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	repo, err := NewRunRepo(pool, "")
	if err != nil {
		t.Fatal(err)
	}
	res := pipeline.NewOrchestrator(nil, pipeline.Options{}).Run(ctx, paramstest.Store(), pipeline.Overrides{})
	if err := repo.Save(ctx, res); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load(ctx, res.RunID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Summary.NPV != res.Summary.NPV {
		t.Errorf("npv: %v != %v", got.Summary.NPV, res.Summary.NPV)
	}
}
