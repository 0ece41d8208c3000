package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type fakeResult struct {
	records []*neo4j.Record
	idx     int
}

func (f *fakeResult) Next(ctx context.Context) bool {
	if f.idx < len(f.records) {
		f.idx++
		return true
	}
	return false
}

func (f *fakeResult) Record() *neo4j.Record {
	return f.records[f.idx-1]
}

type fakeRunner struct {
	result  *fakeResult
	err     error
	cyphers []string
	params  []map[string]any
}

func (f *fakeRunner) Run(ctx context.Context, cypher string, params map[string]any) (result, error) {
	f.cyphers = append(f.cyphers, cypher)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeRunner) Close(ctx context.Context) error { return nil }

type baseline struct {
	Name string
	HP   float64
}

func makeRecord(name string, hp float64) *neo4j.Record {
	return &neo4j.Record{
		Values: []any{map[string]any{"name": name, "hp": hp}},
		Keys:   []string{"n"},
	}
}

func newTestRepo(f *fakeRunner) *Neo4jRepo[baseline, string] {
	r := NewNeo4jRepo[baseline, string](
		nil, "Vehicle",
		func(b baseline) map[string]any { return map[string]any{"name": b.Name, "hp": b.HP} },
		func(rec *neo4j.Record) (baseline, error) {
			if len(rec.Values) == 0 {
				return baseline{}, errors.New("empty record")
			}
			m, ok := rec.Values[0].(map[string]any)
			if !ok {
				return baseline{}, errors.New("unexpected record shape")
			}
			return baseline{Name: m["name"].(string), HP: m["hp"].(float64)}, nil
		},
		WithIDKey[baseline, string]("name"),
	)
	r.newSession = func(ctx context.Context) runner { return f }
	return r
}

func TestGet(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{records: []*neo4j.Record{makeRecord("mx5", 181)}}}
	r := newTestRepo(f)

	got, err := r.Get(context.Background(), "mx5")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "mx5" || got.HP != 181 {
		t.Fatalf("got %+v", got)
	}
	if !strings.Contains(f.cyphers[0], "{name: $id}") {
		t.Fatalf("cypher should match on name: %s", f.cyphers[0])
	}
}

func TestGetNotFound(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{}}
	r := newTestRepo(f)

	_, err := r.Get(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetRunError(t *testing.T) {
	f := &fakeRunner{err: errors.New("db down")}
	r := newTestRepo(f)

	if _, err := r.Get(context.Background(), "mx5"); err == nil {
		t.Fatal("expected error")
	}
}

func TestListDefaultLimit(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{records: []*neo4j.Record{makeRecord("a", 1), makeRecord("b", 2)}}}
	r := newTestRepo(f)

	items, err := r.List(context.Background(), ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	if got := f.params[0]["limit"]; got != 100 {
		t.Fatalf("limit = %v, want 100", got)
	}
}

func TestListFilter(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{}}
	r := newTestRepo(f)

	_, err := r.List(context.Background(), ListOpts{Filter: map[string]any{"drivetrain": "awd"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.cyphers[0], "WHERE n.drivetrain = $f_drivetrain") {
		t.Fatalf("cypher missing filter clause: %s", f.cyphers[0])
	}
	if got := f.params[0]["f_drivetrain"]; got != "awd" {
		t.Fatalf("filter param = %v", got)
	}
}

func TestCreate(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{records: []*neo4j.Record{makeRecord("gt3", 502)}}}
	r := newTestRepo(f)

	got, err := r.Create(context.Background(), baseline{Name: "gt3", HP: 502})
	if err != nil {
		t.Fatal(err)
	}
	if got.HP != 502 {
		t.Fatalf("got %+v", got)
	}
	if !strings.Contains(f.cyphers[0], "CREATE (n:Vehicle $props)") {
		t.Fatalf("unexpected cypher: %s", f.cyphers[0])
	}
}

func TestUpsertUsesMerge(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{records: []*neo4j.Record{makeRecord("sti", 310)}}}
	r := newTestRepo(f)

	got, err := r.Upsert(context.Background(), baseline{Name: "sti", HP: 310})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "sti" {
		t.Fatalf("got %+v", got)
	}
	if !strings.Contains(f.cyphers[0], "MERGE (n:Vehicle {name: $id})") {
		t.Fatalf("unexpected cypher: %s", f.cyphers[0])
	}
}

func TestUpdateNotFound(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{}}
	r := newTestRepo(f)

	_, err := r.Update(context.Background(), baseline{Name: "ghost", HP: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{}}
	r := newTestRepo(f)

	if err := r.Delete(context.Background(), "mx5"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.cyphers[0], "DETACH DELETE n") {
		t.Fatalf("unexpected cypher: %s", f.cyphers[0])
	}
}

func TestNewNeo4jRepoDefaultIDKey(t *testing.T) {
	r := NewNeo4jRepo[baseline, string](nil, "Vehicle", nil, nil)
	if r.idKey != "id" {
		t.Fatalf("idKey = %s, want id", r.idKey)
	}
}
