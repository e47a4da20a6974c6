package store

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/supabase-community/supabase-go"

	"github.com/sells-group/seo-leads/internal/model"
)

// inserter is the slice of the Supabase client used for appends.
type inserter interface {
	Insert(ctx context.Context, table string, rows []map[string]string) error
}

type supabaseInserter struct {
	client *supabase.Client
}

func (s supabaseInserter) Insert(_ context.Context, table string, rows []map[string]string) error {
	_, _, err := s.client.From(table).Insert(rows, false, "", "", "").Execute()
	return err
}

// SupabaseStore appends archive records to a Supabase (PostgREST) table.
type SupabaseStore struct {
	table string
	ins   inserter
}

// NewSupabase creates a Supabase-backed persister.
func NewSupabase(url, key, table string) (*SupabaseStore, error) {
	if url == "" {
		return nil, eris.New("supabase: url is required")
	}
	if key == "" {
		return nil, eris.New("supabase: key is required")
	}
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, eris.Wrap(err, "supabase: create client")
	}
	return newSupabaseStore(table, supabaseInserter{client: client}), nil
}

func newSupabaseStore(table string, ins inserter) *SupabaseStore {
	if table == "" {
		table = "scored_rows"
	}
	return &SupabaseStore{table: table, ins: ins}
}

// Append implements Persister. Each record carries its run id.
func (s *SupabaseStore) Append(ctx context.Context, run model.Run, rows []model.ScoredRow) error {
	if len(rows) == 0 {
		return nil
	}
	records := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		rec := r.Record()
		rec["RunID"] = run.ID
		records = append(records, rec)
	}
	if err := s.ins.Insert(ctx, s.table, records); err != nil {
		return eris.Wrapf(err, "supabase: insert %d rows into %s", len(records), s.table)
	}
	return nil
}
