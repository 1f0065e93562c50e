package redis

import (
	"context"
	"strconv"

	"github.com/Toolenaar/decky/internal/db"
)

// SuggestAdd upserts a term into the completion dictionary with the given
// score. Re-adding an existing term replaces its score.
func (s *Store) SuggestAdd(ctx context.Context, dict, term string, score float64) error {
	cmd := s.b().Arbitrary("FT.SUGADD").
		Args(dict, term, strconv.FormatFloat(score, 'f', -1, 64)).
		Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSugAdd, Err: err}
	}
	return nil
}

// SuggestGet returns up to limit completions for the prefix, fuzzy-matched.
func (s *Store) SuggestGet(ctx context.Context, dict, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	cmd := s.b().Arbitrary("FT.SUGGET").
		Args(dict, prefix, "FUZZY", "MAX", strconv.Itoa(limit)).
		Build()
	terms, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpSugGet, Err: err}
	}
	return terms, nil
}

// SuggestDel removes a term from the completion dictionary. Deleting an
// absent term is not an error.
func (s *Store) SuggestDel(ctx context.Context, dict, term string) error {
	cmd := s.b().Arbitrary("FT.SUGDEL").Args(dict, term).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSugDel, Err: err}
	}
	return nil
}
