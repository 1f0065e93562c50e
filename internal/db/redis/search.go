package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/Toolenaar/decky/internal/db"
	"github.com/Toolenaar/decky/internal/domain/search/filter"
)

// Search executes a compiled query descriptor via FT.SEARCH.
func (s *Store) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	queryStr := buildQueryString(q)

	args := []string{q.Index, queryStr}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	withScores := q.SortBy == ""
	if withScores {
		args = append(args, "WITHSCORES")
	} else {
		order := "DESC"
		if q.SortAsc {
			order = "ASC"
		}
		args = append(args, "SORTBY", q.SortBy, order)
	}

	args = append(args, "LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit))

	if q.KNN != nil {
		args = append(args, "PARAMS", "2", "BLOB", vectorToBytes(q.KNN.Vector))
	}

	args = append(args, "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseSearchResult(raw, withScores)
}

// SearchCount returns the match count via FT.SEARCH with LIMIT 0 0.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	if query == "" {
		query = "*"
	}
	cmd := s.b().Arbitrary("FT.SEARCH").Args(index, query, "LIMIT", "0", "0").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") {
			return 0, db.ErrIndexNotFound
		}
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// --- Query string assembly ---

// buildQueryString renders the descriptor into RediSearch dialect 2.
// Restrictive and scoring clauses are AND-joined; an absent scoring part
// degrades to match-everything, never to an empty query.
func buildQueryString(q *db.Query) string {
	var parts []string

	for _, cond := range q.Filters.Must() {
		if p := buildCondition(cond); p != "" {
			parts = append(parts, p)
		}
	}
	for _, cond := range q.Filters.MustNot() {
		if p := buildCondition(cond); p != "" {
			parts = append(parts, "-"+p)
		}
	}
	for _, sc := range q.Scoring {
		if p := buildScoringClause(sc); p != "" {
			parts = append(parts, p)
		}
	}

	base := "*"
	if len(parts) > 0 {
		base = strings.Join(parts, " ")
	}

	if q.KNN != nil {
		knn := fmt.Sprintf("[KNN %d @%s $BLOB]", q.KNN.K, q.KNN.Field)
		if base == "*" {
			return "*=>" + knn
		}
		return "(" + base + ")=>" + knn
	}

	return base
}

func buildCondition(cond filter.Condition) string {
	switch {
	case cond.IsRange():
		return buildNumericFilter(cond.Key(), *cond.Range())
	case cond.IsMatch() && cond.AllOf():
		parts := make([]string, 0, len(cond.Values()))
		for _, v := range cond.Values() {
			parts = append(parts, buildTagFilter(cond.Key(), []string{v}))
		}
		return strings.Join(parts, " ")
	case cond.IsMatch():
		return buildTagFilter(cond.Key(), cond.Values())
	}
	return ""
}

func buildScoringClause(sc db.ScoringClause) string {
	var clause string
	switch sc.Kind {
	case db.ClauseTag:
		clause = buildTagFilter(sc.Field, sc.Terms)
	case db.ClauseText:
		escaped := make([]string, 0, len(sc.Terms))
		for _, t := range sc.Terms {
			if e := escapeQuery(t); e != "" {
				escaped = append(escaped, e)
			}
		}
		if len(escaped) == 0 {
			return ""
		}
		clause = fmt.Sprintf("@%s:(%s)", sc.Field, strings.Join(escaped, " "))
	default:
		return ""
	}
	if sc.Boost > 0 && sc.Boost != 1 {
		clause = fmt.Sprintf("(%s)=>{$weight: %g}", clause, sc.Boost)
	}
	if sc.Optional {
		clause = "~" + clause
	}
	return clause
}

func buildTagFilter(key string, values []string) string {
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		escaped = append(escaped, tagEscaper.Replace(v))
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

func buildNumericFilter(key string, r filter.Range) string {
	minBound := "-inf"
	maxBound := "+inf"

	if r.GT() != nil {
		minBound = fmt.Sprintf("(%g", *r.GT())
	} else if r.GTE() != nil {
		minBound = fmt.Sprintf("%g", *r.GTE())
	}

	if r.LT() != nil {
		maxBound = fmt.Sprintf("(%g", *r.LT())
	} else if r.LTE() != nil {
		maxBound = fmt.Sprintf("%g", *r.LTE())
	}

	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage, withScores bool) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	stride := 2
	if withScores {
		stride = 3
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/stride)
	for i := 1; i+stride-1 < len(raw); i += stride {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key}
		fieldsIdx := i + 1

		if withScores {
			scoreStr, err := raw[i+1].ToString()
			if err != nil {
				continue
			}
			if score, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				entry.Score = score
			}
			fieldsIdx = i + 2
		}

		fields, err := raw[fieldsIdx].ToArray()
		if err != nil {
			continue
		}
		entry.Raw = extractDocJSON(fields)

		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

// extractDocJSON pulls the "$" field (whole-document JSON) out of the
// name/value pair list.
func extractDocJSON(fields []rueidis.RedisMessage) []byte {
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil || name != "$" {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		return []byte(value)
	}
	return nil
}

// --- Escaping ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(strings.TrimSpace(s))
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
