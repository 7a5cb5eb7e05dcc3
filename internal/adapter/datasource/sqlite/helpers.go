// Package sqlite file: internal/adapter/datasource/sqlite/helpers.go
package sqlite

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// condition is one equality predicate of a WHERE clause.
type condition struct {
	Field string
	Value any
}

// buildInsertSQL builds an INSERT with columns in a stable order.
func buildInsertSQL(tableName string, data map[string]any) (string, []any, error) {
	if len(data) == 0 {
		return "", nil, errors.New("INSERT requires data")
	}
	var cols, placeholders []string
	var args []any
	for _, k := range sortedKeys(data) {
		cols = append(cols, fmt.Sprintf("%q", k))
		placeholders = append(placeholders, "?")
		args = append(args, data[k])
	}
	query := fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)", tableName, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return query, args, nil
}

// buildUpdateSQL builds an UPDATE restricted by filters.
func buildUpdateSQL(tableName string, data map[string]any, filters []condition) (string, []any, error) {
	if len(data) == 0 {
		return "", nil, errors.New("UPDATE requires data")
	}
	whereClause, whereArgs, err := buildWhereClause(filters)
	if err != nil {
		return "", nil, err
	}
	if whereClause == "" {
		return "", nil, errors.New("UPDATE without a condition is not allowed")
	}
	var setClauses []string
	var args []any
	for _, k := range sortedKeys(data) {
		setClauses = append(setClauses, fmt.Sprintf("%q = ?", k))
		args = append(args, data[k])
	}
	args = append(args, whereArgs...)
	query := fmt.Sprintf("UPDATE %q SET %s %s", tableName, strings.Join(setClauses, ", "), whereClause)
	return query, args, nil
}

// buildDeleteSQL builds a DELETE; an unconditional delete is refused.
func buildDeleteSQL(tableName string, filters []condition) (string, []any, error) {
	whereClause, whereArgs, err := buildWhereClause(filters)
	if err != nil {
		return "", nil, err
	}
	if whereClause == "" {
		return "", nil, errors.New("DELETE without a condition is not allowed")
	}
	return fmt.Sprintf("DELETE FROM %q %s", tableName, whereClause), whereArgs, nil
}

// buildWhereClause joins equality conditions with AND.
func buildWhereClause(filters []condition) (string, []any, error) {
	if len(filters) == 0 {
		return "", make([]any, 0), nil
	}
	conds := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		if f.Field == "" {
			return "", nil, errors.New("empty field name in condition")
		}
		conds = append(conds, fmt.Sprintf("%q = ?", f.Field))
		args = append(args, f.Value)
	}
	return "WHERE " + strings.Join(conds, " AND "), args, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// tableColumns returns column name -> declared type for tableName, cached.
func (r *Repository) tableColumns(ctx context.Context, tableName string) (map[string]string, error) {
	r.columnsMu.RLock()
	cols, ok := r.columns[tableName]
	r.columnsMu.RUnlock()
	if ok {
		return cols, nil
	}

	cols, err := listColumns(ctx, r.db.DB, tableName)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q has no columns", tableName)
	}
	r.columnsMu.Lock()
	r.columns[tableName] = cols
	r.columnsMu.Unlock()
	return cols, nil
}

// listColumns reads the physical columns of a table.
func listColumns(ctx context.Context, db *sql.DB, tableName string) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, tableName))
	if err != nil {
		return nil, fmt.Errorf("PRAGMA table_info for table %q: %w", tableName, err)
	}
	defer rows.Close()
	cols := make(map[string]string)
	for rows.Next() {
		var (
			cid       int
			colName   string
			colType   string
			notnull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notnull, &dfltValue, &pk); err != nil {
			slog.Warn("scan column info failed", "table", tableName, "error", err)
			continue
		}
		cols[colName] = strings.ToUpper(colType)
	}
	return cols, rows.Err()
}

// coerceFields checks a partial field map against the table columns and converts
// each value to the column's storage class. protected columns are rejected.
func (r *Repository) coerceFields(ctx context.Context, tableName string, fields map[string]any, protected ...string) (map[string]any, error) {
	cols, err := r.tableColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(fields))
	for name, raw := range fields {
		colType, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", port.ErrInvalidInput, name)
		}
		for _, p := range protected {
			if p == name {
				return nil, fmt.Errorf("%w: field %q cannot be set", port.ErrInvalidInput, name)
			}
		}
		v, err := coerceValue(name, colType, raw)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func coerceValue(name, colType string, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	switch {
	case colType == "REAL":
		f, ok := asFloat(raw)
		if !ok {
			return nil, fmt.Errorf("%w: field %q expects a number", port.ErrInvalidInput, name)
		}
		return f, nil
	case strings.HasPrefix(colType, "INT"):
		f, ok := asFloat(raw)
		if !ok || f != math.Trunc(f) {
			return nil, fmt.Errorf("%w: field %q expects an integer", port.ErrInvalidInput, name)
		}
		return int64(f), nil
	case strings.HasPrefix(colType, "BOOL"):
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: field %q expects a boolean", port.ErrInvalidInput, name)
		}
		return b, nil
	}
	s := fmt.Sprint(raw)
	if strings.HasPrefix(name, "date_") {
		d, err := normalizeDate(s)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", port.ErrInvalidInput, name, err)
		}
		return d, nil
	}
	return s, nil
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

// normalizeDate accepts a date or an RFC3339 timestamp and keeps the date part.
func normalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		return t.Format(domain.DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(domain.DateLayout), nil
	}
	return "", fmt.Errorf("invalid date %q", s)
}
