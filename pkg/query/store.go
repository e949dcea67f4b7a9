package query

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roboricindustries/raycon-display/pkg/widgets"
)

//go:embed schema.sql
var schemaFS embed.FS

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindDate
	kindBool
)

type column struct {
	name string
	kind fieldKind
}

type object struct {
	table  string
	fields map[string]column
}

var objects = map[string]object{
	"Opportunity": {
		table: "opportunities",
		fields: map[string]column{
			"Id":        {"id", kindText},
			"AccountId": {"account_id", kindText},
			"Name":      {"name", kindText},
			"Type":      {"type", kindText},
			"StageName": {"stage_name", kindText},
			"Amount":    {"amount", kindNumber},
			"CloseDate": {"close_date", kindDate},
			"IsWon":     {"is_won", kindBool},
			"IsClosed":  {"is_closed", kindBool},
		},
	},
}

var operators = map[string]bool{"=": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}

var aggregates = map[string]bool{"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true}

var dateGroupings = map[string]string{
	"DAY":   "%Y-%m-%d",
	"MONTH": "%Y-%m",
	"YEAR":  "%Y",
}

// Store serves widget queries from SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ Service = (*Store)(nil)

// Opportunity is one row of the opportunities table.
type Opportunity struct {
	ID        string
	AccountID string
	Name      string
	Type      string
	StageName string
	Amount    float64
	CloseDate string // YYYY-MM-DD
	IsWon     bool
	IsClosed  bool
}

// Open creates or opens the database at path and applies the schema.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("executing schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func (s *Store) UpsertAccount(ctx context.Context, id string, a widgets.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, billing_street, billing_city, billing_state, billing_postal_code, billing_country)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			billing_street = excluded.billing_street,
			billing_city = excluded.billing_city,
			billing_state = excluded.billing_state,
			billing_postal_code = excluded.billing_postal_code,
			billing_country = excluded.billing_country
	`, id, a.Name, a.Street, a.City, a.State, a.PostalCode, a.Country)
	if err != nil {
		return fmt.Errorf("upserting account %s: %w", id, err)
	}
	return nil
}

// AddOpportunity inserts o, replacing any row with the same id.
func (s *Store) AddOpportunity(ctx context.Context, o Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO opportunities (id, account_id, name, type, stage_name, amount, close_date, is_won, is_closed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.AccountID, o.Name, o.Type, o.StageName, o.Amount, o.CloseDate, o.IsWon, o.IsClosed)
	if err != nil {
		return fmt.Errorf("inserting opportunity %s: %w", o.ID, err)
	}
	return nil
}

func (s *Store) AddActivity(ctx context.Context, accountID string, a widgets.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO activities (id, account_id, type, subject, priority, activity_date, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, accountID, a.Type, a.Subject, a.Priority, a.ActivityDate, a.Description)
	if err != nil {
		return fmt.Errorf("inserting activity %s: %w", a.ID, err)
	}
	return nil
}

// Matrix returns a header row [RowField, columns...] followed by one row per
// distinct row value. Missing combinations are nil.
func (s *Store) Matrix(ctx context.Context, req MatrixRequest) ([][]any, error) {
	obj, err := lookupObject(req.ObjectName)
	if err != nil {
		return nil, err
	}
	rowExpr, err := obj.groupExpr(req.RowField, req.RowDateGrouping)
	if err != nil {
		return nil, err
	}
	colExpr, err := obj.groupExpr(req.ColumnField, req.ColumnDateGrouping)
	if err != nil {
		return nil, err
	}
	agg, err := obj.aggregateExpr(req.AggregateFunction, req.AggregateField)
	if err != nil {
		return nil, err
	}
	where, args, err := obj.where(req.Filters)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s AS r, %s AS c, %s AS v FROM %s%s GROUP BY r, c ORDER BY r, c`,
		rowExpr, colExpr, agg, obj.table, where)

	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying matrix: %w", err)
	}
	defer rows.Close()

	var (
		rowOrder []string
		cells    = map[string]map[string]float64{}
		colSet   = map[string]bool{}
	)
	for rows.Next() {
		var (
			r, c sql.NullString
			v    sql.NullFloat64
		)
		if err := rows.Scan(&r, &c, &v); err != nil {
			return nil, fmt.Errorf("scanning matrix row: %w", err)
		}
		if _, ok := cells[r.String]; !ok {
			cells[r.String] = map[string]float64{}
			rowOrder = append(rowOrder, r.String)
		}
		colSet[c.String] = true
		if v.Valid {
			cells[r.String][c.String] = v.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rowOrder) == 0 {
		return nil, nil
	}

	cols := make([]string, 0, len(colSet))
	for c := range colSet {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	header := make([]any, 0, len(cols)+1)
	header = append(header, req.RowField)
	for _, c := range cols {
		header = append(header, c)
	}
	out := [][]any{header}
	for _, r := range rowOrder {
		row := make([]any, 0, len(cols)+1)
		row = append(row, r)
		for _, c := range cols {
			if v, ok := cells[r][c]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// PieChart groups by one field, largest first. Total covers every group,
// including those cut by MaxSlices.
func (s *Store) PieChart(ctx context.Context, req ChartRequest) (widgets.ChartData, error) {
	obj, err := lookupObject(req.ObjectName)
	if err != nil {
		return widgets.ChartData{}, err
	}
	group, err := obj.groupExpr(req.GroupByField, "")
	if err != nil {
		return widgets.ChartData{}, err
	}
	agg, err := obj.aggregateExpr(req.AggregateFunction, req.AggregateField)
	if err != nil {
		return widgets.ChartData{}, err
	}
	where, args, err := obj.where(req.Filters)
	if err != nil {
		return widgets.ChartData{}, err
	}

	query := fmt.Sprintf(`SELECT %s AS g, %s AS v FROM %s%s GROUP BY g ORDER BY v DESC, g`,
		group, agg, obj.table, where)

	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return widgets.ChartData{}, fmt.Errorf("querying chart: %w", err)
	}
	defer rows.Close()

	var data widgets.ChartData
	for rows.Next() {
		var (
			g sql.NullString
			v sql.NullFloat64
		)
		if err := rows.Scan(&g, &v); err != nil {
			return widgets.ChartData{}, fmt.Errorf("scanning chart row: %w", err)
		}
		data.Total += v.Float64
		if req.MaxSlices > 0 && len(data.Labels) >= req.MaxSlices {
			continue
		}
		data.Labels = append(data.Labels, g.String)
		data.Values = append(data.Values, v.Float64)
	}
	return data, rows.Err()
}

func (s *Store) Aggregate(ctx context.Context, req MetricRequest) (widgets.MetricResult, error) {
	obj, err := lookupObject(req.ObjectName)
	if err != nil {
		return widgets.MetricResult{}, err
	}
	agg, err := obj.aggregateExpr(req.AggregateFunction, req.AggregateField)
	if err != nil {
		return widgets.MetricResult{}, err
	}
	where, args, err := obj.where(req.Filters)
	if err != nil {
		return widgets.MetricResult{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var v sql.NullFloat64
	query := fmt.Sprintf(`SELECT %s FROM %s%s`, agg, obj.table, where)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		return widgets.MetricResult{}, fmt.Errorf("querying metric: %w", err)
	}
	if !v.Valid {
		return widgets.MetricResult{}, nil
	}
	val := v.Float64
	return widgets.MetricResult{Value: &val, FormattedValue: widgets.FormatValue(val)}, nil
}

// Activities returns the account's activities, newest first.
func (s *Store) Activities(ctx context.Context, accountID string) ([]widgets.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, subject, priority, activity_date, description
		FROM activities WHERE account_id = ?
		ORDER BY activity_date DESC, id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var out []widgets.Activity
	for rows.Next() {
		var a widgets.Activity
		if err := rows.Scan(&a.ID, &a.Type, &a.Subject, &a.Priority, &a.ActivityDate, &a.Description); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Account(ctx context.Context, accountID string) (*widgets.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var a widgets.Address
	err := s.db.QueryRowContext(ctx, `
		SELECT name, billing_street, billing_city, billing_state, billing_postal_code, billing_country
		FROM accounts WHERE id = ?
	`, accountID).Scan(&a.Name, &a.Street, &a.City, &a.State, &a.PostalCode, &a.Country)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading account %s: %w", accountID, err)
	}
	return &a, nil
}

func lookupObject(name string) (object, error) {
	obj, ok := objects[name]
	if !ok {
		return object{}, fmt.Errorf("%w %q", ErrUnknownObject, name)
	}
	return obj, nil
}

func (o object) column(field string) (column, error) {
	c, ok := o.fields[field]
	if !ok {
		return column{}, fmt.Errorf("%w %q", ErrUnknownField, field)
	}
	return c, nil
}

func (o object) groupExpr(field, dateGrouping string) (string, error) {
	c, err := o.column(field)
	if err != nil {
		return "", err
	}
	if dateGrouping == "" {
		return c.name, nil
	}
	if c.kind != kindDate {
		return "", fmt.Errorf("date grouping on non-date field %q", field)
	}
	layout, ok := dateGroupings[strings.ToUpper(dateGrouping)]
	if !ok {
		return "", fmt.Errorf("unknown date grouping %q", dateGrouping)
	}
	return fmt.Sprintf("strftime('%s', %s)", layout, c.name), nil
}

func (o object) aggregateExpr(fn, field string) (string, error) {
	fn = strings.ToUpper(fn)
	if fn == "" {
		fn = "COUNT"
	}
	if !aggregates[fn] {
		return "", fmt.Errorf("%w %q", ErrUnknownFunction, fn)
	}
	c, err := o.column(field)
	if err != nil {
		return "", err
	}
	return fn + "(" + c.name + ")", nil
}

// where turns filters into a parameterised WHERE clause. Field names and
// operators are checked against the object; values are always bound.
func (o object) where(filters widgets.Filters) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	parts := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		c, err := o.column(f.FieldName)
		if err != nil {
			return "", nil, err
		}
		if !operators[f.Operator] {
			return "", nil, fmt.Errorf("%w %q", ErrUnknownOperator, f.Operator)
		}
		v, err := bindValue(c, f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("filter %s: %w", f.FieldName, err)
		}
		parts = append(parts, c.name+" "+f.Operator+" ?")
		args = append(args, v)
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func bindValue(c column, v string) (any, error) {
	switch c.kind {
	case kindBool:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("not a boolean: %q", v)
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case kindNumber:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", v)
		}
		return f, nil
	default:
		return v, nil
	}
}
