// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"team-journal/internal/errors"
	"team-journal/internal/models"
)

// Options tunes the SQLite connection.
type Options struct {
	BusyTimeoutMS int
	MaxOpenConns  int
}

// DefaultOptions returns the connection settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		BusyTimeoutMS: 5000,
		MaxOpenConns:  10,
	}
}

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store with default options.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithOptions(dbPath, DefaultOptions())
}

// NewSQLiteStoreWithOptions creates a new SQLite-based data store.
func NewSQLiteStoreWithOptions(dbPath string, opts Options) (*SQLiteStore, error) {
	if opts.BusyTimeoutMS <= 0 {
		opts.BusyTimeoutMS = DefaultOptions().BusyTimeoutMS
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = DefaultOptions().MaxOpenConns
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on", dbPath, opts.BusyTimeoutMS)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxOpenConns / 2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Team profiles; never hard-deleted
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('member', 'mentor')),
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	-- Journaled trades with moderation fields
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		trade_date TEXT NOT NULL,
		session TEXT NOT NULL,
		pair TEXT NOT NULL,
		bias TEXT NOT NULL,
		daily_bias TEXT NOT NULL,
		framework TEXT NOT NULL,
		profiling TEXT NOT NULL,
		entry_model TEXT NOT NULL,
		outcome TEXT NOT NULL,
		result REAL NOT NULL,
		mood TEXT NOT NULL,
		chart_url TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'submitted',
		is_reviewed INTEGER NOT NULL DEFAULT 0,
		mentor_score INTEGER CHECK (mentor_score IS NULL OR mentor_score BETWEEN 1 AND 5),
		mentor_notes TEXT NOT NULL DEFAULT '',
		reviewed_by TEXT NOT NULL DEFAULT '',
		reviewed_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES profiles(id)
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user_date ON trades(user_id, trade_date);
	CREATE INDEX IF NOT EXISTS idx_trades_reviewed ON trades(is_reviewed, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// classify maps driver errors onto the journal error taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.NewTransientIOError(op, err)
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return errors.NewTransientIOError(op, err)
		case sqlite3.ErrConstraint:
			return &errors.ValidationError{Field: op, Message: sqliteErr.Error(), Err: errors.ErrInputValidation}
		}
	}
	return fmt.Errorf("failed to %s: %w: %w", op, errors.ErrDatabaseError, err)
}

// ============================================================================
// Trades Methods
// ============================================================================

const tradeColumns = `id, user_id, trade_date, session, pair, bias, daily_bias, framework, profiling,
	entry_model, outcome, result, mood, chart_url, note, tags, status, is_reviewed, mentor_score,
	mentor_notes, reviewed_by, reviewed_at, created_at, updated_at`

// ListTradesByUser retrieves every trade owned by a user, newest trade date first.
func (s *SQLiteStore) ListTradesByUser(ctx context.Context, userID string) ([]models.Trade, error) {
	return s.ListTrades(ctx, TradeFilter{UserID: userID})
}

// ListAllTrades retrieves trades across the team, newest first. A limit <= 0 returns all rows.
func (s *SQLiteStore) ListAllTrades(ctx context.Context, limit int) ([]models.Trade, error) {
	return s.ListTrades(ctx, TradeFilter{Limit: limit})
}

// ListTrades retrieves trades matching the filter.
func (s *SQLiteStore) ListTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.Reviewed != nil {
		query += " AND is_reviewed = ?"
		args = append(args, boolToInt(*filter.Reviewed))
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.Session != "" {
		query += " AND session = ?"
		args = append(args, string(filter.Session))
	}
	if filter.Pair != "" {
		query += " AND pair = ?"
		args = append(args, filter.Pair)
	}
	if !filter.StartDate.IsZero() {
		query += " AND trade_date >= ?"
		args = append(args, filter.StartDate.String())
	}
	if !filter.EndDate.IsZero() {
		query += " AND trade_date <= ?"
		args = append(args, filter.EndDate.String())
	}

	if filter.OldestFirst {
		query += " ORDER BY created_at ASC, id ASC"
	} else {
		query += " ORDER BY trade_date DESC, created_at DESC, id DESC"
	}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query trades", err)
	}
	defer rows.Close()

	trades := []models.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, classify("scan trade", err)
		}
		trades = append(trades, t)
	}

	return trades, classify("iterate trades", rows.Err())
}

// GetTrade retrieves a trade by ID.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = ?", id)
	t, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("trade", id)
	}
	if err != nil {
		return nil, classify("get trade", err)
	}
	return &t, nil
}

// InsertTrade saves a new trade to the database.
func (s *SQLiteStore) InsertTrade(ctx context.Context, trade *models.Trade) error {
	tags, err := encodeTags(trade.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.UserID, trade.TradeDate.String(), string(trade.Session), trade.Pair,
		string(trade.Bias), string(trade.DailyBias), string(trade.Framework), string(trade.Profiling),
		string(trade.EntryModel), string(trade.Outcome), trade.Result, string(trade.Mood),
		trade.ChartURL, trade.Note, tags, string(trade.Status), boolToInt(trade.IsReviewed),
		nullableScore(trade.MentorScore), trade.MentorNotes, trade.ReviewedBy, nullableTime(trade.ReviewedAt),
		trade.CreatedAt.UTC(), trade.UpdatedAt.UTC())
	if err != nil {
		return classify("insert trade", err)
	}
	return nil
}

// UpdateTrade overwrites a stored trade. The owner and creation time are immutable.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	tags, err := encodeTags(trade.Tags)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE trades SET
			trade_date = ?, session = ?, pair = ?, bias = ?, daily_bias = ?, framework = ?,
			profiling = ?, entry_model = ?, outcome = ?, result = ?, mood = ?, chart_url = ?,
			note = ?, tags = ?, status = ?, is_reviewed = ?, mentor_score = ?, mentor_notes = ?,
			reviewed_by = ?, reviewed_at = ?, updated_at = ?
		WHERE id = ?
	`, trade.TradeDate.String(), string(trade.Session), trade.Pair, string(trade.Bias),
		string(trade.DailyBias), string(trade.Framework), string(trade.Profiling),
		string(trade.EntryModel), string(trade.Outcome), trade.Result, string(trade.Mood),
		trade.ChartURL, trade.Note, tags, string(trade.Status), boolToInt(trade.IsReviewed),
		nullableScore(trade.MentorScore), trade.MentorNotes, trade.ReviewedBy,
		nullableTime(trade.ReviewedAt), trade.UpdatedAt.UTC(), trade.ID)
	if err != nil {
		return classify("update trade", err)
	}
	return requireAffected(res, "trade", trade.ID)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (models.Trade, error) {
	var t models.Trade
	var (
		session, bias, dailyBias, framework, profiling string
		entryModel, outcome, mood, status, tagsJSON    string
		isReviewed                                     int
		score                                          sql.NullInt64
		reviewedAt                                     sql.NullTime
	)

	err := row.Scan(&t.ID, &t.UserID, &t.TradeDate, &session, &t.Pair, &bias, &dailyBias,
		&framework, &profiling, &entryModel, &outcome, &t.Result, &mood, &t.ChartURL, &t.Note,
		&tagsJSON, &status, &isReviewed, &score, &t.MentorNotes, &t.ReviewedBy, &reviewedAt,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Trade{}, err
	}

	t.Session = models.Session(session)
	t.Bias = models.Bias(bias)
	t.DailyBias = models.Bias(dailyBias)
	t.Framework = models.Framework(framework)
	t.Profiling = models.Profiling(profiling)
	t.EntryModel = models.EntryModel(entryModel)
	t.Outcome = models.Outcome(outcome)
	t.Mood = models.Mood(mood)
	t.Status = models.ReviewStatus(status)
	t.IsReviewed = isReviewed == 1
	if score.Valid {
		v := int(score.Int64)
		t.MentorScore = &v
	}
	if reviewedAt.Valid {
		at := reviewedAt.Time
		t.ReviewedAt = &at
	}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
			return models.Trade{}, fmt.Errorf("decoding tags for trade %s: %w", t.ID, err)
		}
		if len(t.Tags) == 0 {
			t.Tags = nil
		}
	}
	return t, nil
}

// ============================================================================
// Profiles Methods
// ============================================================================

// ListProfiles retrieves every profile in creation order.
func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, role, is_active, created_at
		FROM profiles
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, classify("query profiles", err)
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, classify("scan profile", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, classify("iterate profiles", rows.Err())
}

// GetProfile retrieves a profile by ID.
func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, role, is_active, created_at
		FROM profiles WHERE id = ?
	`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("profile", id)
	}
	if err != nil {
		return nil, classify("get profile", err)
	}
	return &p, nil
}

// InsertProfile provisions a new profile.
func (s *SQLiteStore) InsertProfile(ctx context.Context, profile *models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, display_name, role, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, profile.ID, profile.DisplayName, string(profile.Role), boolToInt(profile.IsActive), profile.CreatedAt.UTC())
	if err != nil {
		return classify("insert profile", err)
	}
	return nil
}

// UpdateProfile updates a profile's display name, role and active flag.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET display_name = ?, role = ?, is_active = ? WHERE id = ?
	`, profile.DisplayName, string(profile.Role), boolToInt(profile.IsActive), profile.ID)
	if err != nil {
		return classify("update profile", err)
	}
	return requireAffected(res, "profile", profile.ID)
}

func scanProfile(row rowScanner) (models.Profile, error) {
	var p models.Profile
	var role string
	var isActive int
	if err := row.Scan(&p.ID, &p.DisplayName, &role, &isActive, &p.CreatedAt); err != nil {
		return models.Profile{}, err
	}
	p.Role = models.Role(role)
	p.IsActive = isActive == 1
	return p, nil
}

// ============================================================================
// Helpers
// ============================================================================

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify("rows affected", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(kind, id)
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableScore(score *int) interface{} {
	if score == nil {
		return nil
	}
	return *score
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
