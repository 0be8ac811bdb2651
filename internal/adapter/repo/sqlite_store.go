package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/internal/infra"
	"github.com/sindhuth/donation-ocr-app/internal/sqlinline"
)

// SQLiteStore implements domain.Store on a single SQLite file. It is the
// default for a one-laptop event setup.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// SQLiteOption customises a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) { s.now = now }
}

// NewSQLiteStore wraps an open database handle.
func NewSQLiteStore(db *sql.DB, logger zerolog.Logger, opts ...SQLiteOption) *SQLiteStore {
	s := &SQLiteStore{db: db, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the tables and the role row when missing.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	for _, q := range []string{
		sqlinline.QSQLiteCreateDonationsTable,
		sqlinline.QSQLiteCreateDonationsPendingIndex,
		sqlinline.QSQLiteCreateRolesTable,
		sqlinline.QSQLiteSeedRolesRow,
	} {
		if _, err := s.exec(ctx, s.db, q); err != nil {
			return storageErr("ensure schema", err)
		}
	}
	return nil
}

func (s *SQLiteStore) InsertPending(ctx context.Context, name, amount string, image []byte) (int64, error) {
	if image == nil {
		image = []byte{}
	}
	res, err := s.exec(ctx, s.db, sqlinline.QSQLiteInsertDonation, name, amount, image, s.now().UTC().UnixNano())
	if err != nil {
		return 0, storageErr("insert donation", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert donation", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetDonation(ctx context.Context, id int64) (*domain.Donation, error) {
	d, err := s.queryOne(ctx, scanSQLiteDonation, sqlinline.QSQLiteGetDonation, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get donation", err)
	}
	return d, nil
}

func (s *SQLiteStore) ListPending(ctx context.Context) ([]domain.Donation, error) {
	return s.list(ctx, "list pending donations", sqlinline.QSQLiteListPendingDonations)
}

func (s *SQLiteStore) CountPending(ctx context.Context) (int, error) {
	marker, body, err := infra.ExtractMarker(sqlinline.QSQLiteCountPendingDonations)
	if err != nil {
		return 0, err
	}
	s.logger.Debug().Msgf("sql[%s] query_row", marker)
	var n int
	if err := s.db.QueryRowContext(ctx, body).Scan(&n); err != nil {
		return 0, storageErr("count pending donations", err)
	}
	return n, nil
}

func (s *SQLiteStore) NextPending(ctx context.Context) (*domain.Donation, error) {
	d, err := s.queryOne(ctx, scanSQLiteDonationMeta, sqlinline.QSQLiteNextPendingDonation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("next pending donation", err)
	}
	return d, nil
}

func (s *SQLiteStore) Requeue(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, s.db, sqlinline.QSQLiteRequeueDonation, s.now().UTC().UnixNano(), id)
	if err != nil {
		return storageErr("requeue donation", err)
	}
	return requireAffected(res, "requeue donation")
}

func (s *SQLiteStore) Confirm(ctx context.Context, id int64, name, amount string) error {
	res, err := s.exec(ctx, s.db, sqlinline.QSQLiteConfirmDonation, name, amount, id)
	if err != nil {
		return storageErr("confirm donation", err)
	}
	return requireAffected(res, "confirm donation")
}

func (s *SQLiteStore) ListConfirmed(ctx context.Context, order domain.ConfirmedOrder) ([]domain.Donation, error) {
	q := sqlinline.QSQLiteListConfirmedNewestFirst
	if order == domain.OldestFirst {
		q = sqlinline.QSQLiteListConfirmedOldestFirst
	}
	return s.list(ctx, "list confirmed donations", q)
}

func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	if _, err := s.exec(ctx, s.db, sqlinline.QSQLiteDeleteAllDonations); err != nil {
		return storageErr("clear donations", err)
	}
	return nil
}

func (s *SQLiteStore) GetRoles(ctx context.Context) (domain.RoleAssignment, error) {
	marker, body, err := infra.ExtractMarker(sqlinline.QSQLiteGetRoles)
	if err != nil {
		return domain.RoleAssignment{}, err
	}
	s.logger.Debug().Msgf("sql[%s] query_row", marker)
	var admin, editor sql.NullString
	if err := s.db.QueryRowContext(ctx, body).Scan(&admin, &editor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RoleAssignment{}, nil
		}
		return domain.RoleAssignment{}, storageErr("get roles", err)
	}
	var ra domain.RoleAssignment
	if admin.Valid {
		ra.AdminSessionID = &admin.String
	}
	if editor.Valid {
		ra.EditorSessionID = &editor.String
	}
	return ra, nil
}

func (s *SQLiteStore) ClaimRole(ctx context.Context, role domain.Role, sessionID string) (bool, error) {
	var q string
	switch role {
	case domain.RoleAdmin:
		q = sqlinline.QSQLiteClaimAdminRole
	case domain.RoleEditor:
		q = sqlinline.QSQLiteClaimEditorRole
	default:
		return false, nil
	}
	res, err := s.exec(ctx, s.db, q, sessionID)
	if err != nil {
		return false, storageErr("claim role", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("claim role", err)
	}
	return n == 1, nil
}

func (s *SQLiteStore) ClearRoles(ctx context.Context) error {
	if _, err := s.exec(ctx, s.db, sqlinline.QSQLiteClearRoles); err != nil {
		return storageErr("clear roles", err)
	}
	return nil
}

func (s *SQLiteStore) ResetEvent(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("reset event", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if _, err := s.exec(ctx, tx, sqlinline.QSQLiteDeleteAllDonations); err != nil {
		return storageErr("reset event", err)
	}
	if _, err := s.exec(ctx, tx, sqlinline.QSQLiteClearRoles); err != nil {
		return storageErr("reset event", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("reset event", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) exec(ctx context.Context, ex sqlExecer, query string, args ...any) (sql.Result, error) {
	marker, body, err := infra.ExtractMarker(query)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Msgf("sql[%s] exec", marker)
	res, err := ex.ExecContext(ctx, body, args...)
	if err != nil {
		s.logger.Error().Err(err).Msgf("sql[%s] error", marker)
		return nil, err
	}
	return res, nil
}

func (s *SQLiteStore) queryOne(ctx context.Context, scan func(rowScanner) (*domain.Donation, error), query string, args ...any) (*domain.Donation, error) {
	marker, body, err := infra.ExtractMarker(query)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Msgf("sql[%s] query_row", marker)
	return scan(s.db.QueryRowContext(ctx, body, args...))
}

func (s *SQLiteStore) list(ctx context.Context, op, query string) ([]domain.Donation, error) {
	marker, body, err := infra.ExtractMarker(query)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Msgf("sql[%s] query", marker)
	rows, err := s.db.QueryContext(ctx, body)
	if err != nil {
		s.logger.Error().Err(err).Msgf("sql[%s] error", marker)
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		d, err := scanSQLiteDonationMeta(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDonation(row rowScanner) (*domain.Donation, error) {
	var d domain.Donation
	return finishSQLiteDonation(&d, row, &d.ID, &d.Name, &d.Amount, &d.Image)
}

// scanSQLiteDonationMeta reads a row selected without image_data.
func scanSQLiteDonationMeta(row rowScanner) (*domain.Donation, error) {
	var d domain.Donation
	return finishSQLiteDonation(&d, row, &d.ID, &d.Name, &d.Amount)
}

func finishSQLiteDonation(d *domain.Donation, row rowScanner, head ...any) (*domain.Donation, error) {
	var (
		status    string
		createdAt int64
		requeued  sql.NullInt64
	)
	if err := row.Scan(append(head, &status, &createdAt, &requeued)...); err != nil {
		return nil, err
	}
	d.Status = domain.DonationStatus(status)
	d.CreatedAt = time.Unix(0, createdAt).UTC()
	if requeued.Valid {
		t := time.Unix(0, requeued.Int64).UTC()
		d.RequeuedAt = &t
	}
	return d, nil
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(op, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.Store = (*SQLiteStore)(nil)
