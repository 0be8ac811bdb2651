package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/internal/infra"
	"github.com/sindhuth/donation-ocr-app/internal/sqlinline"
)

// PostgresStore implements domain.Store on PostgreSQL. Every method is a
// single statement except ResetEvent, which runs in one transaction.
type PostgresStore struct {
	sql   infra.TxRunner
	close func()
}

// NewPostgresStore wraps a marker-logging SQL runner.
func NewPostgresStore(runner infra.TxRunner, closeFn func()) *PostgresStore {
	return &PostgresStore{sql: runner, close: closeFn}
}

// EnsureSchema creates the tables and the role row when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, q := range []string{
		sqlinline.QCreateDonationsTable,
		sqlinline.QCreateDonationsPendingIndex,
		sqlinline.QCreateRolesTable,
		sqlinline.QSeedRolesRow,
	} {
		if _, err := s.sql.Exec(ctx, q); err != nil {
			return storageErr("ensure schema", err)
		}
	}
	return nil
}

// InsertPending creates a new pending donation record.
func (s *PostgresStore) InsertPending(ctx context.Context, name, amount string, image []byte) (int64, error) {
	if image == nil {
		image = []byte{}
	}
	var id int64
	if err := s.sql.QueryRow(ctx, sqlinline.QInsertDonation, name, amount, image).Scan(&id); err != nil {
		return 0, storageErr("insert donation", err)
	}
	return id, nil
}

// GetDonation loads one record by id.
func (s *PostgresStore) GetDonation(ctx context.Context, id int64) (*domain.Donation, error) {
	d, err := scanDonation(s.sql.QueryRow(ctx, sqlinline.QGetDonation, id))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get donation", err)
	}
	return d, nil
}

// ListPending returns pending records oldest first.
func (s *PostgresStore) ListPending(ctx context.Context) ([]domain.Donation, error) {
	return s.list(ctx, "list pending donations", sqlinline.QListPendingDonations)
}

// CountPending reports how many records wait for review.
func (s *PostgresStore) CountPending(ctx context.Context) (int, error) {
	var n int64
	if err := s.sql.QueryRow(ctx, sqlinline.QCountPendingDonations).Scan(&n); err != nil {
		return 0, storageErr("count pending donations", err)
	}
	return int(n), nil
}

// NextPending returns the head of the review queue or nil when it is empty.
func (s *PostgresStore) NextPending(ctx context.Context) (*domain.Donation, error) {
	d, err := scanDonationMeta(s.sql.QueryRow(ctx, sqlinline.QNextPendingDonation))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, nil
		}
		return nil, storageErr("next pending donation", err)
	}
	return d, nil
}

// Requeue moves a pending record to the back of the review queue. Confirmed
// records are left untouched.
func (s *PostgresStore) Requeue(ctx context.Context, id int64) error {
	tag, err := s.sql.Exec(ctx, sqlinline.QRequeueDonation, id)
	if err != nil {
		return storageErr("requeue donation", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Confirm overwrites name and amount and marks the record confirmed.
func (s *PostgresStore) Confirm(ctx context.Context, id int64, name, amount string) error {
	tag, err := s.sql.Exec(ctx, sqlinline.QConfirmDonation, id, name, amount)
	if err != nil {
		return storageErr("confirm donation", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListConfirmed returns confirmed records in the requested order.
func (s *PostgresStore) ListConfirmed(ctx context.Context, order domain.ConfirmedOrder) ([]domain.Donation, error) {
	q := sqlinline.QListConfirmedNewestFirst
	if order == domain.OldestFirst {
		q = sqlinline.QListConfirmedOldestFirst
	}
	return s.list(ctx, "list confirmed donations", q)
}

// ClearAll deletes every donation record. Roles are kept.
func (s *PostgresStore) ClearAll(ctx context.Context) error {
	if _, err := s.sql.Exec(ctx, sqlinline.QDeleteAllDonations); err != nil {
		return storageErr("clear donations", err)
	}
	return nil
}

// ResetEvent clears donations and roles in one transaction.
func (s *PostgresStore) ResetEvent(ctx context.Context) error {
	err := s.sql.InTx(ctx, func(tx infra.SQLExecutor) error {
		if _, err := tx.Exec(ctx, sqlinline.QDeleteAllDonations); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, sqlinline.QClearRoles)
		return err
	})
	if err != nil {
		return storageErr("reset event", err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

func (s *PostgresStore) list(ctx context.Context, op, query string) ([]domain.Donation, error) {
	rows, err := s.sql.Query(ctx, query)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		d, err := scanDonationMeta(rows)
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

func scanDonation(row pgx.Row) (*domain.Donation, error) {
	var d domain.Donation
	return finishDonation(&d, row, &d.ID, &d.Name, &d.Amount, &d.Image)
}

// scanDonationMeta reads a row selected without image_data.
func scanDonationMeta(row pgx.Row) (*domain.Donation, error) {
	var d domain.Donation
	return finishDonation(&d, row, &d.ID, &d.Name, &d.Amount)
}

func finishDonation(d *domain.Donation, row pgx.Row, head ...any) (*domain.Donation, error) {
	var (
		status    string
		createdAt time.Time
		requeued  *time.Time
	)
	if err := row.Scan(append(head, &status, &createdAt, &requeued)...); err != nil {
		return nil, err
	}
	d.Status = domain.DonationStatus(status)
	d.CreatedAt = createdAt.UTC()
	if requeued != nil {
		t := requeued.UTC()
		d.RequeuedAt = &t
	}
	return d, nil
}

var _ domain.Store = (*PostgresStore)(nil)
