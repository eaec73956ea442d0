package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/bunnystock/leaddesk/internal/entity"
)

const leadsTable = "leads"

var leadColumns = []string{
	"id", "name", "phone", "email", "message", "agree", "channel", "status", "created_at", "updated_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type LeadRepository struct {
	DB *sql.DB
	// StrictOrdering disables the id-ordered fallback in List.
	StrictOrdering bool
	// OnFallback is called with the primary query error before falling back.
	OnFallback func(err error)
}

func NewLeadRepository(db *sql.DB, strict bool) *LeadRepository {
	return &LeadRepository{DB: db, StrictOrdering: strict}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query, args, err := psql.Insert(leadsTable).
		Columns("name", "phone", "email", "message", "agree", "channel", "status").
		Values(lead.Name, lead.Phone, lead.Email, lead.Message, lead.Agree, lead.Channel, string(entity.StatusNew)).
		Suffix("RETURNING id, status, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	var status string
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&lead.ID, &status, &lead.CreatedAt); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	lead.Status = entity.Status(status)
	return nil
}

// List runs the time-ordered query; when it fails and StrictOrdering is off
// it retries ordered by id, without the time range.
func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) (*entity.LeadPage, error) {
	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	leads, err := r.queryLeads(ctx, query, args)
	if err == nil {
		return paginate(leads, filter.Limit, false), nil
	}
	if r.StrictOrdering || ctx.Err() != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	if r.OnFallback != nil {
		r.OnFallback(err)
	}

	query, args, err = buildFallbackQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build fallback list: %w", err)
	}
	leads, err = r.queryLeads(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list leads by id: %w", err)
	}
	return paginate(leads, filter.Limit, true), nil
}

func buildListQuery(f entity.LeadFilter) (string, []any, error) {
	q := psql.Select(leadColumns...).From(leadsTable)

	if f.Status != nil {
		q = q.Where(sq.Eq{"status": string(*f.Status)})
	}
	if f.Start != nil {
		q = q.Where(sq.GtOrEq{"created_at": *f.Start})
	}
	if f.End != nil {
		q = q.Where(sq.Lt{"created_at": *f.End})
	}
	if f.After != nil {
		q = q.Where(sq.Expr("(created_at, id) < (?, ?)", f.After.CreatedAt, f.After.ID))
	}

	return q.OrderBy("created_at DESC", "id DESC").
		Limit(uint64(f.Limit + 1)).
		ToSql()
}

func buildFallbackQuery(f entity.LeadFilter) (string, []any, error) {
	q := psql.Select(leadColumns...).From(leadsTable)

	if f.Status != nil {
		q = q.Where(sq.Eq{"status": string(*f.Status)})
	}
	if f.After != nil {
		q = q.Where(sq.Lt{"id": f.After.ID})
	}

	return q.OrderBy("id DESC").
		Limit(uint64(f.Limit + 1)).
		ToSql()
}

func (r *LeadRepository) queryLeads(ctx context.Context, query string, args []any) ([]*entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		var (
			l         entity.Lead
			status    string
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.Phone, &l.Email, &l.Message, &l.Agree,
			&l.Channel, &status, &l.CreatedAt, &updatedAt); err != nil {
			return nil, err
		}
		l.Status = entity.Status(status)
		if updatedAt.Valid {
			t := updatedAt.Time
			l.UpdatedAt = &t
		}
		leads = append(leads, &l)
	}
	return leads, rows.Err()
}

// paginate trims the extra probe row and derives the next cursor.
func paginate(leads []*entity.Lead, limit int, degraded bool) *entity.LeadPage {
	page := &entity.LeadPage{Leads: leads, Degraded: degraded}
	if limit > 0 && len(leads) > limit {
		page.Leads = leads[:limit]
		last := page.Leads[limit-1]
		page.Next = &entity.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	if page.Leads == nil {
		page.Leads = []*entity.Lead{}
	}
	return page
}

// UpdateStatus touches updated_at only when the status actually changes.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.Status) error {
	query, args, err := psql.Update(leadsTable).
		Set("updated_at", sq.Expr("CASE WHEN status = ? THEN updated_at ELSE NOW() END", string(status))).
		Set("status", string(status)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) CountByStatus(ctx context.Context) (map[entity.Status]int, error) {
	query, args, err := psql.Select("status", "COUNT(*)").From(leadsTable).GroupBy("status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.Status]int, len(entity.Statuses))
	for _, s := range entity.Statuses {
		counts[s] = 0
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("count leads: %w", err)
		}
		counts[entity.Status(status)] = n
	}
	return counts, rows.Err()
}

func (r *LeadRepository) OldestWithStatus(ctx context.Context, status entity.Status) (*time.Time, error) {
	query, args, err := psql.Select("MIN(created_at)").From(leadsTable).
		Where(sq.Eq{"status": string(status)}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build oldest: %w", err)
	}

	var oldest sql.NullTime
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&oldest); err != nil {
		return nil, fmt.Errorf("oldest lead: %w", err)
	}
	if !oldest.Valid {
		return nil, nil
	}
	return &oldest.Time, nil
}

func (r *LeadRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}
