package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/storefront/internal/domain/member"
)

const getMemberByEmailSQL = `SELECT member_id, email, name,
		created_at, updated_at, created_by, modified_by
	FROM members WHERE email = $1`

func scanMember(row pgx.CollectableRow) (member.Member, error) {
	var m member.Member
	err := row.Scan(
		&m.ID, &m.Email, &m.Name,
		&m.Audit.CreatedAt, &m.Audit.UpdatedAt, &m.Audit.CreatedBy, &m.Audit.ModifiedBy,
	)
	return m, err
}

func getMemberByEmail(ctx context.Context, q querier, email string) (*member.Member, error) {
	rows, err := q.Query(ctx, getMemberByEmailSQL, email)
	if err != nil {
		return nil, errors.Wrapf(err, "getting member %q", email)
	}

	m, err := pgx.CollectExactlyOneRow(rows, scanMember)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, member.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting member %q", email)
	}
	return &m, nil
}

// MemberByEmail resolves the authenticated identity to a member row.
func (t *Tx) MemberByEmail(ctx context.Context, email string) (*member.Member, error) {
	return getMemberByEmail(ctx, t.tx, email)
}
