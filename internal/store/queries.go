package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns queries bound to tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	var u User
	err := q.db.QueryRow(ctx,
		`INSERT INTO users (id, email, password, display_name) VALUES ($1, $2, $3, $4)
		 RETURNING id, email, password, display_name, created_at`,
		arg.ID, arg.Email, arg.Password, arg.DisplayName,
	).Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := q.db.QueryRow(ctx,
		`SELECT id, email, password, display_name, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	var u User
	err := q.db.QueryRow(ctx,
		`SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

type Studio struct {
	ID         string
	Name       string
	OwnerID    string
	Passphrase string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CreateStudioParams struct {
	ID         string
	Name       string
	OwnerID    string
	Passphrase string
}

const studioColumns = `id, name, owner_id, passphrase, created_at, updated_at`

func scanStudio(row pgx.Row) (Studio, error) {
	var s Studio
	err := row.Scan(&s.ID, &s.Name, &s.OwnerID, &s.Passphrase, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (q *Queries) CreateStudio(ctx context.Context, arg CreateStudioParams) (Studio, error) {
	return scanStudio(q.db.QueryRow(ctx,
		`INSERT INTO studios (id, name, owner_id, passphrase) VALUES ($1, $2, $3, $4)
		 RETURNING `+studioColumns,
		arg.ID, arg.Name, arg.OwnerID, arg.Passphrase,
	))
}

func (q *Queries) GetStudio(ctx context.Context, id string) (Studio, error) {
	return scanStudio(q.db.QueryRow(ctx, `SELECT `+studioColumns+` FROM studios WHERE id = $1`, id))
}

func (q *Queries) ListStudiosForOwner(ctx context.Context, ownerID string) ([]Studio, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+studioColumns+` FROM studios WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Studio
	for rows.Next() {
		s, err := scanStudio(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteStudio(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM studios WHERE id = $1`, id)
	return err
}

// ListOpcodes returns a studio's opcode log in sequence order.
func (q *Queries) ListOpcodes(ctx context.Context, studioID string) ([]string, error) {
	rows, err := q.db.Query(ctx,
		`SELECT opcode FROM studio_ops WHERE studio_id = $1 ORDER BY seq`, studioID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

type AppendOpcodeParams struct {
	StudioID string
	Seq      int64
	Opcode   string
}

func (q *Queries) AppendOpcode(ctx context.Context, arg AppendOpcodeParams) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO studio_ops (studio_id, seq, opcode) VALUES ($1, $2, $3)`,
		arg.StudioID, arg.Seq, arg.Opcode)
	return err
}

// TxBeginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ReplaceOpcodes overwrites a studio's opcode log in one transaction.
func ReplaceOpcodes(ctx context.Context, db TxBeginner, studioID string, ops []string) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM studio_ops WHERE studio_id = $1`, studioID); err != nil {
		return fmt.Errorf("clear opcodes: %w", err)
	}
	rows := make([][]any, len(ops))
	for i, op := range ops {
		rows[i] = []any{studioID, int64(i + 1), op}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"studio_ops"},
		[]string{"studio_id", "seq", "opcode"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy opcodes: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE studios SET updated_at = now() WHERE id = $1`, studioID); err != nil {
		return fmt.Errorf("touch studio: %w", err)
	}
	return tx.Commit(ctx)
}
