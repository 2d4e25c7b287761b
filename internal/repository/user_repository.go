package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/campus-connect/internal/model"
)

// UserRepo reads and writes the 'users' table.
type UserRepo struct{ DB DBTX }

func NewUserRepo(db DBTX) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,full_name,email,password_hash,role,phone_number,department,protected,created_at"

// CreateUser inserts u and fills in its ID and CreatedAt.  The email is
// normalized before insert.
func (r *UserRepo) CreateUser(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (full_name, email, password_hash, role, phone_number, department, protected) VALUES (?,?,?,?,?,?,?)",
		u.FullName, u.Email, u.PasswordHash, u.Role, nullString(u.PhoneNumber), nullString(u.Department), u.Protected)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.CreatedAt = time.Now().UTC()
	return nil
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by normalized email.
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email))
	return scanUser(row)
}

// ListUsers returns every account ordered by id.
func (r *UserRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateUserContact back-fills the phone number and department used for
// checkout.
func (r *UserRepo) UpdateUserContact(ctx context.Context, id uint64, phone, department string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET phone_number=?, department=? WHERE id=?",
		nullString(phone), nullString(department), id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// UpdatePasswordHash replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteUser removes the user row.  Dependent rows are the caller's job.
func (r *UserRepo) DeleteUser(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u     model.User
		phone sql.NullString
		dept  sql.NullString
	)
	err := s.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &phone, &dept, &u.Protected, &u.CreatedAt)
	if err != nil {
		return model.User{}, notFound(err)
	}
	u.PhoneNumber = phone.String
	u.Department = dept.String
	return u, nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// expectAffected turns a zero-row update or delete into ErrNotFound.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
