package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trackjob-backend/internal/shared/storage/db"
)

// PGRepo implements Repo on Postgres.
type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, email, name, avatar, provider, provider_id, email_verified, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var name, avatar, provider, providerID sql.NullString
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&name,
		&avatar,
		&provider,
		&providerID,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return User{}, err
	}
	user.Name = name.String
	user.Avatar = avatar.String
	user.Provider = provider.String
	user.ProviderID = providerID.String
	return user, nil
}

func (r *PGRepo) List(ctx context.Context) ([]User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (User, error) {
	user, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *PGRepo) Create(ctx context.Context, user User) (User, error) {
	query := `
INSERT INTO users (id, email, name, avatar, provider, provider_id, email_verified)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns
	created, err := scanUser(r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		db.NullString(user.Name),
		db.NullString(user.Avatar),
		db.NullString(user.Provider),
		db.NullString(user.ProviderID),
		user.EmailVerified,
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, fmt.Errorf("%w: %s", ErrConflict, user.ID)
		}
		return User{}, err
	}
	return created, nil
}

func (r *PGRepo) Ensure(ctx context.Context, user User) (User, error) {
	query := `
INSERT INTO users (id, email, name, avatar, provider, provider_id, email_verified)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
  name = COALESCE(EXCLUDED.name, users.name),
  avatar = COALESCE(EXCLUDED.avatar, users.avatar),
  updated_at = now()
RETURNING ` + userColumns
	ensured, err := scanUser(r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		db.NullString(user.Name),
		db.NullString(user.Avatar),
		db.NullString(user.Provider),
		db.NullString(user.ProviderID),
		user.EmailVerified,
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, fmt.Errorf("%w: email %s", ErrConflict, user.Email)
		}
		return User{}, err
	}
	return ensured, nil
}

func (r *PGRepo) Update(ctx context.Context, id string, patch Patch) (User, error) {
	query := `
UPDATE users SET
  name = COALESCE($2, name),
  avatar = COALESCE($3, avatar),
  email_verified = COALESCE($4, email_verified),
  updated_at = now()
WHERE id = $1
RETURNING ` + userColumns
	var verified any
	if patch.EmailVerified != nil {
		verified = *patch.EmailVerified
	}
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, id, optional(patch.Name), optional(patch.Avatar), verified))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *PGRepo) Delete(ctx context.Context, id string) (User, error) {
	user, err := scanUser(r.DB.QueryRowContext(ctx, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *PGRepo) GetProfile(ctx context.Context, userID string) (Profile, error) {
	var p Profile
	var bio sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT id, user_id, bio FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.ID, &p.UserID, &bio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}
	p.Bio = bio.String
	return p, nil
}

func (r *PGRepo) UpsertProfile(ctx context.Context, userID, bio string) (Profile, error) {
	const query = `
INSERT INTO profiles (user_id, bio)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET bio = EXCLUDED.bio
RETURNING id, user_id, bio`
	var p Profile
	var stored sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userID, db.NullString(bio)).Scan(&p.ID, &p.UserID, &stored)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.Bio = stored.String
	return p, nil
}

func optional(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

var _ Repo = (*PGRepo)(nil)
