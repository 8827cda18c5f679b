package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nrattyp233/create-a-date/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `
id, email, name, age, bio, gender, photos, interests, is_premium, password_hash, created_at, updated_at
`

var ErrEmailTaken = errors.New("email already taken")

func (r *UserRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" || strings.TrimSpace(user.PasswordHash) == "" {
		return model.User{}, fmt.Errorf("invalid user payload")
	}
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if user.Photos == nil {
		user.Photos = []string{}
	}
	if user.Interests == nil {
		user.Interests = []string{}
	}

	created, err := scanUser(r.pool.QueryRow(ctx, `
INSERT INTO users (
	email,
	name,
	age,
	bio,
	gender,
	photos,
	interests,
	is_premium,
	password_hash,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, NOW(), NOW())
RETURNING `+userColumns+`
`, email, user.Name, user.Age, user.Bio, user.Gender, user.Photos, user.Interests, user.PasswordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1
LIMIT 1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return model.User{}, fmt.Errorf("invalid email")
	}
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE email = $1
LIMIT 1
`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepo) List(ctx context.Context, limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = 200
	}
	if r.pool == nil {
		return []model.User{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+userColumns+`
FROM users
ORDER BY id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate users: %w", rows.Err())
	}

	return users, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, user model.User) (model.User, error) {
	if user.ID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	updated, err := scanUser(r.pool.QueryRow(ctx, `
UPDATE users
SET
	name = $2,
	age = $3,
	bio = $4,
	gender = $5,
	photos = $6,
	interests = $7,
	updated_at = NOW()
WHERE id = $1
RETURNING `+userColumns+`
`, user.ID, user.Name, user.Age, user.Bio, user.Gender, user.Photos, user.Interests))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("update user profile: %w", err)
	}

	return updated, nil
}

// SetPremium flips the entitlement flag. Only the payment-confirmation path
// calls this; every request-path consumer treats the flag as read-only.
func (r *UserRepo) SetPremium(ctx context.Context, userID int64, premium bool) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE users
SET is_premium = $2, updated_at = NOW()
WHERE id = $1
`, userID, premium)
	if err != nil {
		return fmt.Errorf("set user premium: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *UserRepo) GetPremium(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return false, nil
	}

	var premium bool
	err := r.pool.QueryRow(ctx, `
SELECT is_premium
FROM users
WHERE id = $1
LIMIT 1
`, userID).Scan(&premium)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("get user premium flag: %w", err)
	}

	return premium, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Age,
		&user.Bio,
		&user.Gender,
		&user.Photos,
		&user.Interests,
		&user.IsPremium,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}
