package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nrattyp233/create-a-date/internal/domain/model"
)

var ErrDatePostNotFound = errors.New("date post not found")

type DatePostRepo struct {
	pool *pgxpool.Pool
}

func NewDatePostRepo(pool *pgxpool.Pool) *DatePostRepo {
	return &DatePostRepo{pool: pool}
}

const datePostColumns = `
id, created_by, title, description, location, date_time, categories, applicants, chosen_applicant_id, created_at, updated_at
`

func (r *DatePostRepo) Create(ctx context.Context, post model.DatePost) (model.DatePost, error) {
	if post.CreatedBy <= 0 || strings.TrimSpace(post.Title) == "" {
		return model.DatePost{}, fmt.Errorf("invalid date post payload")
	}
	if r.pool == nil {
		return model.DatePost{}, fmt.Errorf("postgres pool is nil")
	}
	if post.Applicants == nil {
		post.Applicants = []int64{}
	}
	if post.Categories == nil {
		post.Categories = []string{}
	}

	created, err := scanDatePost(r.pool.QueryRow(ctx, `
INSERT INTO date_posts (
	created_by,
	title,
	description,
	location,
	date_time,
	categories,
	applicants,
	chosen_applicant_id,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
RETURNING `+datePostColumns+`
`, post.CreatedBy, post.Title, post.Description, post.Location, post.DateTime.UTC(), post.Categories, post.Applicants, post.ChosenApplicantID))
	if err != nil {
		return model.DatePost{}, fmt.Errorf("create date post: %w", err)
	}

	return created, nil
}

func (r *DatePostRepo) List(ctx context.Context, limit int) ([]model.DatePost, error) {
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.DatePost{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+datePostColumns+`
FROM date_posts
ORDER BY created_at DESC, id DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list date posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.DatePost, 0, limit)
	for rows.Next() {
		post, err := scanDatePost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan date post: %w", err)
		}
		posts = append(posts, post)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate date posts: %w", rows.Err())
	}

	return posts, nil
}

func (r *DatePostRepo) GetByID(ctx context.Context, postID int64) (model.DatePost, error) {
	if postID <= 0 {
		return model.DatePost{}, fmt.Errorf("invalid date post id")
	}
	if r.pool == nil {
		return model.DatePost{}, fmt.Errorf("postgres pool is nil")
	}

	post, err := scanDatePost(r.pool.QueryRow(ctx, `
SELECT `+datePostColumns+`
FROM date_posts
WHERE id = $1
LIMIT 1
`, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DatePost{}, ErrDatePostNotFound
		}
		return model.DatePost{}, fmt.Errorf("get date post: %w", err)
	}

	return post, nil
}

func (r *DatePostRepo) Update(ctx context.Context, post model.DatePost) (model.DatePost, error) {
	if post.ID <= 0 {
		return model.DatePost{}, fmt.Errorf("invalid date post id")
	}
	if r.pool == nil {
		return model.DatePost{}, fmt.Errorf("postgres pool is nil")
	}
	if post.Applicants == nil {
		post.Applicants = []int64{}
	}
	if post.Categories == nil {
		post.Categories = []string{}
	}

	updated, err := scanDatePost(r.pool.QueryRow(ctx, `
UPDATE date_posts
SET
	title = $2,
	description = $3,
	location = $4,
	date_time = $5,
	categories = $6,
	applicants = $7,
	chosen_applicant_id = $8,
	updated_at = NOW()
WHERE id = $1
RETURNING `+datePostColumns+`
`, post.ID, post.Title, post.Description, post.Location, post.DateTime.UTC(), post.Categories, post.Applicants, post.ChosenApplicantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DatePost{}, ErrDatePostNotFound
		}
		return model.DatePost{}, fmt.Errorf("update date post: %w", err)
	}

	return updated, nil
}

func (r *DatePostRepo) Delete(ctx context.Context, postID int64) error {
	if postID <= 0 {
		return fmt.Errorf("invalid date post id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM date_posts
WHERE id = $1
`, postID)
	if err != nil {
		return fmt.Errorf("delete date post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrDatePostNotFound
	}

	return nil
}

// DeleteExpired removes posts whose scheduled time is older than the cutoff.
func (r *DatePostRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}
	if cutoff.IsZero() {
		return 0, fmt.Errorf("cutoff is required")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM date_posts
WHERE date_time < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired date posts: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanDatePost(row pgx.Row) (model.DatePost, error) {
	var post model.DatePost
	err := row.Scan(
		&post.ID,
		&post.CreatedBy,
		&post.Title,
		&post.Description,
		&post.Location,
		&post.DateTime,
		&post.Categories,
		&post.Applicants,
		&post.ChosenApplicantID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return model.DatePost{}, err
	}
	return post, nil
}
