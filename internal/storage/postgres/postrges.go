package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ButyrinIA/social/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage - хранилище на PostgreSQL. Лайки и ответы связаны с
// постом через ON DELETE CASCADE, поэтому удаление поста удаляет их
// одной операцией. Мутации поста выполняются в транзакции с
// SELECT ... FOR UPDATE по строке поста - это и есть пер-постовая
// критическая секция.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func New(dsn string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %v", err)
	}

	_, err = pool.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			author_id TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS post_likes (
			post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (post_id, user_id)
		);
		CREATE TABLE IF NOT EXISTS post_replies (
			id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_author_created ON posts(author_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_post_replies_post_id ON post_replies(post_id);
	`)

	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &PostgresStorage{pool: pool}, nil
}

func (s *PostgresStorage) CreatePost(ctx context.Context, post *models.Post) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO posts (id, author_id, body, image, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		post.ID, post.AuthorID, post.Text, post.Image, post.CreatedAt)
	return err
}

func (s *PostgresStorage) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	err := s.pool.QueryRow(ctx, `
		SELECT id, author_id, body, image, created_at
		FROM posts
		WHERE id=$1`, id).Scan(&p.ID, &p.AuthorID, &p.Text, &p.Image, &p.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadEngagement(ctx, []*models.Post{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStorage) DeletePost(ctx context.Context, id, requesterID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Автор читается той же транзакцией, что и удаляет: проверка
	// владения и удаление неразделимы.
	var authorID string
	err = tx.QueryRow(ctx, `SELECT author_id FROM posts WHERE id=$1 FOR UPDATE`, id).Scan(&authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return err
	}
	if authorID != requesterID {
		return fmt.Errorf("%w: only the author can delete a post", models.ErrForbidden)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStorage) ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT true FROM posts WHERE id=$1 FOR UPDATE`, postID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id=$1 AND user_id=$2`, postID, userID)
	if err != nil {
		return nil, err
	}
	liked := false
	if tag.RowsAffected() == 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO post_likes (post_id, user_id, created_at)
			VALUES ($1, $2, $3)`, postID, userID, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		liked = true
	}

	var count int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id=$1`, postID).Scan(&count)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &models.LikeResult{Liked: liked, LikeCount: count}, nil
}

func (s *PostgresStorage) AddReply(ctx context.Context, postID string, reply *models.Reply) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT true FROM posts WHERE id=$1 FOR UPDATE`, postID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO post_replies (id, post_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		reply.ID, postID, reply.UserID, reply.Text, reply.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStorage) ListByAuthors(ctx context.Context, authorIDs []string, offset, limit int) ([]*models.Post, error) {
	// Отрицательное смещение отвергается базой; такая страница пуста.
	if offset < 0 {
		return []*models.Post{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, author_id, body, image, created_at
		FROM posts
		WHERE author_id = ANY($1)
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3`, authorIDs, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Text, &p.Image, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadEngagement(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// loadEngagement догружает лайки и ответы для уже выбранных постов.
func (s *PostgresStorage) loadEngagement(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	byID := make(map[string]*models.Post, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		p.LikedBy = []string{}
		p.Replies = []models.Reply{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	likeRows, err := s.pool.Query(ctx, `
		SELECT post_id, user_id
		FROM post_likes
		WHERE post_id = ANY($1)
		ORDER BY user_id`, ids)
	if err != nil {
		return err
	}
	defer likeRows.Close()
	for likeRows.Next() {
		var postID, userID string
		if err := likeRows.Scan(&postID, &userID); err != nil {
			return err
		}
		byID[postID].LikedBy = append(byID[postID].LikedBy, userID)
	}
	if err := likeRows.Err(); err != nil {
		return err
	}

	replyRows, err := s.pool.Query(ctx, `
		SELECT post_id, id, user_id, body, created_at
		FROM post_replies
		WHERE post_id = ANY($1)
		ORDER BY created_at, id`, ids)
	if err != nil {
		return err
	}
	defer replyRows.Close()
	for replyRows.Next() {
		var postID string
		var r models.Reply
		if err := replyRows.Scan(&postID, &r.ID, &r.UserID, &r.Text, &r.CreatedAt); err != nil {
			return err
		}
		byID[postID].Replies = append(byID[postID].Replies, r)
	}
	if err := replyRows.Err(); err != nil {
		return err
	}

	return nil
}

func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}
