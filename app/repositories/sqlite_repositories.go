package repositories

import (
	"database/sql"
	"errors"

	"inkwell/app/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// SQLiteAuthorRepository implements AuthorRepository on a SQL transaction
type SQLiteAuthorRepository struct {
	*sqlTx
}

const authorColumns = `id, name, email, bio, created_at, updated_at`

func scanAuthor(row rowScanner) (*models.Author, error) {
	var (
		a                models.Author
		bio              sql.NullString
		created, updated int64
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &bio, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.Bio = stringPtr(bio)
	a.CreatedAt = fromUnixNano(created)
	a.UpdatedAt = fromUnixNano(updated)
	return &a, nil
}

func (r *SQLiteAuthorRepository) Create(author *models.Author) error {
	now := r.now()
	res, err := r.tx.ExecContext(r.ctx,
		`INSERT INTO authors (name, email, bio, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		author.Name, author.Email, nullString(author.Bio), toUnixNano(now), toUnixNano(now))
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	author.ID = int(id)
	author.CreatedAt = now
	author.UpdatedAt = now
	return nil
}

func (r *SQLiteAuthorRepository) GetByID(id int) (*models.Author, error) {
	return scanAuthor(r.tx.QueryRowContext(r.ctx,
		`SELECT `+authorColumns+` FROM authors WHERE id = ?`, id))
}

func (r *SQLiteAuthorRepository) FindByEmail(email string) (*models.Author, error) {
	return scanAuthor(r.tx.QueryRowContext(r.ctx,
		`SELECT `+authorColumns+` FROM authors WHERE email = ?`, email))
}

func (r *SQLiteAuthorRepository) List() ([]*models.Author, error) {
	rows, err := r.tx.QueryContext(r.ctx, `SELECT `+authorColumns+` FROM authors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []*models.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (r *SQLiteAuthorRepository) Update(author *models.Author) error {
	existing, err := r.GetByID(author.ID)
	if err != nil {
		return err
	}
	now := r.now()
	_, err = r.tx.ExecContext(r.ctx,
		`UPDATE authors SET name = ?, email = ?, bio = ?, updated_at = ? WHERE id = ?`,
		author.Name, author.Email, nullString(author.Bio), toUnixNano(now), author.ID)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return err
	}
	author.CreatedAt = existing.CreatedAt
	author.UpdatedAt = now
	return nil
}

func (r *SQLiteAuthorRepository) Delete(id int) error {
	res, err := r.tx.ExecContext(r.ctx, `DELETE FROM authors WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// SQLitePostRepository implements PostRepository on a SQL transaction
type SQLitePostRepository struct {
	*sqlTx
}

const postColumns = `id, author_id, title, body, published_at, created_at, updated_at`

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		p                models.Post
		published        sql.NullInt64
		created, updated int64
	)
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &published, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.PublishedAt = timePtr(published)
	p.CreatedAt = fromUnixNano(created)
	p.UpdatedAt = fromUnixNano(updated)
	return &p, nil
}

func (r *SQLitePostRepository) queryPosts(query string, args ...any) ([]*models.Post, error) {
	rows, err := r.tx.QueryContext(r.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *SQLitePostRepository) Create(post *models.Post) error {
	now := r.now()
	res, err := r.tx.ExecContext(r.ctx,
		`INSERT INTO posts (author_id, title, body, published_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		post.AuthorID, post.Title, post.Body, nullTime(post.PublishedAt), toUnixNano(now), toUnixNano(now))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	post.ID = int(id)
	post.CreatedAt = now
	post.UpdatedAt = now
	return nil
}

func (r *SQLitePostRepository) GetByID(id int) (*models.Post, error) {
	return scanPost(r.tx.QueryRowContext(r.ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
}

func (r *SQLitePostRepository) List(filter models.PostFilter) ([]*models.Post, error) {
	where := ""
	switch filter {
	case models.FilterPublished:
		where = ` WHERE published_at IS NOT NULL`
	case models.FilterDrafts:
		where = ` WHERE published_at IS NULL`
	}
	return r.queryPosts(`SELECT ` + postColumns + ` FROM posts` + where + ` ORDER BY created_at DESC, id ASC`)
}

func (r *SQLitePostRepository) ListByAuthor(authorID int) ([]*models.Post, error) {
	return r.queryPosts(`SELECT `+postColumns+` FROM posts WHERE author_id = ? ORDER BY id`, authorID)
}

func (r *SQLitePostRepository) Update(post *models.Post) error {
	existing, err := r.GetByID(post.ID)
	if err != nil {
		return err
	}
	now := r.now()
	_, err = r.tx.ExecContext(r.ctx,
		`UPDATE posts SET author_id = ?, title = ?, body = ?, published_at = ?, updated_at = ? WHERE id = ?`,
		post.AuthorID, post.Title, post.Body, nullTime(post.PublishedAt), toUnixNano(now), post.ID)
	if err != nil {
		return err
	}
	post.CreatedAt = existing.CreatedAt
	post.UpdatedAt = now
	return nil
}

func (r *SQLitePostRepository) Delete(id int) error {
	res, err := r.tx.ExecContext(r.ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// SQLiteCommentRepository implements CommentRepository on a SQL transaction
type SQLiteCommentRepository struct {
	*sqlTx
}

const commentColumns = `id, post_id, author_id, commenter_name, body, created_at, updated_at`

func scanComment(row rowScanner) (*models.Comment, error) {
	var (
		c                models.Comment
		authorID         sql.NullInt64
		name             sql.NullString
		created, updated int64
	)
	if err := row.Scan(&c.ID, &c.PostID, &authorID, &name, &c.Body, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	switch {
	case authorID.Valid:
		c.Commenter = models.AuthorRef(int(authorID.Int64))
	case name.Valid:
		c.Commenter = models.FreeText(name.String)
	}
	c.CreatedAt = fromUnixNano(created)
	c.UpdatedAt = fromUnixNano(updated)
	return &c, nil
}

func commenterColumns(c models.Commenter) (sql.NullInt64, sql.NullString) {
	var (
		authorID sql.NullInt64
		name     sql.NullString
	)
	if id, ok := c.AuthorID(); ok {
		authorID = sql.NullInt64{Int64: int64(id), Valid: true}
	}
	if n, ok := c.Name(); ok {
		name = sql.NullString{String: n, Valid: true}
	}
	return authorID, name
}

func (r *SQLiteCommentRepository) queryComments(query string, args ...any) ([]*models.Comment, error) {
	rows, err := r.tx.QueryContext(r.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *SQLiteCommentRepository) Create(comment *models.Comment) error {
	now := r.now()
	authorID, name := commenterColumns(comment.Commenter)
	res, err := r.tx.ExecContext(r.ctx,
		`INSERT INTO comments (post_id, author_id, commenter_name, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		comment.PostID, authorID, name, comment.Body, toUnixNano(now), toUnixNano(now))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	comment.ID = int(id)
	comment.CreatedAt = now
	comment.UpdatedAt = now
	return nil
}

func (r *SQLiteCommentRepository) GetByID(id int) (*models.Comment, error) {
	return scanComment(r.tx.QueryRowContext(r.ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id))
}

func (r *SQLiteCommentRepository) List() ([]*models.Comment, error) {
	return r.queryComments(`SELECT ` + commentColumns + ` FROM comments ORDER BY id`)
}

func (r *SQLiteCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	return r.queryComments(`SELECT `+commentColumns+` FROM comments WHERE post_id = ? ORDER BY id`, postID)
}

func (r *SQLiteCommentRepository) ListByAuthor(authorID int) ([]*models.Comment, error) {
	return r.queryComments(`SELECT `+commentColumns+` FROM comments WHERE author_id = ? ORDER BY id`, authorID)
}

func (r *SQLiteCommentRepository) Update(comment *models.Comment) error {
	existing, err := r.GetByID(comment.ID)
	if err != nil {
		return err
	}
	now := r.now()
	authorID, name := commenterColumns(comment.Commenter)
	_, err = r.tx.ExecContext(r.ctx,
		`UPDATE comments SET post_id = ?, author_id = ?, commenter_name = ?, body = ?, updated_at = ? WHERE id = ?`,
		comment.PostID, authorID, name, comment.Body, toUnixNano(now), comment.ID)
	if err != nil {
		return err
	}
	comment.CreatedAt = existing.CreatedAt
	comment.UpdatedAt = now
	return nil
}

func (r *SQLiteCommentRepository) Delete(id int) error {
	res, err := r.tx.ExecContext(r.ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}
