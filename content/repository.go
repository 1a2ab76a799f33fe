package content

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/inkwell-press/inkwell/utils"
)

const (
	ErrNotFound = utils.Error("content: record not found")

	articleTable = "articles"
	albumTable   = "albums"
	imageTable   = "images"
)

// Store is the persistence contract consumed by the HTTP handlers.
type Store interface {
	ListArticles(ctx context.Context, publishedOnly bool) ([]Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (*Article, error)
	CreateArticle(ctx context.Context, a *Article) error
	UpdateArticle(ctx context.Context, a *Article) error
	DeleteArticle(ctx context.Context, id int64) error

	ListAlbums(ctx context.Context) ([]Album, error)
	CreateAlbum(ctx context.Context, a *Album) error

	CreateImage(ctx context.Context, img *Image) error
	GetImage(ctx context.Context, id int64) (*Image, error)
	DeleteImage(ctx context.Context, id int64) error
}

// Repository implements Store over postgres, building SQL with goqu and
// executing it through sqlx.
type Repository struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db:      db,
		dialect: goqu.Dialect("postgres"),
	}
}

func (r *Repository) ListArticles(ctx context.Context, publishedOnly bool) ([]Article, error) {
	ds := r.dialect.From(articleTable).Order(goqu.C("created").Desc())
	if publishedOnly {
		ds = ds.Where(goqu.C("published").IsTrue())
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	articles := make([]Article, 0)
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *Repository) GetArticleBySlug(ctx context.Context, slug string) (*Article, error) {
	query, args, err := r.dialect.From(articleTable).
		Where(goqu.C("slug").Eq(slug)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var article Article
	if err := r.db.GetContext(ctx, &article, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (r *Repository) CreateArticle(ctx context.Context, a *Article) error {
	query, args, err := r.dialect.Insert(articleTable).
		Rows(goqu.Record{
			"slug":      a.Slug,
			"title":     a.Title,
			"body":      a.Body,
			"published": a.Published,
		}).
		Returning("id", "created", "updated").
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	return r.db.QueryRowxContext(ctx, query, args...).Scan(&a.ID, &a.Created, &a.Updated)
}

func (r *Repository) UpdateArticle(ctx context.Context, a *Article) error {
	query, args, err := r.dialect.Update(articleTable).
		Set(goqu.Record{
			"slug":      a.Slug,
			"title":     a.Title,
			"body":      a.Body,
			"published": a.Published,
			"updated":   goqu.L("now()"),
		}).
		Where(goqu.C("id").Eq(a.ID)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireRows(result)
}

func (r *Repository) DeleteArticle(ctx context.Context, id int64) error {
	query, args, err := r.dialect.Delete(articleTable).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireRows(result)
}

func (r *Repository) ListAlbums(ctx context.Context) ([]Album, error) {
	query, args, err := r.dialect.From(albumTable).
		Order(goqu.C("created").Desc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	albums := make([]Album, 0)
	if err := r.db.SelectContext(ctx, &albums, query, args...); err != nil {
		return nil, err
	}
	return albums, nil
}

func (r *Repository) CreateAlbum(ctx context.Context, a *Album) error {
	query, args, err := r.dialect.Insert(albumTable).
		Rows(goqu.Record{
			"title":       a.Title,
			"description": a.Description,
		}).
		Returning("id", "created").
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	return r.db.QueryRowxContext(ctx, query, args...).Scan(&a.ID, &a.Created)
}

func (r *Repository) CreateImage(ctx context.Context, img *Image) error {
	query, args, err := r.dialect.Insert(imageTable).
		Rows(goqu.Record{
			"album_id":     img.AlbumID,
			"file_name":    img.FileName,
			"object_key":   img.ObjectKey,
			"content_type": img.ContentType,
			"size":         img.Size,
		}).
		Returning("id", "created").
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	return r.db.QueryRowxContext(ctx, query, args...).Scan(&img.ID, &img.Created)
}

func (r *Repository) GetImage(ctx context.Context, id int64) (*Image, error) {
	query, args, err := r.dialect.From(imageTable).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var img Image
	if err := r.db.GetContext(ctx, &img, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

func (r *Repository) DeleteImage(ctx context.Context, id int64) error {
	query, args, err := r.dialect.Delete(imageTable).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireRows(result)
}

func requireRows(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
