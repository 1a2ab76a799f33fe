package content

import "time"

// Article is a published or draft text entry.
type Article struct {
	ID        int64     `db:"id" json:"id"`
	Slug      string    `db:"slug" json:"slug"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	Published bool      `db:"published" json:"published"`
	Created   time.Time `db:"created" json:"created"`
	Updated   time.Time `db:"updated" json:"updated"`
}

// Album groups uploaded images.
type Album struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Created     time.Time `db:"created" json:"created"`
}

// Image is an uploaded file; the payload lives in the object store
// under ObjectKey.
type Image struct {
	ID          int64     `db:"id" json:"id"`
	AlbumID     *int64    `db:"album_id" json:"albumId,omitempty"`
	FileName    string    `db:"file_name" json:"fileName"`
	ObjectKey   string    `db:"object_key" json:"objectKey"`
	ContentType string    `db:"content_type" json:"contentType"`
	Size        int64     `db:"size" json:"size"`
	Created     time.Time `db:"created" json:"created"`
}
