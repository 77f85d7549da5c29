package models

import (
	"time"
)

// Reserved folder names. Both exist after migration and refuse delete/rename.
const (
	FolderDefault = "Default"
	FolderTrash   = "Trash"
)

type Note struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"` // Opaque serialized document blob
	Folder     string     `json:"folder"`
	CreatedAt  time.Time  `json:"created_at"`
	LastEdited time.Time  `json:"last_edited"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Active reports whether the note is outside the logical trash.
func (n *Note) Active() bool {
	return n.DeletedAt == nil
}

// Clone returns a copy safe to hand outside the store's lock.
func (n *Note) Clone() *Note {
	c := *n
	if n.DeletedAt != nil {
		t := *n.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

type Folder struct {
	Name     string `json:"name"`
	OrderIdx int    `json:"order_idx"`
}

// NotePatch carries a partial note update; nil fields are left untouched.
type NotePatch struct {
	Title  *string `json:"title,omitempty"`
	Body   *string `json:"body,omitempty"`
	Folder *string `json:"folder,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Body == nil && p.Folder == nil
}

type NoteListFilters struct {
	Folder         string
	IncludeDeleted bool
	Limit          int
	Offset         int
}
