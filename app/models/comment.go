package models

import (
	"encoding/json"
	"fmt"
)

type commenterKind uint8

const (
	commenterNone commenterKind = iota
	commenterAuthor
	commenterGuest
)

// Commenter identifies who wrote a comment: either a registered author or a
// free-text name, never both. The zero value identifies nobody and fails
// validation.
type Commenter struct {
	kind     commenterKind
	authorID int
	name     string
}

// AuthorRef returns a commenter that points at a registered author.
func AuthorRef(authorID int) Commenter {
	return Commenter{kind: commenterAuthor, authorID: authorID}
}

// FreeText returns a commenter known only by the name they typed.
func FreeText(name string) Commenter {
	return Commenter{kind: commenterGuest, name: name}
}

// AuthorID returns the referenced author id, if any.
func (c Commenter) AuthorID() (int, bool) {
	return c.authorID, c.kind == commenterAuthor
}

// Name returns the free-text name, if any.
func (c Commenter) Name() (string, bool) {
	return c.name, c.kind == commenterGuest
}

// IsZero reports whether the commenter identifies nobody.
func (c Commenter) IsZero() bool {
	return c.kind == commenterNone
}

func (c Commenter) String() string {
	switch c.kind {
	case commenterAuthor:
		return fmt.Sprintf("author:%d", c.authorID)
	case commenterGuest:
		return fmt.Sprintf("guest:%q", c.name)
	default:
		return "nobody"
	}
}

type commenterJSON struct {
	AuthorID      *int    `json:"author_id,omitempty"`
	CommenterName *string `json:"commenter_name,omitempty"`
}

// MarshalJSON encodes the commenter as {"author_id":N} or {"commenter_name":"..."}.
func (c Commenter) MarshalJSON() ([]byte, error) {
	var out commenterJSON
	switch c.kind {
	case commenterAuthor:
		out.AuthorID = &c.authorID
	case commenterGuest:
		out.CommenterName = &c.name
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON. An author id wins when both keys
// are present.
func (c *Commenter) UnmarshalJSON(data []byte) error {
	var in commenterJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch {
	case in.AuthorID != nil:
		*c = AuthorRef(*in.AuthorID)
	case in.CommenterName != nil:
		*c = FreeText(*in.CommenterName)
	default:
		*c = Commenter{}
	}
	return nil
}

// AuthorID returns the id of the registered author who wrote the comment, if any.
func (c *Comment) AuthorID() (int, bool) {
	return c.Commenter.AuthorID()
}

// DisplayName resolves the name shown next to the comment. The linked author's
// current name wins; the free-text name is used only when no author is linked.
func (c *Comment) DisplayName(author *Author) string {
	if id, ok := c.Commenter.AuthorID(); ok {
		if author != nil && author.ID == id {
			return author.Name
		}
		return ""
	}
	name, _ := c.Commenter.Name()
	return name
}
