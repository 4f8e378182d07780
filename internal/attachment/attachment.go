// Package attachment decides what happens to each image, video or document
// slot of a publication during an edit session.
package attachment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
)

const (
	MB = 1 << 20

	MaxImageSize    = 2 * MB
	MaxVideoSize    = 10 * MB
	MaxDocumentSize = 5 * MB
)

// Constraint limits what a slot of a given kind accepts.
type Constraint struct {
	MaxSize int64
	// MIMEPrefix is matched with strings.HasPrefix when MIMEExact is empty.
	MIMEPrefix string
	MIMEExact  string
}

var constraints = map[Kind]Constraint{
	KindImage:    {MaxSize: MaxImageSize, MIMEPrefix: "image/"},
	KindVideo:    {MaxSize: MaxVideoSize, MIMEPrefix: "video/"},
	KindDocument: {MaxSize: MaxDocumentSize, MIMEExact: "application/pdf"},
}

// ConstraintFor returns the constraint of kind k.
func ConstraintFor(k Kind) (Constraint, bool) {
	c, ok := constraints[k]
	return c, ok
}

// Accept returns the MIME pattern accepted by kind k, e.g. "image/*".
func (c Constraint) Accept() string {
	if c.MIMEExact != "" {
		return c.MIMEExact
	}
	return c.MIMEPrefix + "*"
}

// Help is the user facing description of the constraint.
func (c Constraint) Help() string {
	return fmt.Sprintf("%s, %d MB max", c.Accept(), c.MaxSize/MB)
}

var (
	ErrTooLarge    = errors.New("file too large")
	ErrInvalidType = errors.New("invalid file type")
	ErrEmpty       = errors.New("file is empty")
)

// Error is reported at the slot that holds the offending file.
type Error struct {
	Slot string
	Kind Kind
	File string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Slot, e.File, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// File is a file picked by the user for a slot.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// MIMEType returns the declared content type, sniffing the data when none
// was declared.
func (f *File) MIMEType() string {
	ct := strings.TrimSpace(f.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		if len(f.Data) == 0 {
			return ct
		}
		return mimetype.Detect(f.Data).String()
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return strings.ToLower(ct)
}

// Check validates f against the constraint of kind k.
func Check(slot string, k Kind, f *File) error {
	c, ok := constraints[k]
	if !ok {
		return &Error{Slot: slot, Kind: k, File: f.Name, Err: fmt.Errorf("unknown slot kind %q", k)}
	}
	if f.Size() == 0 {
		return &Error{Slot: slot, Kind: k, File: f.Name, Err: ErrEmpty}
	}
	mt := f.MIMEType()
	if c.MIMEExact != "" {
		if !strings.EqualFold(mt, c.MIMEExact) {
			return &Error{Slot: slot, Kind: k, File: f.Name, Err: fmt.Errorf("%w: %q, expected %s", ErrInvalidType, mt, c.MIMEExact)}
		}
	} else if !strings.HasPrefix(mt, c.MIMEPrefix) {
		return &Error{Slot: slot, Kind: k, File: f.Name, Err: fmt.Errorf("%w: %q, expected %s", ErrInvalidType, mt, c.Accept())}
	}
	if f.Size() > c.MaxSize {
		return &Error{Slot: slot, Kind: k, File: f.Name, Err: fmt.Errorf("%w: %d bytes, max %d MB", ErrTooLarge, f.Size(), c.MaxSize/MB)}
	}
	return nil
}
