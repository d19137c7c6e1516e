package errs

import (
	"errors"
)

// Kind classifies failures so that the HTTP layer can map them without knowing the store.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindReferential
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindReferential:
		return "referential"
	default:
		return "internal"
	}
}

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

var (
	ErrAuthorNotFound = &Error{Kind: KindNotFound, Msg: "author not found"}
	ErrBookNotFound   = &Error{Kind: KindNotFound, Msg: "book not found"}
	ErrUnknownAuthor  = &Error{Kind: KindReferential, Msg: "the specified author does not exist"}
	ErrDuplicateEmail = &Error{Kind: KindConflict, Msg: "email is already registered"}
	ErrDuplicateISBN  = &Error{Kind: KindConflict, Msg: "isbn is already registered"}
	ErrAuthorHasBooks = &Error{Kind: KindConflict, Msg: "author still has books"}
)

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// KindOf reports the kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

type ErrorResponse struct {
	Message string `json:"message"`
}
