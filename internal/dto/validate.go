package dto

import (
	"fmt"
	"strings"
	"unicode/utf8"

	dom "github.com/codewithkim/todo-api/internal/domain"
)

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 2000
)

// Field error kinds.
const (
	KindRequired  = "required"
	KindType      = "type"
	KindMaxLength = "max_length"
	KindNull      = "null"
)

type FieldError struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed, in field order.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

type mode int

const (
	modeCreate mode = iota
	modeReplace
	modePatch
)

// ValidateCreate requires title. A missing or null is_completed means false.
func ValidateCreate(r TodoRequest) (dom.TodoChanges, error) {
	return r.validate(modeCreate)
}

// ValidateReplace requires title. Omitted description and is_completed keep
// their stored values; an explicit null description clears it.
func ValidateReplace(r TodoRequest) (dom.TodoChanges, error) {
	return r.validate(modeReplace)
}

// ValidatePatch requires nothing. Only sent fields change; title and
// is_completed may not be null, description may.
func ValidatePatch(r TodoRequest) (dom.TodoChanges, error) {
	return r.validate(modePatch)
}

func (r TodoRequest) validate(m mode) (dom.TodoChanges, error) {
	var ch dom.TodoChanges
	var errs []FieldError
	fail := func(field, kind, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Kind: kind, Message: fmt.Sprintf(format, args...)})
	}

	switch t := r.Title; {
	case !t.Present:
		if m != modePatch {
			fail("title", KindRequired, "title is required")
		}
	case t.Null:
		if m == modePatch {
			fail("title", KindNull, "title may not be null")
		} else {
			fail("title", KindRequired, "title is required")
		}
	case t.Err != nil:
		fail("title", KindType, "title must be a string")
	default:
		title := strings.TrimSpace(t.Value)
		switch {
		case title == "":
			fail("title", KindRequired, "title may not be empty")
		case utf8.RuneCountInString(title) > MaxTitleLength:
			fail("title", KindMaxLength, "title may not be longer than %d characters", MaxTitleLength)
		default:
			ch.Title = dom.Some(title)
		}
	}

	switch d := r.Description; {
	case !d.Present:
	case d.Null:
		ch.Description = dom.Some[*string](nil)
	case d.Err != nil:
		fail("description", KindType, "description must be a string")
	default:
		desc := strings.TrimSpace(d.Value)
		switch {
		case desc == "":
			ch.Description = dom.Some[*string](nil)
		case utf8.RuneCountInString(desc) > MaxDescriptionLength:
			fail("description", KindMaxLength, "description may not be longer than %d characters", MaxDescriptionLength)
		default:
			ch.Description = dom.Some(&desc)
		}
	}

	switch c := r.IsCompleted; {
	case !c.Present:
	case c.Null:
		if m == modePatch {
			fail("is_completed", KindNull, "is_completed may not be null")
		}
	case c.Err != nil:
		fail("is_completed", KindType, "is_completed must be a boolean")
	default:
		ch.IsCompleted = dom.Some(bool(c.Value))
	}

	if len(errs) > 0 {
		return dom.TodoChanges{}, &ValidationError{Errors: errs}
	}
	return ch, nil
}
