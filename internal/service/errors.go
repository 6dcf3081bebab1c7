package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/readinglog/readinglog-server/internal/errors"
	"github.com/readinglog/readinglog-server/internal/store"
)

// fromStore converts store sentinels into domain errors, keeping the store's
// message. Anything else is wrapped with op.
func fromStore(err error, op string) error {
	var se *store.Error
	if errors.As(err, &se) {
		switch {
		case errors.Is(se, store.ErrNotFound):
			return domainerrors.NotFound(se.Message)
		case errors.Is(se, store.ErrAlreadyExists):
			return domainerrors.Conflict(se.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
