package apperr

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrNotFound        = errors.New("nicht gefunden")
	ErrForbidden       = errors.New("keine Berechtigung")
	ErrInvalidArgument = errors.New("ungültige Eingabe")
	ErrConflict        = errors.New("konflikt")
	ErrUnauthenticated = errors.New("nicht eingeloggt")
)

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Status: HTTP-Status für einen Fehler aus dem Kern
func Status(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrUnauthenticated):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// ToFiber übersetzt Kernfehler in *fiber.Error. Speicherfehler werden geloggt
// und ohne Details als 500 gemeldet.
func ToFiber(err error) error {
	if err == nil {
		return nil
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	status := Status(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("interner Fehler: %v", err)
		return fiber.NewError(status, "Interner Serverfehler")
	}
	return fiber.NewError(status, err.Error())
}
