package models

import "errors"

// Ошибки ядра. Обработчики HTTP сопоставляют их со статусами
// 400/401/403/404, все остальное считается внутренней ошибкой.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("post not found")
)
