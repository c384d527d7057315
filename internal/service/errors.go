package service

import "errors"

// Ошибки уровня сервиса. Хэндлеры сопоставляют их через errors.Is
// для выбора HTTP-статуса.
var (
	// ErrValidation - некорректные или отсутствующие координаты без legacy-текста
	ErrValidation = errors.New("validation error")
	// ErrUnauthenticated - не удалось определить отправителя сигнала
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPersistence - не удалось сохранить сигнал, запрос полностью неуспешен
	ErrPersistence = errors.New("persistence error")
	// ErrDependencyUnavailable - сигнал сохранен, но кластеризация недоступна
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrInvalidQuery - некорректные параметры запроса к пространственному индексу
	ErrInvalidQuery = errors.New("invalid proximity query")
	// ErrNotFound - запись не найдена
	ErrNotFound = errors.New("not found")
)
