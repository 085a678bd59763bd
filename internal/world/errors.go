package world

import "errors"

// Ошибки ядра карты. Вызывающий код проверяет их через errors.Is.
var (
	// ErrOutOfBounds позиция вне сетки
	ErrOutOfBounds = errors.New("позиция вне карты")
	// ErrPlacementRejected хотя бы одна клетка основания не прошла проверку
	ErrPlacementRejected = errors.New("размещение запрещено")
	// ErrMissingDescriptor тайл не найден в реестре
	ErrMissingDescriptor = errors.New("описание тайла не найдено")
	// ErrVersionMismatch версия снимка не совпадает с поддерживаемой
	ErrVersionMismatch = errors.New("неподдерживаемая версия снимка")
	// ErrCorrupt данные снимка не разбираются
	ErrCorrupt = errors.New("снимок карты повреждён")
)
