package service

import "errors"

// Классы ошибок операций обмена. Конкретные ошибки оборачивают их через %w,
// вызывающий код классифицирует через errors.Is
var (
	// ErrInvalidArgument - некорректный ввод, повтор бессмыслен
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound - слот или запрос не существует
	ErrNotFound = errors.New("not found")
	// ErrForbidden - нарушение прав доступа
	ErrForbidden = errors.New("forbidden")
	// ErrConflict - проиграна гонка или запрос уже обработан; можно перечитать состояние и повторить
	ErrConflict = errors.New("conflict")
	// ErrCompensationFailed - не удалось откатить или завершить запись слотов,
	// данные нарушают инварианты и требуют ручной сверки
	ErrCompensationFailed = errors.New("compensation failed")
)
