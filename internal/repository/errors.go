package repository

import "errors"

// ErrReferenced возвращается при удалении записи, на которую ссылается история обменов
var ErrReferenced = errors.New("record is referenced by swap history")
