package scraper

import "fmt"

// FetchError — страница расписания недоступна: сетевая ошибка, таймаут
// или не-2xx статус ответа.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError — структура страницы не соответствует контракту селекторов
// (формат источника изменился). Частичный результат не возвращается.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse schedule page: " + e.Reason
}
