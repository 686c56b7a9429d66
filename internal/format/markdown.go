package format

import "strings"

// ReservedCharacters — зарезервированные символы MarkdownV2
const ReservedCharacters = "_*[]()~`>#+-=|{}.!"

// updatedPrefix — начало строки-футера с временем последнего обновления.
// Она исключается из сравнения, иначе каждый рендер считался бы изменением.
const updatedPrefix = "_Обновлено:"

// Escape убирает переводы строк и крупные пробельные блоки из текста,
// после чего экранирует все зарезервированные символы MarkdownV2.
// Применяется ровно один раз к каждому подставляемому полю.
func Escape(text string) string {
	text = strings.ReplaceAll(text, "\n", "")
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, strings.Repeat(" ", 20), "")
	text = strings.ReplaceAll(text, "  ", "")

	var b strings.Builder
	b.Grow(len(text) * 2)
	for _, r := range text {
		if r < 128 && strings.ContainsRune(ReservedCharacters, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CompareKey строит ключ сравнения, нечувствительный к разметке:
// убирает футер обновления, все обратные слэши, переводы строк, пробелы
// и зарезервированные символы. Равенство ключей означает, что видимое
// содержимое сообщения не изменилось.
func CompareKey(text string) string {
	text = stripUpdatedLine(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\\' || r == '\n' || r == '\r' || r == ' ':
		case r < 128 && strings.ContainsRune(ReservedCharacters, r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripUpdatedLine отрезает последнюю строку документа, если это футер
// "_Обновлено: ...".
func stripUpdatedLine(text string) string {
	idx := strings.LastIndex(text, "\n")
	if idx < 0 {
		if strings.HasPrefix(text, updatedPrefix) {
			return ""
		}
		return text
	}
	if strings.HasPrefix(text[idx+1:], updatedPrefix) {
		return text[:idx]
	}
	return text
}
