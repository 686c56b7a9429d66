package model

// Lesson — одна строка занятия, как она извлечена со страницы расписания.
// Поля содержат сырой текст источника, без экранирования.
type Lesson struct {
	Time      string
	Subject   string
	Place     string
	Teacher   string
	Cancelled bool
}

// DaySection — один учебный день со страницы: заголовок панели и занятия
// в порядке документа. Дата дню назначается при рендере, последовательно
// от понедельника запрошенной недели.
type DaySection struct {
	Title   string
	Lessons []Lesson
}
