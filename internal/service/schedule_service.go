package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/nmalginov/timetable_bot/internal/format"
	"github.com/nmalginov/timetable_bot/internal/model"
	"github.com/nmalginov/timetable_bot/internal/scraper"
)

const (
	// languageSubject — предмет, который ведут несколько преподавателей;
	// чужие группы отфильтровываются по фамилии из конфигурации.
	languageSubject = "Английский язык"

	// onlineLessonText — фраза дистанционного занятия в уже экранированном
	// виде (сравнивается с текстом места после Escape).
	onlineLessonText = `С использованием информационно\-коммуникационных технологий`

	fetchMaxRetries = 2
	fetchRetryDelay = 2 * time.Second
)

// roomPattern — контракт обозначения аудитории: литера корпуса с запятой
// («лит\. А,» в экранированном тексте), всё после неё — номер аудитории.
var roomPattern = regexp.MustCompile(`лит\\\. .,`)

// WeekFetcher отдаёт разобранные дни недели, начинающейся с weekStart.
type WeekFetcher interface {
	FetchWeek(ctx context.Context, weekStart time.Time) ([]model.DaySection, error)
}

// ScheduleService превращает страницу источника в готовый MarkdownV2-документ
// недельного расписания.
type ScheduleService struct {
	fetcher    WeekFetcher
	teacher    string
	logger     *zap.Logger
	now        func() time.Time
	retryDelay time.Duration
}

// NewScheduleService создаёт рендерер. teacherName — фамилия преподавателя
// иностранного языка, чьи занятия остаются в выдаче.
func NewScheduleService(fetcher WeekFetcher, teacherName string, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		fetcher:    fetcher,
		teacher:    teacherName,
		logger:     logger,
		now:        time.Now,
		retryDelay: fetchRetryDelay,
	}
}

// WeekStart нормализует дату к понедельнику её недели (полночь, локальная
// зона). Гарантирует стабильные границы недели для любого дня-якоря.
func WeekStart(d time.Time) time.Time {
	d = dateOnly(d)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Render загружает расписание недели, в которую попадает anchor, и
// форматирует его в полный текст сообщения. Сетевые сбои повторяются
// ограниченное число раз; ошибки разбора фатальны для вызова.
func (s *ScheduleService) Render(ctx context.Context, anchor time.Time) (string, error) {
	weekStart := WeekStart(anchor)

	var days []model.DaySection
	backoff := retry.WithMaxRetries(fetchMaxRetries, retry.NewConstant(s.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var ferr error
		days, ferr = s.fetcher.FetchWeek(ctx, weekStart)
		var fetchErr *scraper.FetchError
		if errors.As(ferr, &fetchErr) {
			s.logger.Warn("Schedule fetch failed, will retry",
				zap.String("week_start", weekStart.Format("2006-01-02")),
				zap.Error(ferr))
			return retry.RetryableError(ferr)
		}
		return ferr
	})
	if err != nil {
		return "", err
	}

	return s.formatWeek(days, weekStart), nil
}

func (s *ScheduleService) formatWeek(days []model.DaySection, weekStart time.Time) string {
	today := dateOnly(s.now())

	var b strings.Builder
	dayDate := weekStart
	for _, day := range days {
		b.WriteString(dayMarker(dayDate, today))
		b.WriteString(" *")
		b.WriteString(capitalize(format.Escape(day.Title)))
		b.WriteString("*\n")

		for _, lesson := range day.Lessons {
			if s.skipLesson(lesson) {
				continue
			}
			writeLesson(&b, lesson)
		}

		b.WriteString("\n")
		dayDate = dayDate.AddDate(0, 0, 1)
	}

	b.WriteString("_Обновлено: ")
	b.WriteString(format.Escape(s.now().Format("02.01.2006 15:04:05")))
	b.WriteString("_")

	return b.String()
}

// skipLesson отбрасывает занятия иностранного языка чужих групп.
func (s *ScheduleService) skipLesson(l model.Lesson) bool {
	return strings.Contains(l.Subject, languageSubject) &&
		!strings.Contains(l.Teacher, s.teacher)
}

func writeLesson(b *strings.Builder, l model.Lesson) {
	if l.Cancelled {
		// Отменённое занятие: только время и предмет, зачёркнутые
		b.WriteString("~*")
		b.WriteString(format.Escape(l.Time))
		b.WriteString("* ")
		b.WriteString(format.Escape(l.Subject))
		b.WriteString("~\n")
		return
	}

	b.WriteString("*")
	b.WriteString(format.Escape(l.Time))
	b.WriteString("* ")
	b.WriteString(format.Escape(l.Subject))
	b.WriteString(" ")
	b.WriteString(annotatePlace(format.Escape(l.Place)))
	b.WriteString(" ")
	b.WriteString(format.Escape(l.Teacher))
	b.WriteString("\n")
}

// annotatePlace выделяет переменную часть места занятия: признак
// дистанционного формата или номер аудитории после литеры корпуса.
func annotatePlace(place string) string {
	if strings.Contains(place, onlineLessonText) {
		return strings.ReplaceAll(place, onlineLessonText,
			"__*"+strings.ToLower(onlineLessonText)+"*__")
	}

	if loc := roomPattern.FindStringIndex(place); loc != nil {
		end := loc[1]
		return place[:end] + " __*" + strings.ReplaceAll(place[end:], " ", "") + "*__"
	}

	return place
}

func dayMarker(day, today time.Time) string {
	switch {
	case day.Equal(today):
		return "🟢"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "🟡"
	default:
		return "🔵"
	}
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
