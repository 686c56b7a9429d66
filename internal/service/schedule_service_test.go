package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nmalginov/timetable_bot/internal/model"
	"github.com/nmalginov/timetable_bot/internal/scraper"
)

type fakeFetcher struct {
	days  []model.DaySection
	errs  []error // ошибки первых вызовов, затем days
	calls int
	got   time.Time
}

func (f *fakeFetcher) FetchWeek(_ context.Context, weekStart time.Time) ([]model.DaySection, error) {
	f.calls++
	f.got = weekStart
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return f.days, nil
}

// Среда, 3 сентября 2025
func testClock() time.Time {
	return time.Date(2025, time.September, 3, 12, 30, 45, 0, time.Local)
}

func newTestService(f *fakeFetcher) *ScheduleService {
	s := NewScheduleService(f, "Иванов", zap.NewNop())
	s.now = testClock
	s.retryDelay = time.Millisecond
	return s
}

func lessonDay(title string, lessons ...model.Lesson) model.DaySection {
	return model.DaySection{Title: title, Lessons: lessons}
}

func mathLesson() model.Lesson {
	return model.Lesson{
		Time:    "09:00 - 10:30",
		Subject: "Математика",
		Place:   "Учебный корпус, лит. А, каб. 2-13",
		Teacher: "Иванов И.И.",
	}
}

func TestWeekStartAlwaysMonday(t *testing.T) {
	for day := 1; day <= 14; day++ {
		d := time.Date(2025, time.September, day, 15, 4, 5, 0, time.Local)
		ws := WeekStart(d)
		assert.Equal(t, time.Monday, ws.Weekday(), "date %v", d)
	}
}

func TestWeekStartSameForWholeWeek(t *testing.T) {
	monday := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.Local)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		assert.Equal(t, monday, WeekStart(d), "day %d", i)
	}
	// Следующая неделя — другой понедельник
	assert.Equal(t, monday.AddDate(0, 0, 7), WeekStart(monday.AddDate(0, 0, 7)))
}

func TestRenderDayMarkers(t *testing.T) {
	f := &fakeFetcher{days: []model.DaySection{
		lessonDay("понедельник, 1 сентября"),
		lessonDay("вторник, 2 сентября"),
		lessonDay("среда, 3 сентября"),
		lessonDay("четверг, 4 сентября"),
		lessonDay("пятница, 5 сентября"),
	}}

	text, err := newTestService(f).Render(context.Background(), testClock())
	require.NoError(t, err)

	assert.Contains(t, text, "🔵 *Понедельник, 1 сентября*")
	assert.Contains(t, text, "🔵 *Вторник, 2 сентября*")
	assert.Contains(t, text, "🟢 *Среда, 3 сентября*")
	assert.Contains(t, text, "🟡 *Четверг, 4 сентября*")
	assert.Contains(t, text, "🔵 *Пятница, 5 сентября*")
}

func TestRenderNormalizesAnchorToMonday(t *testing.T) {
	f := &fakeFetcher{days: []model.DaySection{lessonDay("понедельник")}}

	// Якорь — среда, запрошен должен быть понедельник той же недели
	_, err := newTestService(f).Render(context.Background(), testClock())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.Local), f.got)
}

func TestRenderLessonLine(t *testing.T) {
	f := &fakeFetcher{days: []model.DaySection{lessonDay("понедельник, 1 сентября", mathLesson())}}

	text, err := newTestService(f).Render(context.Background(), testClock())
	require.NoError(t, err)

	assert.Contains(t, text,
		`*09:00 \- 10:30* Математика Учебный корпус, лит\. А, __*каб\.2\-13*__ Иванов И\.И\.`)
	assert.NotContains(t, text, "~")
}

func TestRenderCancelledLesson(t *testing.T) {
	lesson := mathLesson()
	lesson.Cancelled = true
	f := &fakeFetcher{days: []model.DaySection{lessonDay("понедельник, 1 сентября", lesson)}}

	text, err := newTestService(f).Render(context.Background(), testClock())
	require.NoError(t, err)

	assert.Contains(t, text, `~*09:00 \- 10:30* Математика~`)
	// Ни места, ни преподавателя в строке отменённого занятия
	assert.NotContains(t, text, "каб")
	assert.NotContains(t, text, "Иванов")
	assert.NotContains(t, text, "корпус")
}

func TestRenderTeacherFilter(t *testing.T) {
	foreign := model.Lesson{
		Time:    "10:40 - 12:10",
		Subject: "Английский язык",
		Place:   "Учебный корпус, лит. Б, каб. 1-05",
		Teacher: "Петрова А.А.",
	}
	ours := foreign
	ours.Teacher = "Иванов И.И."

	f := &fakeFetcher{days: []model.DaySection{
		lessonDay("понедельник, 1 сентября", foreign, ours),
	}}

	text, err := newTestService(f).Render(context.Background(), testClock())
	require.NoError(t, err)

	assert.NotContains(t, text, "Петрова")
	assert.Contains(t, text, "Английский язык")
	assert.Contains(t, text, "Иванов")
}

func TestRenderOnlineLessonEmphasis(t *testing.T) {
	lesson := mathLesson()
	lesson.Place = "С использованием информационно-коммуникационных технологий"
	f := &fakeFetcher{days: []model.DaySection{lessonDay("понедельник", lesson)}}

	text, err := newTestService(f).Render(context.Background(), testClock())
	require.NoError(t, err)

	assert.Contains(t, text,
		`__*с использованием информационно\-коммуникационных технологий*__`)
}

func TestRenderFooter(t *testing.T) {
	f := &fakeFetcher{days: []model.DaySection{lessonDay("понедельник")}}

	text, err := newTestService(f).Render(context.Background(), testClock())
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(text, `_Обновлено: 03\.09\.2025 12:30:45_`), text)
}

func TestRenderRetriesTransientFetchErrors(t *testing.T) {
	f := &fakeFetcher{
		errs: []error{
			&scraper.FetchError{URL: "http://x", Err: assert.AnError},
			&scraper.FetchError{URL: "http://x", Err: assert.AnError},
		},
		days: []model.DaySection{lessonDay("понедельник")},
	}

	_, err := newTestService(f).Render(context.Background(), testClock())
	require.NoError(t, err)
	assert.Equal(t, 3, f.calls)
}

func TestRenderFetchErrorAfterRetries(t *testing.T) {
	f := &fakeFetcher{errs: []error{
		&scraper.FetchError{URL: "http://x", Err: assert.AnError},
		&scraper.FetchError{URL: "http://x", Err: assert.AnError},
		&scraper.FetchError{URL: "http://x", Err: assert.AnError},
	}}

	_, err := newTestService(f).Render(context.Background(), testClock())

	var fetchErr *scraper.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 3, f.calls)
}

func TestRenderParseErrorNotRetried(t *testing.T) {
	f := &fakeFetcher{errs: []error{&scraper.ParseError{Reason: "no day panels"}}}

	_, err := newTestService(f).Render(context.Background(), testClock())

	var parseErr *scraper.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, f.calls)
}
