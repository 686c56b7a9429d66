// Package scraper загружает страницу недельного расписания и разбирает её
// в структуры model.DaySection.
//
// Контракт селекторов источника:
//   - панель дня:      #accordion > div.panel.panel-default
//   - заголовок дня:   div > h4
//   - строка занятия:  ul > li
//   - внутри строки четыре прямых дочерних div в фиксированном порядке:
//     (0) время, (1) предмет, (2) место, (3) преподаватель,
//     значение каждого — в div > div > span
//   - отменённое занятие помечено классом "cancelled" на span времени.
package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/nmalginov/timetable_bot/internal/model"
)

const (
	dayPanelSelector = "#accordion > div.panel.panel-default"
	valueSelector    = "div > div > span"
	cancelledClass   = "cancelled"

	// Accept-Language нужен, чтобы источник отдал локализованные названия дней
	acceptLanguage = "ru-RU,ru;q=0.9"
)

// Scraper получает и разбирает страницы расписания.
type Scraper struct {
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// New создаёт Scraper для заданного базового URL источника.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Scraper {
	return &Scraper{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger,
	}
}

// FetchWeek загружает страницу расписания недели, начинающейся с weekStart
// (ожидается понедельник), и возвращает дни в порядке документа.
// Возвращает *FetchError при сетевой ошибке или не-2xx ответе и *ParseError,
// если структура страницы не соответствует контракту селекторов.
func (s *Scraper) FetchWeek(ctx context.Context, weekStart time.Time) ([]model.DaySection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", s.baseURL, weekStart.Format("2006-01-02"))

	c := colly.NewCollector()
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", acceptLanguage)
	})

	var (
		days     []model.DaySection
		parseErr error
	)

	c.OnHTML(dayPanelSelector, func(e *colly.HTMLElement) {
		if parseErr != nil {
			return
		}
		day, err := parseDay(e.DOM)
		if err != nil {
			parseErr = err
			return
		}
		days = append(days, day)
	})

	s.logger.Debug("Fetching schedule page", zap.String("url", url))

	if err := c.Visit(url); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if parseErr != nil {
		return nil, parseErr
	}
	if len(days) == 0 {
		return nil, &ParseError{Reason: "no day panels matched " + dayPanelSelector}
	}

	s.logger.Debug("Schedule page parsed",
		zap.String("url", url),
		zap.Int("days", len(days)))

	return days, nil
}

func parseDay(sel *goquery.Selection) (model.DaySection, error) {
	header := sel.Find("div > h4").First()
	if header.Length() == 0 {
		return model.DaySection{}, &ParseError{Reason: "day panel without header"}
	}

	day := model.DaySection{Title: header.Text()}

	var rowErr error
	sel.Find("ul > li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		lesson, err := parseLesson(li)
		if err != nil {
			rowErr = err
			return false
		}
		day.Lessons = append(day.Lessons, lesson)
		return true
	})
	if rowErr != nil {
		return model.DaySection{}, rowErr
	}

	return day, nil
}

func parseLesson(li *goquery.Selection) (model.Lesson, error) {
	cols := li.ChildrenFiltered("div")
	if cols.Length() < 4 {
		return model.Lesson{}, &ParseError{
			Reason: fmt.Sprintf("lesson row has %d columns, want 4", cols.Length()),
		}
	}

	spans := make([]*goquery.Selection, 4)
	for i := range spans {
		span := cols.Eq(i).Find(valueSelector).First()
		if span.Length() == 0 {
			return model.Lesson{}, &ParseError{
				Reason: fmt.Sprintf("lesson column %d without value span", i),
			}
		}
		spans[i] = span
	}

	return model.Lesson{
		Time:      spans[0].Text(),
		Subject:   spans[1].Text(),
		Place:     spans[2].Text(),
		Teacher:   spans[3].Text(),
		Cancelled: spans[0].HasClass(cancelledClass),
	}, nil
}
