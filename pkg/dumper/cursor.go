package dumper

import (
	"context"
	"iter"

	"github.com/rs/zerolog"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

// CursorState - состояние курсора
type CursorState int

const (
	CursorUninitialized CursorState = iota
	CursorPositioned
	CursorExhausted
)

func (s CursorState) String() string {
	switch s {
	case CursorPositioned:
		return "positioned"
	case CursorExhausted:
		return "exhausted"
	}
	return "uninitialized"
}

// Querier - подключение, через которое курсор читает страницы
type Querier interface {
	Dialect
	Query(ctx context.Context, query string, params adapters.Bindings) ([]adapters.Row, error)
}

// CursorStats - счетчики курсора за все проходы
type CursorStats struct {
	Queries int // выполнено запросов страниц
	Rows    int // строк, на которые курсор вставал
}

// Cursor - однонаправленный постраничный итератор строк одной таблицы.
// Не потокобезопасен и не реентерабелен; повторный проход только через Rewind.
//
// Страница загружается синхронно, когда буфер исчерпан. Если загруженная ранее страница
// оказалась неполной, следующая не запрашивается. Когда число строк кратно размеру
// страницы, выполняется один лишний запрос, возвращающий пустой результат.
type Cursor struct {
	conn      Querier
	planner   *Planner
	table     TableConfig
	harvested *HarvestedValues
	size      int
	log       zerolog.Logger

	predicate *Predicate

	state     CursorState
	buffer    []adapters.Row
	pos       int
	page      int  // индекс следующей страницы (= число загруженных страниц)
	lastCount int  // строк в последней загруженной странице
	paged     bool // последняя страница получена запросом с LIMIT/OFFSET
	yielded   int  // строк выдано с момента Start

	stats CursorStats
}

// CursorOption настраивает курсор
type CursorOption func(*Cursor)

// WithLogger задает логгер для отладочных сообщений о запросах страниц
func WithLogger(logger zerolog.Logger) CursorOption {
	return func(c *Cursor) {
		c.log = logger
	}
}

// NewCursor создает курсор по таблице. harvested только читается
func NewCursor(conn Querier, table TableConfig, harvested *HarvestedValues, pageSize int, opts ...CursorOption) *Cursor {
	c := &Cursor{
		conn:      conn,
		planner:   NewPlanner(conn),
		table:     table,
		harvested: harvested,
		size:      pageSize,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start загружает первую страницу и встает на первую строку.
// Условие фильтров строится один раз при первом вызове, поэтому ошибки
// зависимых фильтров возвращаются до выполнения какого-либо запроса
func (c *Cursor) Start(ctx context.Context) error {
	if c.predicate == nil {
		predicate, err := BuildPredicate(c.table.Filters, c.harvested, c.table.Name, c.conn)
		if err != nil {
			return err
		}
		c.predicate = &predicate
	}

	c.page = 0
	c.lastCount = 0
	c.yielded = 0
	c.buffer = nil
	c.pos = 0

	if err := c.loadPage(ctx); err != nil {
		c.exhaust()
		return err
	}

	if len(c.buffer) == 0 || c.limitReached() {
		c.state = CursorExhausted
		return nil
	}

	c.state = CursorPositioned
	c.yielded++
	c.stats.Rows++
	return nil
}

// Rewind начинает выгрузку заново с первой страницы
func (c *Cursor) Rewind(ctx context.Context) error {
	return c.Start(ctx)
}

// Advance переходит к следующей строке, при необходимости загружая следующую страницу
func (c *Cursor) Advance(ctx context.Context) error {
	switch c.state {
	case CursorUninitialized:
		return ErrCursorNotStarted
	case CursorExhausted:
		return nil
	}

	if c.limitReached() {
		c.exhaust()
		return nil
	}

	c.pos++
	if c.pos < len(c.buffer) {
		c.yielded++
		c.stats.Rows++
		return nil
	}

	// Собственный запрос выполняется одной страницей
	if !c.paged {
		c.exhaust()
		return nil
	}

	// Неполная страница - строк больше нет
	if c.page != 0 && c.lastCount < c.size {
		c.exhaust()
		return nil
	}

	if err := c.loadPage(ctx); err != nil {
		c.exhaust()
		return err
	}

	if len(c.buffer) == 0 {
		c.exhaust()
		return nil
	}

	c.yielded++
	c.stats.Rows++
	return nil
}

// Current возвращает текущую строку
func (c *Cursor) Current() (adapters.Row, error) {
	switch c.state {
	case CursorUninitialized:
		return adapters.Row{}, ErrCursorNotStarted
	case CursorExhausted:
		return adapters.Row{}, ErrCursorExhausted
	}
	return c.buffer[c.pos], nil
}

// Key возвращает позицию текущей строки в буфере страницы
func (c *Cursor) Key() (int, error) {
	switch c.state {
	case CursorUninitialized:
		return 0, ErrCursorNotStarted
	case CursorExhausted:
		return 0, ErrCursorExhausted
	}
	return c.pos, nil
}

// Valid - курсор стоит на строке
func (c *Cursor) Valid() bool {
	return c.state == CursorPositioned
}

// AtEnd - строк больше нет
func (c *Cursor) AtEnd() bool {
	return c.state == CursorExhausted
}

// State возвращает состояние курсора
func (c *Cursor) State() CursorState {
	return c.state
}

// Reset сбрасывает позицию; курсор нужно запустить заново
func (c *Cursor) Reset() {
	c.state = CursorUninitialized
	c.buffer = nil
	c.pos = 0
	c.page = 0
	c.lastCount = 0
	c.yielded = 0
}

// Stats возвращает счетчики курсора
func (c *Cursor) Stats() CursorStats {
	return c.stats
}

// All возвращает последовательность строк от первой страницы.
// Ошибка выдается последним элементом
func (c *Cursor) All(ctx context.Context) iter.Seq2[adapters.Row, error] {
	return func(yield func(adapters.Row, error) bool) {
		if err := c.Start(ctx); err != nil {
			yield(adapters.Row{}, err)
			return
		}
		for c.Valid() {
			row, _ := c.Current()
			if !yield(row, nil) {
				return
			}
			if err := c.Advance(ctx); err != nil {
				yield(adapters.Row{}, err)
				return
			}
		}
	}
}

func (c *Cursor) exhaust() {
	c.state = CursorExhausted
	c.buffer = nil
	c.pos = 0
}

func (c *Cursor) limitReached() bool {
	return c.table.Limit > 0 && c.yielded >= c.table.Limit
}

// loadPage выполняет запрос страницы c.page и заменяет буфер
func (c *Cursor) loadPage(ctx context.Context) error {
	q, err := c.planner.BuildPageQuery(c.table, *c.predicate, Page{Index: c.page, Size: c.size})
	if err != nil {
		return err
	}

	c.log.Debug().
		Str("table", c.table.Name).
		Int("page", c.page).
		Int("size", c.size).
		Int("params", len(q.Bindings)).
		Str("query", q.SQL).
		Msg("loading page")

	rows, err := c.conn.Query(ctx, q.SQL, q.Bindings)
	c.stats.Queries++
	if err != nil {
		return &QueryExecutionError{Table: c.table.Name, Query: q.SQL, Err: err}
	}

	c.buffer = rows
	c.pos = 0
	c.lastCount = len(rows)
	c.paged = q.Paged
	c.page++
	return nil
}
