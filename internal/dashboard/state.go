// Package dashboard хранит состояние представления консоли для каждой сессии и
// компоненты, которые синхронизируют его с API заказов.
package dashboard

import (
	"time"

	"restaurant-admin/internal/models"
)

// Collection — одна загружаемая с сервера часть состояния.
type Collection int

const (
	CollectionOrders Collection = iota
	CollectionAllOrders
	CollectionMenu
	CollectionStaff
	CollectionFeedback

	numCollections
)

var collectionNames = [numCollections]string{"orders", "all-orders", "menu", "staff", "feedback"}

func (c Collection) String() string {
	if c < 0 || c >= numCollections {
		return "unknown"
	}
	return collectionNames[c]
}

func ParseCollection(s string) (Collection, bool) {
	for i, name := range collectionNames {
		if name == s {
			return Collection(i), true
		}
	}
	return 0, false
}

// Collections перечисляет коллекции в порядке загрузки.
func Collections() []Collection {
	return []Collection{CollectionOrders, CollectionAllOrders, CollectionMenu, CollectionStaff, CollectionFeedback}
}

type Section string

const (
	SectionDashboard  Section = "dashboard"
	SectionOrders     Section = "orders"
	SectionAnalytics  Section = "analytics"
	SectionMenu       Section = "menu"
	SectionStaff      Section = "staff"
	SectionCustomers  Section = "customers"
	SectionFeedback   Section = "feedback"
	SectionOperations Section = "operations"
)

var sections = []Section{
	SectionDashboard, SectionOrders, SectionAnalytics, SectionMenu,
	SectionStaff, SectionCustomers, SectionFeedback, SectionOperations,
}

func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

func ParseSection(s string) (Section, bool) {
	for _, sec := range sections {
		if string(sec) == s {
			return sec, true
		}
	}
	return "", false
}

// SliceMeta — учёт загрузок одной коллекции.
// Issued — последний выданный номер, Seq — последний применённый.
type SliceMeta struct {
	Issued    uint64    `json:"issued"`
	Seq       uint64    `json:"seq"`
	Loading   bool      `json:"loading"`
	Err       string    `json:"error,omitempty"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
}

// State — неизменяемый снимок. Его только заменяют через Reduce и никогда не правят.
type State struct {
	Orders    []models.Order    `json:"orders"`
	AllOrders []models.Order    `json:"all_orders"`
	Menu      []models.MenuItem `json:"menu"`
	Staff     []models.Staff    `json:"staff"`
	Feedback  []models.Feedback `json:"feedback"`

	Meta [numCollections]SliceMeta `json:"-"`

	Section  Section `json:"section"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`

	// Operations идут от новых к старым, не больше OperationLimit.
	Operations     []Operation `json:"operations"`
	OperationLimit int         `json:"-"`
}

func NewState(pageSize, operationLimit int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if operationLimit <= 0 {
		operationLimit = 50
	}
	return State{
		Section:        SectionDashboard,
		Page:           1,
		PageSize:       pageSize,
		OperationLimit: operationLimit,
	}
}

func (s State) MetaFor(c Collection) SliceMeta {
	if c < 0 || c >= numCollections {
		return SliceMeta{}
	}
	return s.Meta[c]
}

// Loading сообщает, ждёт ли какая-то коллекция загрузки с индикатором.
func (s State) Loading() bool {
	for _, m := range s.Meta {
		if m.Loading {
			return true
		}
	}
	return false
}

func (s State) Operation(id string) (Operation, bool) {
	for _, op := range s.Operations {
		if op.ID == id {
			return op, true
		}
	}
	return Operation{}, false
}

// Customers — имя и email каждой записи всех заказов в порядке ответа.
func (s State) Customers() []models.Customer {
	out := make([]models.Customer, 0, len(s.AllOrders))
	for _, o := range s.AllOrders {
		out = append(out, models.Customer{Name: o.Name, Email: o.UserEmail})
	}
	return out
}

func (s State) OnlineStaff() int {
	n := 0
	for _, st := range s.Staff {
		if st.Status {
			n++
		}
	}
	return n
}

// Pagination списка всех заказов для текущей страницы.
func (s State) Pagination() Page {
	return Paginate(len(s.AllOrders), s.PageSize, s.Page)
}

// Action — переход состояния, который обрабатывает Reduce.
type Action interface {
	isAction()
}

// FetchStarted отмечает запрос, выданный под номером Seq.
type FetchStarted struct {
	Collection  Collection
	Seq         uint64
	ShowLoading bool
}

// FetchSucceeded несёт полную замену одной коллекции. Orders служит
// обеим коллекциям заказов; иначе читается только поле, соответствующее Collection.
type FetchSucceeded struct {
	Collection Collection
	Seq        uint64
	At         time.Time

	Orders   []models.Order
	Menu     []models.MenuItem
	Staff    []models.Staff
	Feedback []models.Feedback
}

type FetchFailed struct {
	Collection Collection
	Seq        uint64
	Err        string
}

type SectionSelected struct {
	Section Section
}

type PageSelected struct {
	Page int
}

// OperationUpdated вставляет или заменяет операцию по ID.
type OperationUpdated struct {
	Operation Operation
}

func (FetchStarted) isAction()     {}
func (FetchSucceeded) isAction()   {}
func (FetchFailed) isAction()      {}
func (SectionSelected) isAction()  {}
func (PageSelected) isAction()     {}
func (OperationUpdated) isAction() {}

// Stale сообщает, проигнорирует ли Reduce результат под номером seq.
func (s State) Stale(c Collection, seq uint64) bool {
	return seq <= s.MetaFor(c).Seq
}

// Reduce возвращает состояние после применения a к s. Сам s не меняется.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case FetchStarted:
		if a.Collection < 0 || a.Collection >= numCollections {
			return s
		}
		m := s.Meta[a.Collection]
		if a.Seq > m.Issued {
			m.Issued = a.Seq
		}
		if a.ShowLoading {
			m.Loading = true
		}
		s.Meta[a.Collection] = m

	case FetchSucceeded:
		if a.Collection < 0 || a.Collection >= numCollections || s.Stale(a.Collection, a.Seq) {
			return s
		}
		switch a.Collection {
		case CollectionOrders:
			s.Orders = a.Orders
		case CollectionAllOrders:
			s.AllOrders = a.Orders
			s.Page = Paginate(len(s.AllOrders), s.PageSize, s.Page).Number
		case CollectionMenu:
			s.Menu = a.Menu
		case CollectionStaff:
			s.Staff = a.Staff
		case CollectionFeedback:
			s.Feedback = a.Feedback
		}
		m := s.Meta[a.Collection]
		m.Seq = a.Seq
		m.Err = ""
		m.FetchedAt = a.At
		if a.Seq >= m.Issued {
			m.Loading = false
		}
		s.Meta[a.Collection] = m

	case FetchFailed:
		if a.Collection < 0 || a.Collection >= numCollections || s.Stale(a.Collection, a.Seq) {
			return s
		}
		m := s.Meta[a.Collection]
		m.Seq = a.Seq
		m.Err = a.Err
		if a.Seq >= m.Issued {
			m.Loading = false
		}
		s.Meta[a.Collection] = m

	case SectionSelected:
		if _, ok := ParseSection(string(a.Section)); ok {
			s.Section = a.Section
		}

	case PageSelected:
		s.Page = Paginate(len(s.AllOrders), s.PageSize, a.Page).Number

	case OperationUpdated:
		ops := make([]Operation, 0, len(s.Operations)+1)
		replaced := false
		for _, op := range s.Operations {
			if op.ID == a.Operation.ID {
				op = a.Operation
				replaced = true
			}
			ops = append(ops, op)
		}
		if !replaced {
			ops = append([]Operation{a.Operation}, ops...)
		}
		if s.OperationLimit > 0 && len(ops) > s.OperationLimit {
			ops = ops[:s.OperationLimit]
		}
		s.Operations = ops
	}
	return s
}
