package scheduling_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/scheduling"
)

// 内存版的存储假件，实现 ShiftStore、TemplateStore 和 TimeEntryStore，
// 用于在不依赖数据库的情况下对核心组件做单元测试
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	nextShiftID    int64
	shifts         map[int64]*domain.Shift
	nextTemplateID int64
	templates      map[int64]*domain.ShiftTemplate
	nextEntryID    int64
	entries        map[int64]*domain.TimeEntry
}

func newMemStore() *memStore {
	return &memStore{
		shifts:    make(map[int64]*domain.Shift),
		templates: make(map[int64]*domain.ShiftTemplate),
		entries:   make(map[int64]*domain.TimeEntry),
	}
}

func (s *memStore) GetShiftByID(ctx context.Context, id int64) (*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, ok := s.shifts[id]
	if !ok {
		return nil, scheduling.ErrRecordNotFound
	}
	cp := *shift
	return &cp, nil
}

func (s *memStore) GetOwnerShiftsInWindow(ctx context.Context, owner string, from, to time.Time) ([]*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []*domain.Shift{}
	for _, shift := range s.shifts {
		if shift.Owner != owner || shift.Status == domain.ShiftStatusCancelled {
			continue
		}
		if shift.Overlaps(from, to) {
			cp := *shift
			result = append(result, &cp)
		}
	}
	sortShifts(result)
	return result, nil
}

func (s *memStore) CreateShift(ctx context.Context, shift *domain.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextShiftID++
	shift.ID = s.nextShiftID
	cp := *shift
	s.shifts[shift.ID] = &cp
	return nil
}

func (s *memStore) UpdateShift(ctx context.Context, shift *domain.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shifts[shift.ID]; !ok {
		return scheduling.ErrRecordNotFound
	}
	cp := *shift
	s.shifts[shift.ID] = &cp
	return nil
}

func (s *memStore) UpdateShiftsStatus(ctx context.Context, ids []int64, from, to domain.ShiftStatus) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, id := range ids {
		shift, ok := s.shifts[id]
		if !ok || shift.Status != from {
			continue
		}
		shift.Status = to
		count++
	}
	return count, nil
}

func (s *memStore) ListShifts(ctx context.Context, filter scheduling.ShiftFilter) ([]*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []*domain.Shift{}
	for _, shift := range s.shifts {
		if filter.Owner != "" && shift.Owner != filter.Owner {
			continue
		}
		if filter.Status != "" && shift.Status != filter.Status {
			continue
		}
		if filter.AreaID != nil && (shift.AreaID == nil || *shift.AreaID != *filter.AreaID) {
			continue
		}
		if !filter.From.IsZero() && !shift.Overlaps(filter.From, filter.To) {
			continue
		}
		cp := *shift
		result = append(result, &cp)
	}
	sortShifts(result)
	return result, nil
}

func (s *memStore) InOwnerTx(ctx context.Context, owner string, fn func(tx scheduling.ShiftStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

func (s *memStore) GetShiftTemplateByID(ctx context.Context, id int64) (*domain.ShiftTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmpl, ok := s.templates[id]
	if !ok {
		return nil, scheduling.ErrRecordNotFound
	}
	cp := *tmpl
	return &cp, nil
}

func (s *memStore) putTemplate(tmpl *domain.ShiftTemplate) *domain.ShiftTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTemplateID++
	tmpl.ID = s.nextTemplateID
	cp := *tmpl
	s.templates[tmpl.ID] = &cp
	return tmpl
}

func (s *memStore) GetTimeEntryByID(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, scheduling.ErrRecordNotFound
	}
	cp := *entry
	return &cp, nil
}

func (s *memStore) GetActiveTimeEntryByOwner(ctx context.Context, owner string) (*domain.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.Owner == owner && entry.Status == domain.TimeEntryStatusActive {
			cp := *entry
			return &cp, nil
		}
	}
	return nil, scheduling.ErrRecordNotFound
}

func (s *memStore) CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEntryID++
	entry.ID = s.nextEntryID
	cp := *entry
	s.entries[entry.ID] = &cp
	return nil
}

func (s *memStore) UpdateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.ID]; !ok {
		return scheduling.ErrRecordNotFound
	}
	cp := *entry
	s.entries[entry.ID] = &cp
	return nil
}

func (s *memStore) DeleteTimeEntry(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return scheduling.ErrRecordNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *memStore) ListTimeEntries(ctx context.Context, filter scheduling.TimeEntryFilter) ([]*domain.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []*domain.TimeEntry{}
	for _, entry := range s.entries {
		if filter.Owner != "" && entry.Owner != filter.Owner {
			continue
		}
		if !filter.From.IsZero() && (entry.ClockIn.Before(filter.From) || !entry.ClockIn.Before(filter.To)) {
			continue
		}
		if len(filter.ShiftIDs) > 0 {
			if entry.ShiftID == nil || !containsID(filter.ShiftIDs, *entry.ShiftID) {
				continue
			}
		}
		cp := *entry
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ClockIn.Equal(result[j].ClockIn) {
			return result[i].ID < result[j].ID
		}
		return result[i].ClockIn.Before(result[j].ClockIn)
	})
	return result, nil
}

func sortShifts(shifts []*domain.Shift) {
	sort.Slice(shifts, func(i, j int) bool {
		if shifts[i].StartTime.Equal(shifts[j].StartTime) {
			return shifts[i].ID < shifts[j].ID
		}
		return shifts[i].StartTime.Before(shifts[j].StartTime)
	})
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
