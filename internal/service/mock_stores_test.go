package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/demodev-lab/demo-funnel-sub000/internal/model"

	"gorm.io/gorm"
)

// Map-backed fakes for the store interfaces. IDs are assigned
// sequentially on Create.

type mockChallengeStore struct {
	items  map[uint]*model.Challenge
	nextID uint
}

func newMockChallengeStore() *mockChallengeStore {
	return &mockChallengeStore{items: make(map[uint]*model.Challenge), nextID: 1}
}

func (m *mockChallengeStore) Create(c *model.Challenge) error {
	c.ID = m.nextID
	m.nextID++
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *mockChallengeStore) FindByID(id uint) (*model.Challenge, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockChallengeStore) Update(c *model.Challenge) error {
	if _, ok := m.items[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *mockChallengeStore) Delete(id uint) error {
	delete(m.items, id)
	return nil
}

func (m *mockChallengeStore) List(offset, limit int) ([]model.Challenge, int64, error) {
	ids := make([]uint, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []model.Challenge{}
	for i, id := range ids {
		if i < offset || len(out) >= limit {
			continue
		}
		out = append(out, *m.items[id])
	}
	return out, int64(len(m.items)), nil
}

func (m *mockChallengeStore) AddLectureCount(id uint, delta int) error {
	c, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.LectureCount += delta
	return nil
}

type mockLectureStore struct {
	items  map[uint]*model.Lecture
	nextID uint
}

func newMockLectureStore() *mockLectureStore {
	return &mockLectureStore{items: make(map[uint]*model.Lecture), nextID: 1}
}

func (m *mockLectureStore) Create(l *model.Lecture) error {
	l.ID = m.nextID
	m.nextID++
	cp := *l
	m.items[l.ID] = &cp
	return nil
}

func (m *mockLectureStore) FindByID(id uint) (*model.Lecture, error) {
	l, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockLectureStore) Update(l *model.Lecture) error {
	if _, ok := m.items[l.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *l
	m.items[l.ID] = &cp
	return nil
}

func (m *mockLectureStore) Delete(id uint) error {
	delete(m.items, id)
	return nil
}

func (m *mockLectureStore) List(offset, limit int) ([]model.Lecture, int64, error) {
	out := []model.Lecture{}
	for _, l := range m.items {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// mockSlotStore tracks which lecture IDs carry an assignment so
// FindAssignmentBacked can filter, and can be told to fail UpdateTimes
// on a specific slot.
type mockSlotStore struct {
	items           map[uint]*model.ScheduleSlot
	nextID          uint
	assignedLecture map[uint]bool
	failUpdateSlot  uint
	updateErr       error
}

func newMockSlotStore() *mockSlotStore {
	return &mockSlotStore{
		items:           make(map[uint]*model.ScheduleSlot),
		nextID:          1,
		assignedLecture: make(map[uint]bool),
	}
}

func (m *mockSlotStore) Create(s *model.ScheduleSlot) error {
	s.ID = m.nextID
	m.nextID++
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockSlotStore) FindByID(id uint) (*model.ScheduleSlot, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSlotStore) byChallenge(challengeID uint) []model.ScheduleSlot {
	out := []model.ScheduleSlot{}
	for _, s := range m.items {
		if s.ChallengeID == challengeID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *mockSlotStore) FindByChallenge(challengeID uint) ([]model.ScheduleSlot, error) {
	return m.byChallenge(challengeID), nil
}

func (m *mockSlotStore) FindAssignmentBacked(challengeID uint) ([]model.ScheduleSlot, error) {
	all := m.byChallenge(challengeID)
	out := []model.ScheduleSlot{}
	for _, s := range all {
		if m.assignedLecture[s.LectureID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSlotStore) UpdateTimes(id uint, openAt, dueAt time.Time) error {
	if m.failUpdateSlot == id {
		if m.updateErr != nil {
			return m.updateErr
		}
		return errors.New("update failed")
	}
	s, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.OpenAt = openAt
	s.DueAt = dueAt
	return nil
}

func (m *mockSlotStore) Delete(id uint) error {
	delete(m.items, id)
	return nil
}

type mockEnrollmentStore struct {
	items  map[uint]*model.Enrollment
	users  map[uint]*model.User
	nextID uint
}

func newMockEnrollmentStore() *mockEnrollmentStore {
	return &mockEnrollmentStore{
		items:  make(map[uint]*model.Enrollment),
		users:  make(map[uint]*model.User),
		nextID: 1,
	}
}

func (m *mockEnrollmentStore) enroll(userID, challengeID uint, name, email string) {
	m.users[userID] = &model.User{
		BaseModel: model.BaseModel{ID: userID},
		Name:      name,
		Email:     email,
		Role:      model.Learner,
	}
	e := &model.Enrollment{UserID: userID, ChallengeID: challengeID}
	e.ID = m.nextID
	m.nextID++
	m.items[e.ID] = e
}

func (m *mockEnrollmentStore) Create(e *model.Enrollment) error {
	e.ID = m.nextID
	m.nextID++
	cp := *e
	m.items[e.ID] = &cp
	return nil
}

func (m *mockEnrollmentStore) FindByUserAndChallenge(userID, challengeID uint) (*model.Enrollment, error) {
	for _, e := range m.items {
		if e.UserID == userID && e.ChallengeID == challengeID {
			cp := *e
			if u, ok := m.users[e.UserID]; ok {
				uc := *u
				cp.User = &uc
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentStore) learnerIDs(challengeID uint, userIDs []uint) []uint {
	var filter map[uint]bool
	if userIDs != nil {
		filter = make(map[uint]bool, len(userIDs))
		for _, id := range userIDs {
			filter[id] = true
		}
	}
	ids := []uint{}
	for _, e := range m.items {
		if e.ChallengeID != challengeID {
			continue
		}
		if filter != nil && !filter[e.UserID] {
			continue
		}
		ids = append(ids, e.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *mockEnrollmentStore) CountLearners(challengeID uint, userIDs []uint) (int64, error) {
	return int64(len(m.learnerIDs(challengeID, userIDs))), nil
}

func (m *mockEnrollmentStore) ListLearners(challengeID uint, userIDs []uint, offset, limit int) ([]model.User, error) {
	ids := m.learnerIDs(challengeID, userIDs)
	out := []model.User{}
	for i, id := range ids {
		if i < offset || len(out) >= limit {
			continue
		}
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		} else {
			out = append(out, model.User{BaseModel: model.BaseModel{ID: id}})
		}
	}
	return out, nil
}

func (m *mockEnrollmentStore) SetRefundRequested(id uint) error {
	e, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.RefundRequested = true
	return nil
}

func (m *mockEnrollmentStore) ListRefundRequested(challengeID uint) ([]model.Enrollment, error) {
	out := []model.Enrollment{}
	for _, e := range m.items {
		if e.ChallengeID == challengeID && e.RefundRequested {
			cp := *e
			if u, ok := m.users[e.UserID]; ok {
				uc := *u
				cp.User = &uc
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type mockAssignmentStore struct {
	items map[uint]*model.Assignment
}

func newMockAssignmentStore() *mockAssignmentStore {
	return &mockAssignmentStore{items: make(map[uint]*model.Assignment)}
}

func (m *mockAssignmentStore) Upsert(a *model.Assignment) error {
	if existing, ok := m.items[a.LectureID]; ok {
		a.ID = existing.ID
	} else {
		a.ID = uint(len(m.items) + 1)
	}
	cp := *a
	m.items[a.LectureID] = &cp
	return nil
}

func (m *mockAssignmentStore) FindByLecture(lectureID uint) (*model.Assignment, error) {
	a, ok := m.items[lectureID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAssignmentStore) DeleteByLecture(lectureID uint) error {
	if _, ok := m.items[lectureID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, lectureID)
	return nil
}

type mockSubmissionStore struct {
	items  map[uint]*model.Submission
	nextID uint
}

func newMockSubmissionStore() *mockSubmissionStore {
	return &mockSubmissionStore{items: make(map[uint]*model.Submission), nextID: 1}
}

func (m *mockSubmissionStore) submitted(userID, slotID uint, at time.Time) *model.Submission {
	s := &model.Submission{
		UserID:      userID,
		SlotID:      slotID,
		SubmittedAt: at,
		IsSubmit:    true,
		Link:        "https://example.com/work",
	}
	m.Create(s)
	return s
}

func (m *mockSubmissionStore) Create(s *model.Submission) error {
	s.ID = m.nextID
	m.nextID++
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockSubmissionStore) FindByID(id uint) (*model.Submission, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSubmissionStore) Update(s *model.Submission) error {
	if _, ok := m.items[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockSubmissionStore) Delete(id uint) error {
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockSubmissionStore) forUserAndSlot(userID, slotID uint) []model.Submission {
	out := []model.Submission{}
	for _, s := range m.items {
		if s.UserID == userID && s.SlotID == slotID && s.IsSubmit {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *mockSubmissionStore) FindLatestByUserAndSlot(userID, slotID uint) (*model.Submission, error) {
	subs := m.forUserAndSlot(userID, slotID)
	if len(subs) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	latest := subs[len(subs)-1]
	return &latest, nil
}

func (m *mockSubmissionStore) ListSubmittedByUserAndSlot(userID, slotID uint) ([]model.Submission, error) {
	return m.forUserAndSlot(userID, slotID), nil
}

func (m *mockSubmissionStore) SubmittedUserIDs(slotID uint) ([]uint, error) {
	set := make(map[uint]bool)
	for _, s := range m.items {
		if s.SlotID == slotID && s.IsSubmit {
			set[s.UserID] = true
		}
	}
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *mockSubmissionStore) CountSubmittedUsers(slotID uint) (int64, error) {
	ids, _ := m.SubmittedUserIDs(slotID)
	return int64(len(ids)), nil
}

func (m *mockSubmissionStore) HasSubmitted(userID, slotID uint) (bool, error) {
	return len(m.forUserAndSlot(userID, slotID)) > 0, nil
}

type mockUserStore struct {
	items  map[uint]*model.User
	nextID uint
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{items: make(map[uint]*model.User), nextID: 1}
}

func (m *mockUserStore) Create(u *model.User) error {
	u.ID = m.nextID
	m.nextID++
	cp := *u
	m.items[u.ID] = &cp
	return nil
}

func (m *mockUserStore) FindByID(id uint) (*model.User, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserStore) FindByEmail(email string) (*model.User, error) {
	for _, u := range m.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeClock is a settable authoritative time source.
type fakeClock struct {
	now time.Time
	err error
}

func (c *fakeClock) Now(ctx context.Context) (time.Time, error) {
	if c.err != nil {
		return time.Time{}, c.err
	}
	return c.now, nil
}

// fakeImageStore records uploads and removals.
type fakeImageStore struct {
	uploaded  []string
	removed   []string
	uploadErr error
	removeErr error
}

func (f *fakeImageStore) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	url := "https://cdn.example.com/" + filename
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeImageStore) RemoveByURL(ctx context.Context, url string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, url)
	return nil
}
