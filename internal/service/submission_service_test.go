package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/demodev-lab/demo-funnel-sub000/internal/model"
	"github.com/demodev-lab/demo-funnel-sub000/internal/util"

	"go.uber.org/zap"
)

func newTestSubmissionService(slots *mockSlotStore, subs *mockSubmissionStore, clock *fakeClock, storage *fakeImageStore) *SubmissionService {
	return NewSubmissionService(slots, subs, clock, storage, NewRateCache(nil), zap.NewNop())
}

func makeSlot(t *testing.T, slots *mockSlotStore, dueAt time.Time) *model.ScheduleSlot {
	t.Helper()
	slot := &model.ScheduleSlot{
		ChallengeID: 1,
		LectureID:   1,
		Sequence:    1,
		OpenAt:      dueAt.AddDate(0, 0, -1),
		DueAt:       dueAt,
	}
	if err := slots.Create(slot); err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return slot
}

func TestSubmitWithinDeadline(t *testing.T) {
	slots := newMockSlotStore()
	subs := newMockSubmissionStore()
	dueAt := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	slot := makeSlot(t, slots, dueAt)

	clock := &fakeClock{now: dueAt.Add(-time.Minute)}
	svc := newTestSubmissionService(slots, subs, clock, &fakeImageStore{})

	got, err := svc.Submit(context.Background(), 7, slot.ID, SubmitInput{Link: "https://example.com/work"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !got.IsSubmit {
		t.Error("IsSubmit = false, want true")
	}
	if !got.SubmittedAt.Equal(clock.now) {
		t.Errorf("SubmittedAt = %v, want clock time %v", got.SubmittedAt, clock.now)
	}
}

func TestSubmitAtExactDeadline(t *testing.T) {
	slots := newMockSlotStore()
	subs := newMockSubmissionStore()
	dueAt := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	slot := makeSlot(t, slots, dueAt)

	// now == due_at is still inside the window.
	clock := &fakeClock{now: dueAt}
	svc := newTestSubmissionService(slots, subs, clock, &fakeImageStore{})

	if _, err := svc.Submit(context.Background(), 7, slot.ID, SubmitInput{Link: "https://example.com/work"}); err != nil {
		t.Fatalf("Submit at due_at: %v", err)
	}
}

func TestSubmitAfterDeadline(t *testing.T) {
	slots := newMockSlotStore()
	subs := newMockSubmissionStore()
	dueAt := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	slot := makeSlot(t, slots, dueAt)

	clock := &fakeClock{now: dueAt.Add(time.Minute)}
	svc := newTestSubmissionService(slots, subs, clock, &fakeImageStore{})

	_, err := svc.Submit(context.Background(), 7, slot.ID, SubmitInput{Link: "https://example.com/work"})
	if !errors.Is(err, util.ErrDeadlineExceeded) {
		t.Fatalf("err = %v, want ErrDeadlineExceeded", err)
	}
	if len(subs.items) != 0 {
		t.Error("submission persisted despite deadline rejection")
	}
}

func TestSubmitRequiresLink(t *testing.T) {
	svc := newTestSubmissionService(newMockSlotStore(), newMockSubmissionStore(), &fakeClock{now: time.Now()}, &fakeImageStore{})

	if _, err := svc.Submit(context.Background(), 7, 1, SubmitInput{Comment: "no link"}); !errors.Is(err, util.ErrLinkRequired) {
		t.Errorf("err = %v, want ErrLinkRequired", err)
	}
}

func TestSubmitClockFailureBlocksWrite(t *testing.T) {
	slots := newMockSlotStore()
	subs := newMockSubmissionStore()
	slot := makeSlot(t, slots, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))

	clock := &fakeClock{err: util.ErrClockUnavailable}
	svc := newTestSubmissionService(slots, subs, clock, &fakeImageStore{})

	_, err := svc.Submit(context.Background(), 7, slot.ID, SubmitInput{Link: "https://example.com/work"})
	if !errors.Is(err, util.ErrClockUnavailable) {
		t.Fatalf("err = %v, want ErrClockUnavailable", err)
	}
	if len(subs.items) != 0 {
		t.Error("submission persisted without an authoritative timestamp")
	}
}

func TestSubmitImageUploadFailureBlocksWrite(t *testing.T) {
	slots := newMockSlotStore()
	subs := newMockSubmissionStore()
	dueAt := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	slot := makeSlot(t, slots, dueAt)

	storage := &fakeImageStore{uploadErr: errors.New("bucket down")}
	svc := newTestSubmissionService(slots, subs, &fakeClock{now: dueAt.Add(-time.Hour)}, storage)

	_, err := svc.Submit(context.Background(), 7, slot.ID, SubmitInput{
		Link:  "https://example.com/work",
		Image: &ImageUpload{Reader: strings.NewReader("img"), Size: 3, ContentType: "image/png", Filename: "shot.png"},
	})
	if !errors.Is(err, util.ErrStorageFailure) {
		t.Fatalf("err = %v, want ErrStorageFailure", err)
	}
	if len(subs.items) != 0 {
		t.Error("submission persisted despite storage failure")
	}
}

func TestAmendReplacesImageAndReleasesOld(t *testing.T) {
	slots := newMockSlotStore()
	subs := newMockSubmissionStore()
	dueAt := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	slot := makeSlot(t, slots, dueAt)

	storage := &fakeImageStore{}
	svc := newTestSubmissionService(slots, subs, &fakeClock{now: dueAt.Add(-time.Hour)}, storage)

	first, err := svc.Submit(context.Background(), 7, slot.ID, SubmitInput{
		Link:  "https://example.com/v1",
		Image: &ImageUpload{Reader: strings.NewReader("a"), Size: 1, ContentType: "image/png", Filename: "a.png"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	oldURL := first.ImageURL

	amended, err := svc.Amend(context.Background(), 7, first.ID, AmendInput{
		Link:  "https://example.com/v2",
		Image: &ImageUpload{Reader: strings.NewReader("b"), Size: 1, ContentType: "image/png", Filename: "b.png"},
	})
	if err != nil {
		t.Fatalf("Amend: %v", err)
	}
	if amended.ImageURL == oldURL {
		t.Error("image URL unchanged after replacement")
	}
	if len(storage.removed) != 1 || storage.removed[0] != oldURL {
		t.Errorf("removed = %v, want [%s]", storage.removed, oldURL)
	}
	if amended.Link != "https://example.com/v2" {
		t.Errorf("Link = %s, want amended link", amended.Link)
	}
}

func TestAmendImageReleaseFailureIsSwallowed(t *testing.T) {
	slots := newMockSlotStore()
	subs := newMockSubmissionStore()
	dueAt := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	slot := makeSlot(t, slots, dueAt)

	storage := &fakeImageStore{}
	svc := newTestSubmissionService(slots, subs, &fakeClock{now: dueAt.Add(-time.Hour)}, storage)

	first, err := svc.Submit(context.Background(), 7, slot.ID, SubmitInput{
		Link:  "https://example.com/v1",
		Image: &ImageUpload{Reader: strings.NewReader("a"), Size: 1, ContentType: "image/png", Filename: "a.png"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Cleanup of the old image failing must not block the edit.
	storage.removeErr = errors.New("object locked")
	amended, err := svc.Amend(context.Background(), 7, first.ID, AmendInput{Link: "https://example.com/v2", RemoveImage: true})
	if err != nil {
		t.Fatalf("Amend: %v", err)
	}
	if amended.ImageURL != "" {
		t.Errorf("ImageURL = %s, want cleared", amended.ImageURL)
	}
}

func TestAmendAfterDeadline(t *testing.T) {
	slots := newMockSlotStore()
	subs := newMockSubmissionStore()
	dueAt := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	slot := makeSlot(t, slots, dueAt)

	clock := &fakeClock{now: dueAt.Add(-time.Hour)}
	svc := newTestSubmissionService(slots, subs, clock, &fakeImageStore{})

	first, err := svc.Submit(context.Background(), 7, slot.ID, SubmitInput{Link: "https://example.com/v1"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	clock.now = dueAt.Add(time.Minute)
	if _, err := svc.Amend(context.Background(), 7, first.ID, AmendInput{Link: "https://example.com/v2"}); !errors.Is(err, util.ErrDeadlineExceeded) {
		t.Fatalf("err = %v, want ErrDeadlineExceeded", err)
	}
}

func TestAmendRejectsForeignSubmission(t *testing.T) {
	slots := newMockSlotStore()
	subs := newMockSubmissionStore()
	dueAt := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	slot := makeSlot(t, slots, dueAt)

	svc := newTestSubmissionService(slots, subs, &fakeClock{now: dueAt.Add(-time.Hour)}, &fakeImageStore{})

	first, err := svc.Submit(context.Background(), 7, slot.ID, SubmitInput{Link: "https://example.com/v1"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := svc.Amend(context.Background(), 8, first.ID, AmendInput{Link: "https://example.com/theft"}); !errors.Is(err, util.ErrSubmissionNotFound) {
		t.Errorf("err = %v, want ErrSubmissionNotFound", err)
	}
}

func TestGetForUserAbsentReturnsNil(t *testing.T) {
	svc := newTestSubmissionService(newMockSlotStore(), newMockSubmissionStore(), &fakeClock{now: time.Now()}, &fakeImageStore{})

	got, err := svc.GetForUser(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("GetForUser: %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil", got)
	}
}

func TestGetForUserReadableAfterDeadline(t *testing.T) {
	slots := newMockSlotStore()
	subs := newMockSubmissionStore()
	dueAt := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	slot := makeSlot(t, slots, dueAt)
	subs.submitted(7, slot.ID, dueAt.Add(-time.Hour))

	clock := &fakeClock{now: dueAt.AddDate(0, 0, 10)}
	svc := newTestSubmissionService(slots, subs, clock, &fakeImageStore{})

	got, err := svc.GetForUser(context.Background(), 7, slot.ID)
	if err != nil {
		t.Fatalf("GetForUser: %v", err)
	}
	if got == nil {
		t.Fatal("got = nil, want the stored submission")
	}
}

func TestDeleteOwnershipAndImageRelease(t *testing.T) {
	slots := newMockSlotStore()
	subs := newMockSubmissionStore()
	dueAt := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	slot := makeSlot(t, slots, dueAt)

	storage := &fakeImageStore{}
	svc := newTestSubmissionService(slots, subs, &fakeClock{now: dueAt.Add(-time.Hour)}, storage)

	sub, err := svc.Submit(context.Background(), 7, slot.ID, SubmitInput{
		Link:  "https://example.com/work",
		Image: &ImageUpload{Reader: strings.NewReader("a"), Size: 1, ContentType: "image/png", Filename: "a.png"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Another learner cannot delete it.
	if err := svc.Delete(context.Background(), 8, sub.ID, false); !errors.Is(err, util.ErrSubmissionNotFound) {
		t.Errorf("foreign delete: err = %v, want ErrSubmissionNotFound", err)
	}

	// An admin can.
	if err := svc.Delete(context.Background(), 99, sub.ID, true); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if len(subs.items) != 0 {
		t.Error("submission still present after delete")
	}
	if len(storage.removed) != 1 {
		t.Errorf("removed %d images, want 1", len(storage.removed))
	}
}
