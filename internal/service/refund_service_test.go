package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/demodev-lab/demo-funnel-sub000/internal/util"

	"go.uber.org/zap"
)

func newTestRefundService(slots *mockSlotStore, enrollments *mockEnrollmentStore, subs *mockSubmissionStore) *RefundService {
	return NewRefundService(slots, enrollments, subs, zap.NewNop())
}

func TestEvaluateAllSubmitted(t *testing.T) {
	slots := newMockSlotStore()
	enrollments := newMockEnrollmentStore()
	subs := newMockSubmissionStore()
	svc := newTestRefundService(slots, enrollments, subs)

	created := seedChallenge(t, slots, 1, 2, 3)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	enrollments.enroll(7, 1, "Learner", "learner@example.com")

	for _, slot := range created {
		subs.submitted(7, slot.ID, at)
	}

	got, err := svc.Evaluate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !got.AllSubmitted {
		t.Error("AllSubmitted = false, want true")
	}
	if got.RefundRequested {
		t.Error("RefundRequested = true before any request")
	}
}

func TestEvaluateMissingOneSlot(t *testing.T) {
	slots := newMockSlotStore()
	enrollments := newMockEnrollmentStore()
	subs := newMockSubmissionStore()
	svc := newTestRefundService(slots, enrollments, subs)

	created := seedChallenge(t, slots, 1, 2, 3)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	enrollments.enroll(7, 1, "Learner", "learner@example.com")

	subs.submitted(7, created[0].ID, at)
	subs.submitted(7, created[2].ID, at)

	got, err := svc.Evaluate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.AllSubmitted {
		t.Error("AllSubmitted = true with an unsubmitted slot")
	}
}

func TestEvaluateNoAssignmentSlots(t *testing.T) {
	slots := newMockSlotStore()
	enrollments := newMockEnrollmentStore()
	subs := newMockSubmissionStore()
	svc := newTestRefundService(slots, enrollments, subs)

	enrollments.enroll(7, 1, "Learner", "learner@example.com")

	got, err := svc.Evaluate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.AllSubmitted {
		t.Error("AllSubmitted = true for a challenge with no assignment-bearing slots")
	}
}

func TestEvaluateNotEnrolled(t *testing.T) {
	svc := newTestRefundService(newMockSlotStore(), newMockEnrollmentStore(), newMockSubmissionStore())

	if _, err := svc.Evaluate(context.Background(), 7, 1); !errors.Is(err, util.ErrEnrollmentNotFound) {
		t.Errorf("err = %v, want ErrEnrollmentNotFound", err)
	}
}

func TestRequestRefundIdempotent(t *testing.T) {
	slots := newMockSlotStore()
	enrollments := newMockEnrollmentStore()
	subs := newMockSubmissionStore()
	svc := newTestRefundService(slots, enrollments, subs)

	enrollments.enroll(7, 1, "Learner", "learner@example.com")

	if err := svc.RequestRefund(context.Background(), 7, 1); err != nil {
		t.Fatalf("first request: %v", err)
	}
	enrollment, _ := enrollments.FindByUserAndChallenge(7, 1)
	if !enrollment.RefundRequested {
		t.Fatal("RefundRequested not set after request")
	}

	// The flag is monotonic; a second request is a silent no-op.
	if err := svc.RequestRefund(context.Background(), 7, 1); err != nil {
		t.Fatalf("second request: %v", err)
	}
	enrollment, _ = enrollments.FindByUserAndChallenge(7, 1)
	if !enrollment.RefundRequested {
		t.Error("RefundRequested reverted by repeat request")
	}
}

func TestRequestRefundIgnoresCompletionState(t *testing.T) {
	slots := newMockSlotStore()
	enrollments := newMockEnrollmentStore()
	subs := newMockSubmissionStore()
	svc := newTestRefundService(slots, enrollments, subs)

	// One assignment slot, nothing submitted: the request still lands,
	// eligibility is advisory.
	seedChallenge(t, slots, 1)
	enrollments.enroll(7, 1, "Learner", "learner@example.com")

	if err := svc.RequestRefund(context.Background(), 7, 1); err != nil {
		t.Fatalf("RequestRefund: %v", err)
	}

	got, err := svc.Evaluate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.AllSubmitted {
		t.Error("AllSubmitted = true, want false")
	}
	if !got.RefundRequested {
		t.Error("RefundRequested = false after request")
	}
}

func TestListRequests(t *testing.T) {
	slots := newMockSlotStore()
	enrollments := newMockEnrollmentStore()
	subs := newMockSubmissionStore()
	svc := newTestRefundService(slots, enrollments, subs)

	created := seedChallenge(t, slots, 1)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	enrollments.enroll(1, 1, "Complete", "complete@example.com")
	enrollments.enroll(2, 1, "Partial", "partial@example.com")
	enrollments.enroll(3, 1, "Silent", "silent@example.com")
	subs.submitted(1, created[0].ID, at)

	if err := svc.RequestRefund(context.Background(), 1, 1); err != nil {
		t.Fatalf("RequestRefund: %v", err)
	}
	if err := svc.RequestRefund(context.Background(), 2, 1); err != nil {
		t.Fatalf("RequestRefund: %v", err)
	}

	rows, err := svc.ListRequests(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].UserID != 1 || !rows[0].AllSubmitted {
		t.Errorf("row 0 = %+v, want user 1 all-submitted", rows[0])
	}
	if rows[1].UserID != 2 || rows[1].AllSubmitted {
		t.Errorf("row 1 = %+v, want user 2 not all-submitted", rows[1])
	}
}
