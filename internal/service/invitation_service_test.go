package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Suraj757/learning-profile-api/internal/dto"
	"github.com/Suraj757/learning-profile-api/internal/models"
	"github.com/Suraj757/learning-profile-api/pkg/config"
	"github.com/Suraj757/learning-profile-api/pkg/mailer"
)

type fakeInvitationStore struct {
	mu          sync.Mutex
	invitations map[string]*models.Invitation
}

func newFakeInvitationStore() *fakeInvitationStore {
	return &fakeInvitationStore{invitations: map[string]*models.Invitation{}}
}

func (f *fakeInvitationStore) Insert(ctx context.Context, invitation *models.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *invitation
	f.invitations[invitation.ID] = &clone
	return nil
}

func (f *fakeInvitationStore) UpdateStatus(ctx context.Context, id string, status models.InvitationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	invitation, ok := f.invitations[id]
	if !ok {
		return sql.ErrNoRows
	}
	invitation.Status = status
	return nil
}

func (f *fakeInvitationStore) ListByClassroom(ctx context.Context, classroomID string) ([]models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Invitation
	for _, invitation := range f.invitations {
		if invitation.ClassroomID == classroomID {
			out = append(out, *invitation)
		}
	}
	return out, nil
}

func (f *fakeInvitationStore) statusCounts() map[models.InvitationStatus]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[models.InvitationStatus]int{}
	for _, invitation := range f.invitations {
		counts[invitation.Status]++
	}
	return counts
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []mailer.Message
	failTo string
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo != "" && msg.To == f.failTo {
		return errors.New("delivery refused")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func invitationFixture(t *testing.T, mail *fakeMailer, batchSize int) (*InvitationService, *fakeInvitationStore) {
	t.Helper()
	store := newFakeInvitationStore()
	classrooms := &fakeClassroomStore{classrooms: map[string]*models.Classroom{
		"c1": {ID: "c1", TeacherID: "u1", Name: "Room 4"},
	}}
	svc := NewInvitationService(store, classrooms, mail, validator.New(), zap.NewNop(), config.InvitationsConfig{
		BatchSize:  batchSize,
		BatchDelay: time.Millisecond,
		Workers:    1,
		Retries:    1,
	}, "http://localhost:3000")
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc, store
}

func bulkRequest(n int) dto.BulkInvitationRequest {
	req := dto.BulkInvitationRequest{ClassroomID: "c1"}
	names := []string{"Ada", "Ben", "Cleo", "Dina", "Eli"}
	for i := 0; i < n; i++ {
		req.Invitations = append(req.Invitations, dto.InvitationItem{
			ChildName:   names[i%len(names)],
			ParentEmail: names[i%len(names)] + "@example.com",
		})
	}
	return req
}

func TestBulkInviteQueuesBatches(t *testing.T) {
	mail := &fakeMailer{}
	svc, store := invitationFixture(t, mail, 2)

	res, err := svc.BulkInvite(context.Background(), bulkRequest(5))
	require.NoError(t, err)

	assert.Equal(t, 5, res.Queued)
	assert.Equal(t, 3, res.Batches)

	require.Eventually(t, func() bool {
		return mail.sentCount() == 5
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return store.statusCounts()[models.InvitationSent] == 5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBulkInviteMarksFailures(t *testing.T) {
	mail := &fakeMailer{failTo: "Ben@example.com"}
	svc, store := invitationFixture(t, mail, 10)

	_, err := svc.BulkInvite(context.Background(), bulkRequest(2))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		counts := store.statusCounts()
		return counts[models.InvitationSent] == 1 && counts[models.InvitationFailed] == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBulkInviteUnknownClassroom(t *testing.T) {
	svc, _ := invitationFixture(t, &fakeMailer{}, 10)

	req := bulkRequest(1)
	req.ClassroomID = "missing"

	_, err := svc.BulkInvite(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBulkInviteRejectsEmptyList(t *testing.T) {
	svc, _ := invitationFixture(t, &fakeMailer{}, 10)

	_, err := svc.BulkInvite(context.Background(), dto.BulkInvitationRequest{ClassroomID: "c1"})
	require.Error(t, err)
}

func TestInvitationMessageCarriesLink(t *testing.T) {
	mail := &fakeMailer{}
	svc, _ := invitationFixture(t, mail, 10)

	_, err := svc.BulkInvite(context.Background(), bulkRequest(1))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return mail.sentCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	mail.mu.Lock()
	msg := mail.sent[0]
	mail.mu.Unlock()
	assert.Equal(t, "Ada@example.com", msg.To)
	assert.Contains(t, msg.TextBody, "http://localhost:3000/assessment/start?invite=")
	assert.Contains(t, msg.Subject, "Ada")
}
