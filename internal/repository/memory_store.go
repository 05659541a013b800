package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Suraj757/learning-profile-api/internal/models"
)

// MemoryStore is the in-memory fallback data source. Its facet accessors
// satisfy the same store interfaces as the Postgres repositories, so the
// rest of the service is unaware which backend was selected. Missing rows
// surface as sql.ErrNoRows to keep error handling uniform across backends.
type MemoryStore struct {
	mu          sync.RWMutex
	profiles    map[string]*models.Profile
	users       map[string]*models.User
	classrooms  map[string]*models.Classroom
	riskFactors map[string][]models.RiskFactor
	invitations map[string]*models.Invitation
}

// NewMemoryStore seeds the fallback store with a demo teacher account and
// classroom so the application is usable without a database.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		profiles:    make(map[string]*models.Profile),
		users:       make(map[string]*models.User),
		classrooms:  make(map[string]*models.Classroom),
		riskFactors: make(map[string][]models.RiskFactor),
		invitations: make(map[string]*models.Invitation),
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	now := time.Now().UTC()
	s.users["demo-teacher"] = &models.User{
		ID:           "demo-teacher",
		Email:        "demo@beginlearning.test",
		PasswordHash: string(hash),
		FullName:     "Demo Teacher",
		Role:         models.RoleTeacher,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.classrooms["demo-classroom"] = &models.Classroom{
		ID:        "demo-classroom",
		TeacherID: "demo-teacher",
		Name:      "Demo Classroom",
		GradeBand: "K-2",
		CreatedAt: now,
	}
	return s
}

// Profiles returns the ProfileStore facet.
func (s *MemoryStore) Profiles() ProfileStore { return memoryProfiles{s} }

// Users returns the UserStore facet.
func (s *MemoryStore) Users() UserStore { return memoryUsers{s} }

// Classrooms returns the ClassroomStore facet.
func (s *MemoryStore) Classrooms() ClassroomStore { return memoryClassrooms{s} }

// Invitations returns the InvitationStore facet.
func (s *MemoryStore) Invitations() InvitationStore { return memoryInvitations{s} }

type memoryProfiles struct{ s *MemoryStore }

func (m memoryProfiles) Create(_ context.Context, profile *models.Profile) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

func (m memoryProfiles) FindByID(_ context.Context, id string) (*models.Profile, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	profile, ok := m.s.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneProfile(profile), nil
}

func (m memoryProfiles) ListByClassroom(_ context.Context, classroomID string) ([]models.Profile, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var result []models.Profile
	for _, profile := range m.s.profiles {
		if profile.ClassroomID == classroomID {
			result = append(result, *cloneProfile(profile))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ChildName < result[j].ChildName })
	return result, nil
}

// SaveAssessment applies the recomputed profile under the same optimistic
// version guard the Postgres backend uses. The record itself is already part
// of profile.Records.
func (m memoryProfiles) SaveAssessment(_ context.Context, profile *models.Profile, _ *models.AssessmentRecord) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.profiles[profile.ID]
	if !ok {
		return sql.ErrNoRows
	}
	if stored.Version != profile.Version {
		return ErrVersionConflict
	}
	updated := cloneProfile(profile)
	updated.Version = stored.Version + 1
	m.s.profiles[profile.ID] = updated
	profile.Version = updated.Version
	return nil
}

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, user := range m.s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memoryUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	user, ok := m.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (m memoryUsers) UpdateLastLogin(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	user, ok := m.s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	now := time.Now().UTC()
	user.LastLogin = &now
	user.UpdatedAt = now
	return nil
}

type memoryClassrooms struct{ s *MemoryStore }

func (m memoryClassrooms) FindByID(_ context.Context, id string) (*models.Classroom, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	classroom, ok := m.s.classrooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *classroom
	return &clone, nil
}

func (m memoryClassrooms) InsertRiskFactor(_ context.Context, factor *models.RiskFactor) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.riskFactors[factor.ClassroomID] = append(m.s.riskFactors[factor.ClassroomID], *factor)
	return nil
}

func (m memoryClassrooms) ListRiskFactors(_ context.Context, classroomID string) ([]models.RiskFactor, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	factors := append([]models.RiskFactor(nil), m.s.riskFactors[classroomID]...)
	sort.Slice(factors, func(i, j int) bool { return factors[i].CreatedAt.After(factors[j].CreatedAt) })
	return factors, nil
}

type memoryInvitations struct{ s *MemoryStore }

func (m memoryInvitations) Insert(_ context.Context, invitation *models.Invitation) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	clone := *invitation
	m.s.invitations[invitation.ID] = &clone
	return nil
}

func (m memoryInvitations) UpdateStatus(_ context.Context, id string, status models.InvitationStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	invitation, ok := m.s.invitations[id]
	if !ok {
		return sql.ErrNoRows
	}
	invitation.Status = status
	if status == models.InvitationSent {
		now := time.Now().UTC()
		invitation.SentAt = &now
	}
	return nil
}

func (m memoryInvitations) ListByClassroom(_ context.Context, classroomID string) ([]models.Invitation, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var result []models.Invitation
	for _, invitation := range m.s.invitations {
		if invitation.ClassroomID == classroomID {
			result = append(result, *invitation)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func cloneProfile(p *models.Profile) *models.Profile {
	clone := *p
	clone.Records = append([]models.AssessmentRecord(nil), p.Records...)
	if p.ConsolidatedScores != nil {
		clone.ConsolidatedScores = make(models.CategoryScores, len(p.ConsolidatedScores))
		for cat, score := range p.ConsolidatedScores {
			clone.ConsolidatedScores[cat] = score
		}
	}
	return &clone
}
