package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ekaya-inc/dpdp-engine/pkg/apperrors"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
)

// fakeTx runs fn directly; it does not roll anything back.
type fakeTx struct {
	calls int
	err   error
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

// mockPenaltyCategoryRepository keeps categories in memory keyed by name.
type mockPenaltyCategoryRepository struct {
	byName    map[string]*models.PenaltyCategory
	nextID    int64
	upsertErr error
	getErr    error
}

func newMockPenaltyCategoryRepository() *mockPenaltyCategoryRepository {
	return &mockPenaltyCategoryRepository{byName: make(map[string]*models.PenaltyCategory), nextID: 1}
}

func (m *mockPenaltyCategoryRepository) Upsert(ctx context.Context, category *models.PenaltyCategory) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if existing, ok := m.byName[category.Name]; ok {
		existing.AmountPaise = category.AmountPaise
		existing.SectionReference = category.SectionReference
		category.ID = existing.ID
		return nil
	}
	category.ID = m.nextID
	m.nextID++
	stored := *category
	m.byName[category.Name] = &stored
	return nil
}

func (m *mockPenaltyCategoryRepository) GetByName(ctx context.Context, name string) (*models.PenaltyCategory, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.byName[name]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return c, nil
}

func (m *mockPenaltyCategoryRepository) List(ctx context.Context) ([]*models.PenaltyCategory, error) {
	out := make([]*models.PenaltyCategory, 0, len(m.byName))
	for _, c := range m.byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockPenaltyCategoryRepository) byID(id int64) *models.PenaltyCategory {
	for _, c := range m.byName {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// mockRequirementRepository keeps requirements in insertion order.
type mockRequirementRepository struct {
	requirements []*models.Requirement
	penalties    *mockPenaltyCategoryRepository
	listCalls    int
	insertErr    error
	listErr      error
}

func newMockRequirementRepository(penalties *mockPenaltyCategoryRepository) *mockRequirementRepository {
	return &mockRequirementRepository{penalties: penalties}
}

func (m *mockRequirementRepository) Exists(ctx context.Context, ruleID models.RuleIdentifier, text string) (bool, error) {
	for _, r := range m.requirements {
		if r.RuleID.Equal(ruleID) && r.Text == text {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRequirementRepository) Insert(ctx context.Context, req *models.Requirement) (bool, error) {
	if m.insertErr != nil {
		return false, m.insertErr
	}
	if exists, _ := m.Exists(ctx, req.RuleID, req.Text); exists {
		return false, nil
	}
	req.ID = int64(len(m.requirements) + 1)
	req.CreatedAt = time.Now()
	stored := *req
	m.requirements = append(m.requirements, &stored)
	return true, nil
}

func (m *mockRequirementRepository) detail(r *models.Requirement) *models.RequirementDetail {
	d := &models.RequirementDetail{Requirement: *r}
	if r.PenaltyCategoryID != nil && m.penalties != nil {
		d.PenaltyCategory = m.penalties.byID(*r.PenaltyCategoryID)
	}
	return d
}

func (m *mockRequirementRepository) ListAll(ctx context.Context) ([]*models.RequirementDetail, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*models.RequirementDetail, 0, len(m.requirements))
	for _, r := range m.requirements {
		out = append(out, m.detail(r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RuleID.Rule < out[j].RuleID.Rule })
	return out, nil
}

func (m *mockRequirementRepository) GetByID(ctx context.Context, id int64) (*models.RequirementDetail, error) {
	for _, r := range m.requirements {
		if r.ID == id {
			return m.detail(r), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockRequirementRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.RequirementDetail, error) {
	out := make([]*models.RequirementDetail, 0, len(ids))
	for _, id := range ids {
		if d, err := m.GetByID(ctx, id); err == nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockRequirementRepository) Count(ctx context.Context) (int, error) {
	return len(m.requirements), nil
}

func (m *mockRequirementRepository) CountDuplicateTexts(ctx context.Context) (int, error) {
	counts := make(map[string]int)
	for _, r := range m.requirements {
		counts[r.Text]++
	}
	dups := 0
	for _, n := range counts {
		if n > 1 {
			dups++
		}
	}
	return dups, nil
}

func (m *mockRequirementRepository) CountDuplicateEntries(ctx context.Context) (int, error) {
	counts := make(map[string]int)
	for _, r := range m.requirements {
		counts[r.RuleID.String()+"\x00"+r.Text]++
	}
	dups := 0
	for _, n := range counts {
		if n > 1 {
			dups++
		}
	}
	return dups, nil
}

func (m *mockRequirementRepository) CountByRule(ctx context.Context) (map[int]int, error) {
	counts := make(map[int]int)
	for _, r := range m.requirements {
		counts[r.RuleID.Rule]++
	}
	return counts, nil
}

// mockScheduleThresholdRepository keeps thresholds keyed by schedule and class.
type mockScheduleThresholdRepository struct {
	thresholds []*models.ScheduleThreshold
	insertErr  error
}

func (m *mockScheduleThresholdRepository) InsertIfAbsent(ctx context.Context, threshold *models.ScheduleThreshold) (bool, error) {
	if m.insertErr != nil {
		return false, m.insertErr
	}
	for _, t := range m.thresholds {
		if t.ScheduleName == threshold.ScheduleName && t.EntityClass == threshold.EntityClass {
			return false, nil
		}
	}
	threshold.ID = int64(len(m.thresholds) + 1)
	stored := *threshold
	m.thresholds = append(m.thresholds, &stored)
	return true, nil
}

func (m *mockScheduleThresholdRepository) List(ctx context.Context) ([]*models.ScheduleThreshold, error) {
	return m.thresholds, nil
}

func (m *mockScheduleThresholdRepository) GetByClass(ctx context.Context, scheduleName, entityClass string) (*models.ScheduleThreshold, error) {
	for _, t := range m.thresholds {
		if t.ScheduleName == scheduleName && t.EntityClass == entityClass {
			return t, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// mockOrganizationRepository keeps profiles in memory.
type mockOrganizationRepository struct {
	profiles  map[uuid.UUID]*models.OrganizationProfile
	scores    map[uuid.UUID]float64
	createErr error
}

func newMockOrganizationRepository() *mockOrganizationRepository {
	return &mockOrganizationRepository{
		profiles: make(map[uuid.UUID]*models.OrganizationProfile),
		scores:   make(map[uuid.UUID]float64),
	}
}

func (m *mockOrganizationRepository) Create(ctx context.Context, profile *models.OrganizationProfile) error {
	if m.createErr != nil {
		return m.createErr
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizationProfile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockOrganizationRepository) UpdateAssessmentScore(ctx context.Context, id uuid.UUID, score float64) error {
	if _, ok := m.profiles[id]; !ok {
		return apperrors.ErrNotFound
	}
	m.scores[id] = score
	return nil
}

// mockComplianceStatusRepository keeps ledger rows keyed by organization.
type mockComplianceStatusRepository struct {
	rows      map[uuid.UUID]map[int64]*models.ComplianceStatus
	upsertErr error
}

func newMockComplianceStatusRepository() *mockComplianceStatusRepository {
	return &mockComplianceStatusRepository{rows: make(map[uuid.UUID]map[int64]*models.ComplianceStatus)}
}

func (m *mockComplianceStatusRepository) Upsert(ctx context.Context, status *models.ComplianceStatus) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.rows[status.OrganizationID] == nil {
		m.rows[status.OrganizationID] = make(map[int64]*models.ComplianceStatus)
	}
	status.UpdatedAt = time.Now()
	stored := *status
	m.rows[status.OrganizationID][status.RequirementID] = &stored
	return nil
}

func (m *mockComplianceStatusRepository) List(ctx context.Context, organizationID uuid.UUID) ([]*models.ComplianceStatus, error) {
	out := make([]*models.ComplianceStatus, 0)
	for _, s := range m.rows[organizationID] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequirementID < out[j].RequirementID })
	return out, nil
}

func (m *mockComplianceStatusRepository) ListCompleted(ctx context.Context, organizationID uuid.UUID) ([]int64, error) {
	ids := make([]int64, 0)
	for id, s := range m.rows[organizationID] {
		if s.Status == models.ComplianceCompleted {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
