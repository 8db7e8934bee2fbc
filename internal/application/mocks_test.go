package application

import (
	"context"
	"strings"
	"time"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// --- In-memory mocks for the driven ports ---

type mockEmailStore struct {
	emails          map[int64]model.Email
	classifications map[int64]model.Classification
}

func newMockEmailStore(emails ...model.Email) *mockEmailStore {
	m := &mockEmailStore{
		emails:          make(map[int64]model.Email),
		classifications: make(map[int64]model.Classification),
	}
	for _, e := range emails {
		m.emails[e.ID] = e
	}
	return m
}

func (m *mockEmailStore) Insert(_ context.Context, email model.Email) (int64, error) {
	id := int64(len(m.emails) + 1)
	email.ID = id
	m.emails[id] = email
	return id, nil
}

func (m *mockEmailStore) GetByID(_ context.Context, id int64) (*model.Email, error) {
	e, ok := m.emails[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *mockEmailStore) UpdateClassification(_ context.Context, id int64, c model.Classification) error {
	e := m.emails[id]
	e.Classification = c
	m.emails[id] = e
	m.classifications[id] = c
	return nil
}

func (m *mockEmailStore) List(_ context.Context, _, _ int) ([]model.Email, error) {
	return nil, nil
}

func (m *mockEmailStore) Count(_ context.Context) (int, error) {
	return len(m.emails), nil
}

type mockServiceStore struct {
	services []model.Service
	nextID   int64
}

func newMockServiceStore(services ...model.Service) *mockServiceStore {
	m := &mockServiceStore{nextID: 1}
	for _, svc := range services {
		if svc.ID >= m.nextID {
			m.nextID = svc.ID + 1
		}
		m.services = append(m.services, svc)
	}
	return m
}

func (m *mockServiceStore) Create(_ context.Context, svc model.Service) (int64, error) {
	for _, existing := range m.services {
		if svc.Domain != "" && existing.Domain == svc.Domain {
			return 0, driven.ErrDuplicateDomain
		}
	}
	svc.ID = m.nextID
	m.nextID++
	m.services = append(m.services, svc)
	return svc.ID, nil
}

func (m *mockServiceStore) GetByID(_ context.Context, id int64) (*model.Service, error) {
	for i := range m.services {
		if m.services[i].ID == id {
			svc := m.services[i]
			return &svc, nil
		}
	}
	return nil, nil
}

func (m *mockServiceStore) ListResolved(_ context.Context) ([]model.Service, error) {
	var resolved []model.Service
	for _, svc := range m.services {
		if svc.Domain != "" {
			resolved = append(resolved, svc)
		}
	}
	// Stored in insertion order, which matches ascending ID here.
	return resolved, nil
}

func (m *mockServiceStore) List(_ context.Context, filter driven.EvaluationFilter, search string) ([]model.Service, error) {
	var out []model.Service
	for _, svc := range m.services {
		switch filter {
		case driven.FilterPending:
			if !svc.ReviewPending && svc.IsEvaluated() {
				continue
			}
		case driven.FilterCompleted:
			if !svc.IsEvaluated() {
				continue
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(svc.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, svc)
	}
	return out, nil
}

func (m *mockServiceStore) RecordEvaluation(_ context.Context, id int64, grade model.RiskGrade, score float64, report string, evaluatedAt time.Time) error {
	for i := range m.services {
		if m.services[i].ID == id {
			m.services[i].Grade = grade
			m.services[i].SecurityScore = &score
			m.services[i].SecurityReport = report
			m.services[i].EvaluatedAt = evaluatedAt
			m.services[i].ReviewPending = false
			return nil
		}
	}
	return ErrServiceNotFound
}

func (m *mockServiceStore) SetGrade(_ context.Context, id int64, grade model.RiskGrade, evaluatedAt time.Time) error {
	for i := range m.services {
		if m.services[i].ID == id {
			m.services[i].Grade = grade
			m.services[i].EvaluatedAt = evaluatedAt
			m.services[i].ReviewPending = false
			return nil
		}
	}
	return ErrServiceNotFound
}

type mockLinkStore struct {
	links  []model.ServiceLink
	joined []driven.LinkedService // Returned verbatim by ListByUser when set.
	nextID int64
}

func newMockLinkStore() *mockLinkStore {
	return &mockLinkStore{nextID: 1}
}

func (m *mockLinkStore) Create(_ context.Context, link model.ServiceLink) (int64, error) {
	for _, existing := range m.links {
		if existing.UserID == link.UserID && existing.ServiceID == link.ServiceID {
			return 0, driven.ErrDuplicateLink
		}
	}
	link.ID = m.nextID
	m.nextID++
	m.links = append(m.links, link)
	return link.ID, nil
}

func (m *mockLinkStore) GetByUserAndService(_ context.Context, userID, serviceID int64) (*model.ServiceLink, error) {
	for i := range m.links {
		if m.links[i].UserID == userID && m.links[i].ServiceID == serviceID {
			link := m.links[i]
			return &link, nil
		}
	}
	return nil, nil
}

func (m *mockLinkStore) ListByUser(_ context.Context, userID int64) ([]driven.LinkedService, error) {
	var out []driven.LinkedService
	for _, ls := range m.joined {
		if ls.Link.UserID == userID {
			out = append(out, ls)
		}
	}
	return out, nil
}

type mockUserStore struct {
	users map[int64]model.User
}

func newMockUserStore(users ...model.User) *mockUserStore {
	m := &mockUserStore{users: make(map[int64]model.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserStore) Create(_ context.Context, user model.User) (int64, error) {
	id := int64(len(m.users) + 1)
	user.ID = id
	m.users[id] = user
	return id, nil
}

func (m *mockUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (m *mockUserStore) List(_ context.Context, _, _ int) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

type mockClassifierOracle struct {
	response string
	err      error
	got      []driven.EmailSummary
	calls    int
}

func (m *mockClassifierOracle) ClassifyEmails(_ context.Context, emails []driven.EmailSummary) (string, error) {
	m.calls++
	m.got = emails
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

type mockPolicyOracle struct {
	response string
	err      error
	gotText  string
}

func (m *mockPolicyOracle) EvaluatePolicy(_ context.Context, policyText string) (string, error) {
	m.gotText = policyText
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}
