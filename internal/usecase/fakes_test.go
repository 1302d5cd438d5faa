package usecase

import (
	"context"
	"sync"

	"AlgoSensei/internal/domain/models"
)

type mapStore struct {
	mu      sync.Mutex
	data    map[string]string
	setErr  error
	touched []string
}

func newMapStore() *mapStore { return &mapStore{data: map[string]string{}} }

func (s *mapStore) GetMany(_ context.Context, keys ...string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *mapStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

func (s *mapStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *mapStore) Touch(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if _, ok := s.data[k]; ok {
			s.touched = append(s.touched, k)
		}
	}
	return nil
}

func (s *mapStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string]string{}
	return nil
}

type fakeAuth struct {
	signIn   func(email, password string) (*models.Identity, error)
	signUp   func(email, password string) (*models.Identity, error)
	exchange func(code, verifier string) (*models.Identity, error)
	calls    int
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, email, password string) (*models.Identity, error) {
	f.calls++
	return f.signIn(email, password)
}

func (f *fakeAuth) SignUp(_ context.Context, email, password string) (*models.Identity, error) {
	f.calls++
	return f.signUp(email, password)
}

func (f *fakeAuth) ExchangeCode(_ context.Context, code, verifier string) (*models.Identity, error) {
	f.calls++
	return f.exchange(code, verifier)
}

type fakeProfiles struct {
	rows      map[string]*models.Profile
	findErr   error
	createErr error
	created   []*models.Profile
}

func (f *fakeProfiles) FindByEmail(_ context.Context, email string) (*models.Profile, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.rows[email], nil
}

func (f *fakeProfiles) Create(_ context.Context, p *models.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.rows == nil {
		f.rows = map[string]*models.Profile{}
	}
	f.rows[p.Email] = p
	f.created = append(f.created, p)
	return nil
}

type recordingMetrics struct {
	mu    sync.Mutex
	polls []string
	auth  []string
	adv   []string
	pollC chan string
}

func (m *recordingMetrics) RecordPoll(trigger, outcome string) {
	m.mu.Lock()
	m.polls = append(m.polls, trigger+":"+outcome)
	ch := m.pollC
	m.mu.Unlock()
	if ch != nil {
		ch <- trigger + ":" + outcome
	}
}

func (m *recordingMetrics) RecordAuthAttempt(flow, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auth = append(m.auth, flow+":"+outcome)
}

func (m *recordingMetrics) RecordAdvisorCall(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adv = append(m.adv, source)
}

func (m *recordingMetrics) RecordLastPrice(string, float64) {}
func (m *recordingMetrics) RecordLatency(string, float64)   {}
