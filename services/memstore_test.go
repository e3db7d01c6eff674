package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"outreach-tracker/models"
)

// memStore is an in-memory stand-in for MongoStore. Slices keep insertion
// order, which plays the role of natural store order.
type memStore struct {
	mu        sync.Mutex
	subjects  []models.Subject
	users     []models.OnboardedUser
	campaigns []models.Campaign
	growth    []models.InfluencerGrowth

	// failWith makes every call return this error
	failWith error
}

var errStoreDown = errors.New("store down")

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) subjectIndex(key SubjectKey, value string) int {
	for i, s := range m.subjects {
		var field string
		switch key {
		case SubjectKeyUserID:
			field = s.UserID
		case SubjectKeyProviderID:
			field = s.ProviderID
		case SubjectKeyMessagingID:
			field = s.ProviderMessagingID
		}
		if field != "" && field == value {
			return i
		}
	}
	return -1
}

func (m *memStore) FindSubject(_ context.Context, key SubjectKey, value string) (*models.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if i := m.subjectIndex(key, value); i >= 0 {
		s := m.subjects[i]
		return &s, nil
	}
	return nil, nil
}

func (m *memStore) FindSubjectsByProvider(_ context.Context, provider string) ([]models.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.Subject
	for _, s := range m.subjects {
		if s.Name == "" {
			continue
		}
		if provider != "" && s.Provider != provider {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) UpsertSubject(_ context.Context, userID string, patch models.SubjectPatch, now time.Time) (*models.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if i := m.subjectIndex(SubjectKeyUserID, userID); i >= 0 {
		patch.ApplyTo(&m.subjects[i], now)
		s := m.subjects[i]
		return &s, nil
	}
	s := models.NewSubjectFromPatch(userID, patch, now)
	m.subjects = append(m.subjects, s)
	return &s, nil
}

func (m *memStore) UpdateSubject(_ context.Context, id primitive.ObjectID, patch models.SubjectPatch, now time.Time) (*models.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for i := range m.subjects {
		if m.subjects[i].ID == id {
			patch.ApplyTo(&m.subjects[i], now)
			s := m.subjects[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListSubjects(_ context.Context, f SubjectFilter) ([]models.Subject, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, 0, m.failWith
	}
	var matched []models.Subject
	for _, s := range m.subjects {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.Provider != "" && s.Provider != f.Provider {
			continue
		}
		if f.CampaignID != "" && !s.HasCampaign(f.CampaignID) {
			continue
		}
		matched = append(matched, s)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	total := int64(len(matched))
	if f.Skip >= len(matched) {
		return []models.Subject{}, total, nil
	}
	matched = matched[f.Skip:]
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (m *memStore) CountSubjectsByStatus(_ context.Context) (map[models.SubjectStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	counts := map[models.SubjectStatus]int64{}
	for _, s := range m.subjects {
		counts[s.Status]++
	}
	return counts, nil
}

func (m *memStore) DeleteSubject(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return false, m.failWith
	}
	if i := m.subjectIndex(SubjectKeyUserID, userID); i >= 0 {
		m.subjects = append(m.subjects[:i], m.subjects[i+1:]...)
		return true, nil
	}
	return false, nil
}

func (m *memStore) UpsertOnboardedUser(_ context.Context, userID, name string, contacts models.OnboardedUserContacts, now time.Time) (*models.OnboardedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for i := range m.users {
		if m.users[i].UserID == userID {
			contacts.ApplyTo(&m.users[i])
			m.users[i].UpdatedAt = now
			u := m.users[i]
			return &u, nil
		}
	}
	u := models.OnboardedUser{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Name:        name,
		OnboardedAt: now,
		UpdatedAt:   now,
	}
	contacts.ApplyTo(&u)
	m.users = append(m.users, u)
	return &u, nil
}

func (m *memStore) ExistingUserIDs(_ context.Context, userIDs []string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	existing := map[string]struct{}{}
	for _, id := range userIDs {
		for _, u := range m.users {
			if u.UserID == id {
				existing[id] = struct{}{}
			}
		}
	}
	return existing, nil
}

func (m *memStore) ListOnboardedUsers(_ context.Context) ([]models.OnboardedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	return append([]models.OnboardedUser{}, m.users...), nil
}

func (m *memStore) addOnboardedUsers(ids ...string) {
	for _, id := range ids {
		m.UpsertOnboardedUser(context.Background(), id, "User "+id, models.OnboardedUserContacts{}, time.Now())
	}
}

func (m *memStore) ExpireDueCampaigns(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	var n int64
	for i := range m.campaigns {
		c := &m.campaigns[i]
		if c.IsDue(now) && c.Status != models.CampaignStatusExpired {
			c.Status = models.CampaignStatusExpired
			c.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListCampaigns(_ context.Context) ([]models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]models.Campaign, len(m.campaigns))
	for i := range m.campaigns {
		out[len(m.campaigns)-1-i] = m.campaigns[i]
	}
	return out, nil
}

func (m *memStore) GetCampaign(_ context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, c := range m.campaigns {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) InsertCampaign(_ context.Context, campaign *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if campaign.ID.IsZero() {
		campaign.ID = primitive.NewObjectID()
	}
	campaign.UserCount = len(campaign.UserIDs)
	m.campaigns = append(m.campaigns, *campaign)
	return nil
}

func (m *memStore) UpdateCampaign(_ context.Context, id primitive.ObjectID, patch models.CampaignPatch, now time.Time) (*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			patch.ApplyTo(&m.campaigns[i], now)
			c := m.campaigns[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) DeleteCampaign(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return false, m.failWith
	}
	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			m.campaigns = append(m.campaigns[:i], m.campaigns[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) growthIndex(id string) int {
	for i := range m.growth {
		if m.growth[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *memStore) GetGrowth(_ context.Context, id string) (*models.InfluencerGrowth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if i := m.growthIndex(id); i >= 0 {
		g := m.growth[i]
		g.GrowthHistory = append([]models.GrowthPoint{}, g.GrowthHistory...)
		return &g, nil
	}
	return nil, nil
}

func (m *memStore) SaveGrowth(_ context.Context, w GrowthWrite) (*models.InfluencerGrowth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	i := m.growthIndex(w.ID)
	if i < 0 {
		g := models.InfluencerGrowth{ID: w.ID, CreatedAt: w.Now}
		if w.Seed != nil {
			g.GrowthHistory = []models.GrowthPoint{*w.Seed}
		}
		m.growth = append(m.growth, g)
		i = len(m.growth) - 1
	}
	g := &m.growth[i]
	g.FollowersCount = w.FollowersCount
	g.FollowingCount = w.FollowingCount
	g.IsVerified = w.IsVerified
	g.IsPrivate = w.IsPrivate
	g.UpdatedAt = w.Now
	if w.Username != "" {
		g.Username = w.Username
	}
	if w.Append != nil {
		g.GrowthHistory = append(g.GrowthHistory, *w.Append)
	}
	out := *g
	out.GrowthHistory = append([]models.GrowthPoint{}, g.GrowthHistory...)
	return &out, nil
}

func (m *memStore) SetLatestGrowth(_ context.Context, id string, growth models.Growth) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if i := m.growthIndex(id); i >= 0 {
		m.growth[i].LatestGrowth = &growth
	}
	return nil
}

func (m *memStore) ListGrowth(_ context.Context) ([]models.InfluencerGrowth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	return append([]models.InfluencerGrowth{}, m.growth...), nil
}

var (
	_ SubjectRepository       = (*memStore)(nil)
	_ OnboardedUserRepository = (*memStore)(nil)
	_ CampaignRepository      = (*memStore)(nil)
	_ GrowthRepository        = (*memStore)(nil)
	_ SubjectRepository       = (*MongoStore)(nil)
	_ OnboardedUserRepository = (*MongoStore)(nil)
	_ CampaignRepository      = (*MongoStore)(nil)
	_ GrowthRepository        = (*MongoStore)(nil)
)
