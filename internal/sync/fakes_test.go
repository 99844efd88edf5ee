package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/petsync/syncd/internal/models"
)

// fakeProfileRepo is an in-memory PetProfileRepo.
type fakeProfileRepo struct {
	mu        stdsync.Mutex
	profiles  map[int64]*models.PetProfile
	nextID    int64
	updateErr error
	updates   []map[string]interface{}
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[int64]*models.PetProfile{}, nextID: 1}
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *models.PetProfile) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	clone := *p
	clone.ID = id
	f.profiles[id] = &clone
	return id, nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id int64, ownerID string) (*models.PetProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok || p.OwnerID != ownerID {
		return nil, models.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, id int64, fields map[string]interface{}, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.profiles[id]
	if !ok || p.OwnerID != ownerID {
		return models.ErrProfileNotFound
	}
	for name, value := range fields {
		if err := setProfileField(p, name, value); err != nil {
			return err
		}
	}
	p.UpdatedAt = time.Now().UTC()
	f.updates = append(f.updates, fields)
	return nil
}

func setProfileField(p *models.PetProfile, name string, value interface{}) error {
	str := func() string {
		if value == nil {
			return ""
		}
		s, _ := value.(string)
		return s
	}
	set := func() []string {
		switch v := value.(type) {
		case []string:
			return v
		case []interface{}:
			out := make([]string, 0, len(v))
			for _, e := range v {
				s, _ := e.(string)
				out = append(out, s)
			}
			return out
		default:
			return nil
		}
	}

	switch name {
	case models.FieldName:
		p.Name = str()
	case models.FieldSpecies:
		p.Species = str()
	case models.FieldBreed:
		p.Breed = str()
	case models.FieldDateOfBirth:
		p.DateOfBirth = str()
	case models.FieldWeight:
		p.Weight = str()
	case models.FieldColorMarkings:
		p.ColorMarkings = str()
	case models.FieldSex:
		p.Sex = str()
	case models.FieldPersonalityTraits:
		p.PersonalityTraits = set()
	case models.FieldMedicalConditions:
		p.MedicalConditions = set()
	case models.FieldDietaryRestrictions:
		p.DietaryRestrictions = set()
	case models.FieldNotes:
		p.Notes = str()
	case models.FieldInsuranceProvider:
		p.InsuranceProvider = str()
	case models.FieldInsurancePolicyNumber:
		p.InsurancePolicyNumber = str()
	case models.FieldEmergencyContactName:
		p.EmergencyContactName = str()
	default:
		return fmt.Errorf("%w: %s", models.ErrUnknownField, name)
	}
	return nil
}

// fakeKV is an in-memory KVRepo.
type fakeKV struct {
	mu   stdsync.Mutex
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key], nil
}

func (f *fakeKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeKV) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// fakeCloud is an in-memory cloud.Store with injectable failures and a
// manual event channel for subscription tests.
type fakeCloud struct {
	mu        stdsync.Mutex
	records   map[string]*models.RemotePetRecord
	updates   []map[string]interface{}
	insertErr error
	updateErr error
	getErr    error
	subErr    error
	events    []chan models.RemoteChange
}

func newFakeCloud() *fakeCloud {
	return &fakeCloud{records: map[string]*models.RemotePetRecord{}}
}

func (f *fakeCloud) Get(ctx context.Context, remoteID string) (*models.RemotePetRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.records[remoteID]
	if !ok {
		return nil, models.ErrRemoteNotFound
	}
	clone := *r
	return &clone, nil
}

func (f *fakeCloud) Insert(ctx context.Context, record *models.RemotePetRecord) (*models.RemotePetRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	created := *record
	created.ID = fmt.Sprintf("remote-%d", len(f.records)+1)
	created.UpdatedAt = time.Now().UTC()
	f.records[created.ID] = &created
	return &created, nil
}

func (f *fakeCloud) Update(ctx context.Context, remoteID string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.records[remoteID]; !ok {
		return models.ErrRemoteNotFound
	}
	f.updates = append(f.updates, fields)
	return nil
}

func (f *fakeCloud) Subscribe(ctx context.Context, remoteID string) (<-chan models.RemoteChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return nil, f.subErr
	}
	ch := make(chan models.RemoteChange, 16)
	f.events = append(f.events, ch)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (f *fakeCloud) push(change models.RemoteChange) {
	f.mu.Lock()
	ch := f.events[len(f.events)-1]
	f.mu.Unlock()
	ch <- change
}

func (f *fakeCloud) lastUpdate() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		return nil
	}
	return f.updates[len(f.updates)-1]
}

func (f *fakeCloud) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}
