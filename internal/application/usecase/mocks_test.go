package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dreschagin/netpulse/internal/application/dto"
	"github.com/dreschagin/netpulse/internal/application/port"
	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/internal/domain/valueobject"
)

type mockSampleSource struct {
	sample *entity.Sample
	err    error
	ticks  int
}

func (m *mockSampleSource) Start(_ context.Context) error { return nil }

func (m *mockSampleSource) Tick(_ context.Context) (*entity.Sample, error) {
	m.ticks++
	if m.err != nil {
		return nil, m.err
	}
	return m.sample, nil
}

func (m *mockSampleSource) Stop() error { return nil }

type mockSampleRepository struct {
	saved      []*entity.Sample
	batches    [][]*entity.Sample
	findResult []*entity.Sample
	deleted    int64
	deleteCuts []time.Time
	err        error
}

func (m *mockSampleRepository) Save(_ context.Context, sample *entity.Sample) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, sample)
	return nil
}

func (m *mockSampleRepository) SaveBatch(_ context.Context, samples []*entity.Sample) error {
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, samples)
	return nil
}

func (m *mockSampleRepository) FindSince(_ context.Context, _ time.Time, _ int) ([]*entity.Sample, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.findResult, nil
}

func (m *mockSampleRepository) FindByTimeRange(_ context.Context, _ valueobject.TimeRange) ([]*entity.Sample, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.findResult, nil
}

func (m *mockSampleRepository) FindLatest(_ context.Context) (*entity.Sample, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.findResult) == 0 {
		return nil, nil
	}
	return m.findResult[0], nil
}

func (m *mockSampleRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.deleteCuts = append(m.deleteCuts, cutoff)
	return m.deleted, nil
}

func (m *mockSampleRepository) Count(_ context.Context) (int64, error) {
	return int64(len(m.saved)), nil
}

type mockAlertRepository struct {
	saved    []*entity.Alert
	active   []*entity.Alert
	resolved []string
	saveErr  error
	err      error
}

func (m *mockAlertRepository) Save(_ context.Context, alert *entity.Alert) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, alert)
	return nil
}

func (m *mockAlertRepository) FindActive(_ context.Context, limit int) ([]*entity.Alert, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.active) {
		return m.active[:limit], nil
	}
	return m.active, nil
}

func (m *mockAlertRepository) Resolve(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.resolved = append(m.resolved, id)
	return nil
}

func (m *mockAlertRepository) DeleteResolvedOlderThan(_ context.Context, _ time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return 0, nil
}

type mockNotifier struct {
	snapshots []*dto.MonitorSnapshotDTO
	alerts    []*dto.AlertDTO
}

func (m *mockNotifier) Broadcast(snapshot *dto.MonitorSnapshotDTO) {
	m.snapshots = append(m.snapshots, snapshot)
}

func (m *mockNotifier) BroadcastAlert(alert *dto.AlertDTO) {
	m.alerts = append(m.alerts, alert)
}

func (m *mockNotifier) ClientCount() int { return 1 }

type publishedEvent struct {
	subject string
	event   interface{}
}

type mockEventPublisher struct {
	events []publishedEvent
	err    error
}

func (m *mockEventPublisher) PublishEvent(_ context.Context, subject string, event interface{}) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, publishedEvent{subject: subject, event: event})
	return nil
}

func (m *mockEventPublisher) Close() error { return nil }

type mockMetricsPublisher struct {
	batches [][]*entity.Sample
	err     error
}

func (m *mockMetricsPublisher) PublishBatch(_ context.Context, samples []*entity.Sample) error {
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, samples)
	return nil
}

func (m *mockMetricsPublisher) PublishSingle(ctx context.Context, sample *entity.Sample) error {
	return m.PublishBatch(ctx, []*entity.Sample{sample})
}

func (m *mockMetricsPublisher) Flush(_ context.Context) error { return nil }

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	store           map[string][]byte
	deletedPatterns []string
	getErr          error
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (m *mockCache) Get(_ context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.store[key]
	if !ok {
		return errCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	delete(m.store, key)
	return nil
}

func (m *mockCache) DeletePattern(_ context.Context, pattern string) error {
	m.deletedPatterns = append(m.deletedPatterns, pattern)
	return nil
}

func (m *mockCache) Close() error { return nil }

type archivePut struct {
	key         string
	contentType string
	body        []byte
}

type mockArchiveStorage struct {
	calls []archivePut
	err   error
}

func (m *mockArchiveStorage) PutObject(_ context.Context, key, contentType string, body []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.calls = append(m.calls, archivePut{key: key, contentType: contentType, body: body})
	return "https://example.com/" + key, nil
}

type mockArchiveIndex struct {
	records []port.ArchiveRecord
	err     error
}

func (m *mockArchiveIndex) PutBatch(_ context.Context, records []port.ArchiveRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, records...)
	return nil
}

func (m *mockArchiveIndex) ListByDay(_ context.Context, _ port.ArchiveListQuery) (port.ArchiveListPage, error) {
	return port.ArchiveListPage{Items: m.records}, nil
}
