package workspace

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/layout"
)

type mockStorage struct{ mock.Mock }

func (m *mockStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

func (m *mockStorage) Set(ctx context.Context, key string, data []byte) error {
	return m.Called(ctx, key, data).Error(0)
}

func (m *mockStorage) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStorage) Close() error { return nil }

func testManager(st Storage) *Manager {
	m := NewManager(st, nil)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	n := 0
	m.newID = func() string {
		n++
		return fmt.Sprintf("ws-%d", n)
	}
	return m
}

func samplePanels() []layout.Panel {
	return []layout.Panel{
		{ID: "p1", Kind: "notes", Position: layout.Point{X: 10, Y: 20}, Size: layout.Size{Width: 300, Height: 200}, ZIndex: 1, Visible: true,
			Constraints: layout.Constraints{MinSize: &layout.Size{Width: 100, Height: 100}}},
		{ID: "p2", Kind: "chat", Position: layout.Point{X: 320, Y: 20}, Size: layout.Size{Width: 300, Height: 200}, ZIndex: 2, Visible: true},
	}
}

func TestManagerSaveLoad(t *testing.T) {
	ctx := context.Background()
	m := testManager(NewMemoryStorage())

	saved, err := m.Save(ctx, Config{Name: "Dashboard", Panels: samplePanels(), Grid: layout.DefaultGridSettings(), Viewport: layout.DefaultViewport()})
	require.NoError(t, err)
	assert.Equal(t, "ws-1", saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, saved.ID, active.ID)

	loaded, err := m.Load(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Panels, loaded.Panels)

	loaded.Panels[0].Constraints.MinSize.Width = 999
	again, _ := m.Get(saved.ID)
	assert.Equal(t, 100.0, again.Panels[0].Constraints.MinSize.Width, "returned configs must be copies")
}

func TestManagerSaveSameNameUpdates(t *testing.T) {
	ctx := context.Background()
	m := testManager(NewMemoryStorage())

	first, err := m.Save(ctx, Config{Name: "Main", Panels: samplePanels()})
	require.NoError(t, err)
	second, err := m.Save(ctx, Config{Name: "Main", Panels: samplePanels()[:1]})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Len(t, m.List(), 1)
	assert.Len(t, second.Panels, 1)
}

func TestManagerListOrder(t *testing.T) {
	ctx := context.Background()
	m := testManager(NewMemoryStorage())
	for _, name := range []string{"a", "b", "c"} {
		_, err := m.Save(ctx, Config{Name: name})
		require.NoError(t, err)
	}
	var names []string
	for _, c := range m.List() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"c", "b", "a"}, names)
}

func TestManagerDelete(t *testing.T) {
	ctx := context.Background()
	m := testManager(NewMemoryStorage())
	cfg, err := m.Save(ctx, Config{Name: "x"})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, cfg.ID))
	_, ok := m.Active()
	assert.False(t, ok)
	_, err = m.Load(ctx, cfg.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeWorkspaceNotFound))

	err = m.Delete(ctx, "nope")
	assert.True(t, errors.Is(err, errors.ErrCodeWorkspaceNotFound))
}

func TestManagerRefresh(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStorage()
	m := testManager(st)
	a, err := m.Save(ctx, Config{Name: "a", Panels: samplePanels()})
	require.NoError(t, err)
	_, err = m.Save(ctx, Config{Name: "b"})
	require.NoError(t, err)
	_, err = m.Load(ctx, a.ID)
	require.NoError(t, err)

	fresh := NewManager(st, nil)
	require.NoError(t, fresh.Refresh(ctx))
	assert.Len(t, fresh.List(), 2)
	active, ok := fresh.Active()
	require.True(t, ok)
	assert.Equal(t, a.ID, active.ID)
	assert.Equal(t, a.Panels, active.Panels)

	// Index entries without a blob are dropped.
	require.NoError(t, st.Remove(ctx, Key(a.ID)))
	require.NoError(t, fresh.Refresh(ctx))
	assert.Len(t, fresh.List(), 1)
	_, ok = fresh.Active()
	assert.False(t, ok)
}

func TestManagerValidation(t *testing.T) {
	ctx := context.Background()
	m := testManager(NewMemoryStorage())

	_, err := m.Save(ctx, Config{Name: "  "})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidWorkspace))

	bad := samplePanels()
	bad[1].ID = bad[0].ID
	_, err = m.Save(ctx, Config{Name: "dup", Panels: bad})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidWorkspace))

	zero := samplePanels()
	zero[0].Size.Width = 0
	_, err = m.Save(ctx, Config{Name: "zero", Panels: zero})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGeometry))
}

func TestManagerStorageFailure(t *testing.T) {
	ctx := context.Background()
	st := &mockStorage{}
	boom := stderrors.New("connection reset")
	st.On("Set", mock.Anything, "workspace:ws-1", mock.Anything).Return(boom)

	m := testManager(st)
	_, err := m.Save(ctx, Config{Name: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStorage))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, m.List(), "failed save must not appear in memory")
	st.AssertExpectations(t)
}

func TestManagerLoadFallsBackToStorage(t *testing.T) {
	ctx := context.Background()
	st := &mockStorage{}
	blob := []byte(`{"id":"remote","name":"Remote","panels":[]}`)
	st.On("Get", mock.Anything, "workspace:remote").Return(blob, true, nil).Once()
	st.On("Set", mock.Anything, IndexKey, mock.Anything).Return(nil)

	m := testManager(st)
	cfg, err := m.Load(ctx, "remote")
	require.NoError(t, err)
	assert.Equal(t, "Remote", cfg.Name)

	// Cached after the first read.
	_, err = m.Load(ctx, "remote")
	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestImportAndFind(t *testing.T) {
	ctx := context.Background()
	m := testManager(NewMemoryStorage())

	cfg, err := m.Import(ctx, Config{Name: "Imported", Panels: samplePanels()})
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.ID)

	byName, ok := m.Find("Imported")
	require.True(t, ok)
	assert.Equal(t, cfg.ID, byName.ID)
	_, ok = m.Find("missing")
	assert.False(t, ok)
	_, ok = m.Active()
	assert.False(t, ok, "import does not activate")
}

func TestTOMLRoundTrip(t *testing.T) {
	in := Config{
		ID:          "ws-9",
		Name:        "Round trip",
		Description: "two panels",
		Panels:      samplePanels(),
		Grid:        layout.DefaultGridSettings(),
		Viewport:    layout.DefaultViewport(),
		CreatedAt:   time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
	}
	var buf bytes.Buffer
	require.NoError(t, ExportTOML(&buf, in))
	assert.Contains(t, buf.String(), `name = "Round trip"`)

	out, err := ImportTOML(&buf)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Grid, out.Grid)
	require.Len(t, out.Panels, 2)
	assert.Equal(t, in.Panels[0].Position, out.Panels[0].Position)
	require.NotNil(t, out.Panels[0].Constraints.MinSize)
	assert.Equal(t, 100.0, out.Panels[0].Constraints.MinSize.Width)
	assert.Nil(t, out.Panels[1].Constraints.MinSize)
	assert.True(t, in.UpdatedAt.Equal(out.UpdatedAt))

	_, err = ImportTOML(bytes.NewBufferString("name = 3"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidWorkspace))
}
