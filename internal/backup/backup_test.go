package backup

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSnapshotPort struct {
	collections map[string]json.RawMessage
	err         error
}

func (f fakeSnapshotPort) Collections(ctx context.Context) (map[string]json.RawMessage, error) {
	return f.collections, f.err
}

func TestBuildWrapsCollections(t *testing.T) {
	svc := NewService(fakeSnapshotPort{collections: map[string]json.RawMessage{
		"customers": json.RawMessage(`[{"id":1,"name":"Sharma Medical"}]`),
		"bills":     json.RawMessage(`[]`),
	}})
	svc.now = func() time.Time { return time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC) }

	snapshot, err := svc.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Collections, 2)
	require.Equal(t, "backup_2025-03-02.json", svc.Filename())
}

func TestWriteProducesValidJSON(t *testing.T) {
	svc := NewService(fakeSnapshotPort{collections: map[string]json.RawMessage{
		"products": json.RawMessage(`[{"id":7}]`),
	}})

	var sb strings.Builder
	require.NoError(t, svc.Write(context.Background(), &sb))

	var decoded Snapshot
	require.NoError(t, json.Unmarshal([]byte(sb.String()), &decoded))
	require.JSONEq(t, `[{"id":7}]`, string(decoded.Collections["products"]))
}

func TestWriteFileCreatesDatedFile(t *testing.T) {
	svc := NewService(fakeSnapshotPort{collections: map[string]json.RawMessage{
		"customers": json.RawMessage(`[]`),
	}})
	svc.now = func() time.Time { return time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC) }

	dir := t.TempDir()
	path, err := svc.WriteFile(context.Background(), filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Equal(t, "backup_2025-03-02.json", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"customers"`)
}
