package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/igourd/igourd-pos/internal/catalog/variants"
)

type fakeClient struct {
	resets      int
	regenerated []string
	resetErr    error
}

func (c *fakeClient) EnqueueReset(context.Context) (*asynq.TaskInfo, error) {
	if c.resetErr != nil {
		return nil, c.resetErr
	}
	c.resets++
	return &asynq.TaskInfo{ID: "t1", Type: "catalog:reset"}, nil
}

func (c *fakeClient) EnqueueRegenerateSKUs(_ context.Context, id string) (*asynq.TaskInfo, error) {
	c.regenerated = append(c.regenerated, id)
	return &asynq.TaskInfo{ID: "t2", Type: "catalog:skus.regenerate"}, nil
}

func TestRunEnqueues(t *testing.T) {
	client := &fakeClient{}
	newClient := func() enqueuer { return client }
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"reset"}, &out, newClient, 100))
	require.NoError(t, run(context.Background(), []string{"regenerate", "42"}, &out, newClient, 100))
	require.Equal(t, 1, client.resets)
	require.Equal(t, []string{"42"}, client.regenerated)
	require.Contains(t, out.String(), "queued catalog:reset (t1)")

	client.resetErr = asynq.ErrDuplicateTask
	out.Reset()
	require.NoError(t, run(context.Background(), []string{"reset"}, &out, newClient, 100))
	require.Equal(t, "reset already queued\n", out.String())
}

func TestRunUsage(t *testing.T) {
	newClient := func() enqueuer { t.Fatal("client must not be created"); return nil }
	for _, args := range [][]string{nil, {"bogus"}, {"reset", "x"}, {"regenerate"}, {"preview"}} {
		require.ErrorIs(t, run(context.Background(), args, &bytes.Buffer{}, newClient, 100), errUsage, args)
	}
}

func TestRunPreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	input := `{"units":[{"name":"Piece","conversionRate":1},{"name":"Box","conversionRate":10}],
		"specifications":[{"name":"Color","values":["Black","White"]}]}`
	require.NoError(t, os.WriteFile(path, []byte(input), 0o600))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"preview", path}, &out, nil, 100))

	var result variants.Preview
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	require.Equal(t, 4, result.Count)
	require.Equal(t, "BLA-PI", result.SKUs[0].SKUCode)
	require.Equal(t, "WHI-BO", result.SKUs[3].SKUCode)

	err := run(context.Background(), []string{"preview", "-limit", "3", path}, &out, nil, 100)
	require.ErrorIs(t, err, variants.ErrTooManyCombinations)
}
