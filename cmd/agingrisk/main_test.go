package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	agingrisk "github.com/andresuchdata/agingrisk/internal/pipeline/aging_risk"
	"github.com/andresuchdata/agingrisk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `{
  "shipments": [
    {"Order Date": "2024-06-01", "SKU": "A", "Qty": "1,000"},
    {"Order Date": "not a date", "SKU": "A", "Qty": 5}
  ],
  "batches": [
    {"SKU": "A", "Production Date": "2024-05-01", "Qty": 100, "Price": 2}
  ],
  "prices": [
    {"sku": "A", "price": 3}
  ]
}`

func TestDecodeFeedAndWriteResult(t *testing.T) {
	feed, err := decodeFeed(strings.NewReader(sampleFeed))
	require.NoError(t, err)
	assert.Len(t, feed.Shipments, 2)
	assert.Len(t, feed.Batches, 1)
	assert.Len(t, feed.Prices, 1)

	cfg := agingrisk.DefaultConfig()
	cfg.WorkerCount = 1
	result, err := agingrisk.NewPipeline(cfg).AnalyzeFeed(context.Background(),
		time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), feed)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, result, true))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "assessments")
	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["skipped_shipment_rows"])
}

func TestDecodeFeed_Invalid(t *testing.T) {
	_, err := decodeFeed(strings.NewReader(`{"batches": 3}`))
	assert.Error(t, err)
}

type memoryObjects struct {
	objects map[string][]byte
}

func (m *memoryObjects) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for k, v := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	return out, nil
}

func (m *memoryObjects) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (m *memoryObjects) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	m.objects[key] = data
	return nil
}

func TestFeedObjectRoundTrip(t *testing.T) {
	objects := &memoryObjects{objects: map[string][]byte{"feeds/2024-06-30.json": []byte(sampleFeed)}}
	ctx := context.Background()

	feed, err := loadFeedObject(ctx, objects, "feeds/2024-06-30.json")
	require.NoError(t, err)

	cfg := agingrisk.DefaultConfig()
	cfg.WorkerCount = 1
	result, err := agingrisk.NewPipeline(cfg).AnalyzeFeed(ctx, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), feed)
	require.NoError(t, err)

	require.NoError(t, archiveResult(ctx, objects, "results/2024-06-30.json", result))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(objects.objects["results/2024-06-30.json"], &decoded))
	assert.Contains(t, decoded, "summary")

	_, err = loadFeedObject(ctx, objects, "feeds/missing.json")
	assert.Error(t, err)
}

func TestListArchives(t *testing.T) {
	objects := &memoryObjects{objects: map[string][]byte{
		"results/2024-06-30.json": []byte("{}"),
		"results/2024-06-01.json": []byte("{\"a\":1}"),
		"feeds/2024-06-30.json":   []byte(sampleFeed),
	}}

	var buf bytes.Buffer
	require.NoError(t, listArchives(context.Background(), objects, "results/", &buf))

	var listed []storage.ObjectInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &listed))
	assert.Equal(t, []storage.ObjectInfo{
		{Key: "results/2024-06-01.json", Size: 7},
		{Key: "results/2024-06-30.json", Size: 2},
	}, listed)
}
