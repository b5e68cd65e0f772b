package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/csrgo/blobstore"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue // key -> item
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func (m *mockDDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	baseURI := params.Item["base_uri"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := baseURI + ":" + version

	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	baseURI := params.ExpressionAttributeValues[":uri"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["base_uri"].(*types.AttributeValueMemberS).Value == baseURI {
			items = append(items, item)
		}
	}

	version := func(item map[string]types.AttributeValue) uint64 {
		v, _ := strconv.ParseUint(item["version"].(*types.AttributeValueMemberN).Value, 10, 64)
		return v
	}
	sort.Slice(items, func(i, j int) bool {
		if aws.ToBool(params.ScanIndexForward) {
			return version(items[i]) < version(items[j])
		}
		return version(items[i]) > version(items[j])
	})

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}

	return &dynamodb.QueryOutput{Items: items}, nil
}

func newTestCommitStore(ddb DDBClient, baseURI string) *CommitStore {
	return NewCommitStore(NewStore(&MockS3Client{}, "test-bucket", "test/"), ddb, "csrgo-commits", baseURI)
}

func readPointer(t *testing.T, store blobstore.BlobStore, name string) string {
	t.Helper()
	b, err := store.Open(context.Background(), name)
	require.NoError(t, err)
	defer b.Close()

	buf := make([]byte, b.Size())
	_, err = b.ReadAt(context.Background(), buf, 0)
	require.NoError(t, err)
	return string(buf)
}

func TestCommitStore_FirstCommit(t *testing.T) {
	ctx := context.Background()
	store := newTestCommitStore(newMockDDBClient(), "s3://test-bucket/test")

	require.NoError(t, store.Put(ctx, "graphs/web/CURRENT", []byte("v-0001.csrz")))
	assert.Equal(t, "v-0001.csrz", readPointer(t, store, "graphs/web/CURRENT"))

	v, err := store.Version(ctx, "graphs/web/CURRENT")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
}

func TestCommitStore_MultipleCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestCommitStore(newMockDDBClient(), "s3://test-bucket/test")

	for i := 1; i <= 12; i++ {
		require.NoError(t, store.Put(ctx, "CURRENT", []byte(fmt.Sprintf("v-%04d.csrz", i))))
	}

	assert.Equal(t, "v-0012.csrz", readPointer(t, store, "CURRENT"))
}

func TestCommitStore_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestCommitStore(newMockDDBClient(), "s3://test-bucket/test")

	require.NoError(t, store.Put(ctx, "g/CURRENT", []byte("v-0001.csrz")))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Put(ctx, "g/CURRENT", []byte(fmt.Sprintf("v-%04d.csrz", i+2)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrConcurrentModification):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Greater(t, successes, 0, "at least one writer should succeed")
	v, err := store.Version(ctx, "g/CURRENT")
	require.NoError(t, err)
	assert.Equal(t, uint64(1+successes), v, "every success committed a distinct version")
}

func TestCommitStore_NotFoundBeforeCommit(t *testing.T) {
	store := newTestCommitStore(newMockDDBClient(), "s3://test-bucket/test")

	_, err := store.Open(context.Background(), "CURRENT")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestCommitStore_IsolatedNamespaces(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()

	store1 := newTestCommitStore(ddb, "s3://bucket-a/path")
	store2 := newTestCommitStore(ddb, "s3://bucket-b/path")

	require.NoError(t, store1.Put(ctx, "web/CURRENT", []byte("A")))
	require.NoError(t, store2.Put(ctx, "web/CURRENT", []byte("B")))
	require.NoError(t, store1.Put(ctx, "road/CURRENT", []byte("C")))

	assert.Equal(t, "A", readPointer(t, store1, "web/CURRENT"))
	assert.Equal(t, "B", readPointer(t, store2, "web/CURRENT"))
	assert.Equal(t, "C", readPointer(t, store1, "road/CURRENT"))
}

func TestCommitStore_DelegatesOtherNames(t *testing.T) {
	s3Client := new(MockS3Client)
	store := NewCommitStore(NewStore(s3Client, "b", ""), newMockDDBClient(), "t", "s3://b")

	s3Client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Key == "web/v-0001.csrz"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Put(context.Background(), "web/v-0001.csrz", []byte("img")))
	s3Client.AssertExpectations(t)

	_, err := store.Create(context.Background(), "web/CURRENT")
	assert.Error(t, err)
}

func TestPointerBlob(t *testing.T) {
	b := &pointerBlob{content: []byte("abc")}
	rd, err := b.ReadRange(context.Background(), 1, 10)
	require.NoError(t, err)
	got, _ := io.ReadAll(rd)
	assert.Equal(t, "bc", string(got))

	data, err := b.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}
