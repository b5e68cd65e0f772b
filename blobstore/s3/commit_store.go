package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/csrgo/blobstore"
)

// CurrentName is the base name of pointer blobs kept in DynamoDB.
const CurrentName = "CURRENT"

// CommitStore implements blobstore.BlobStore backed by S3, with DynamoDB
// holding every blob whose base name is CURRENT. Writes of such a pointer
// are conditional puts of the next version number, so two publishers racing
// on the same graph cannot both win.
//
// Table schema:
//   - Partition key: base_uri (string) - store URI plus the pointer's directory
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name csrgo-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type CommitStore struct {
	*Store
	ddb       DDBClient
	tableName string
	baseURI   string
}

// DDBClient is the subset of the DynamoDB API CommitStore uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

// ErrConcurrentModification is returned when another writer committed the
// same pointer version first.
var ErrConcurrentModification = errors.New("s3: concurrent modification detected")

// NewCommitStore wraps store. baseURI (for example "s3://bucket/prefix")
// namespaces the commit log inside the table.
func NewCommitStore(store *Store, ddb DDBClient, tableName, baseURI string) *CommitStore {
	return &CommitStore{
		Store:     store,
		ddb:       ddb,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

// NewCommitStoreFromConfig creates the DynamoDB client from the default AWS
// configuration and uses "s3://<bucket>/<prefix>" as base URI.
func NewCommitStoreFromConfig(ctx context.Context, store *Store, tableName string, opts ...Option) (*CommitStore, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	cfg, err := loadConfig(ctx, o)
	if err != nil {
		return nil, err
	}
	uri := "s3://" + path.Join(store.bucket, store.prefix)
	return NewCommitStore(store, dynamodb.NewFromConfig(cfg), tableName, uri), nil
}

func isPointer(name string) bool {
	return path.Base(name) == CurrentName
}

func (s *CommitStore) partition(name string) string {
	return s.baseURI + "#" + path.Dir(name)
}

// Open reads pointer blobs from the commit log and everything else from S3.
func (s *CommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if !isPointer(name) {
		return s.Store.Open(ctx, name)
	}
	version, target, err := s.latest(ctx, name)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, fmt.Errorf("s3: %s: %w", name, blobstore.ErrNotFound)
	}
	return &pointerBlob{content: []byte(target)}, nil
}

// Put commits pointer blobs to DynamoDB and uploads everything else.
func (s *CommitStore) Put(ctx context.Context, name string, data []byte) error {
	if !isPointer(name) {
		return s.Store.Put(ctx, name, data)
	}
	return s.commit(ctx, name, string(data))
}

// Create rejects pointer names; pointers are only written with Put.
func (s *CommitStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if isPointer(name) {
		return nil, fmt.Errorf("s3: %s: pointer blobs must be written with Put", name)
	}
	return s.Store.Create(ctx, name)
}

// Version returns the latest committed version of a pointer, 0 if none.
func (s *CommitStore) Version(ctx context.Context, name string) (uint64, error) {
	v, _, err := s.latest(ctx, name)
	return v, err
}

func (s *CommitStore) latest(ctx context.Context, name string) (uint64, string, error) {
	resp, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.partition(name)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
		ConsistentRead:   aws.Bool(true),
	})
	if err != nil {
		return 0, "", fmt.Errorf("s3: query commit log: %w", err)
	}
	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("s3: commit log item without numeric version")
	}
	targetAttr, ok := item["target"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("s3: commit log item without target")
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("s3: commit log version: %w", err)
	}
	return version, targetAttr.Value, nil
}

func (s *CommitStore) commit(ctx context.Context, name, target string) error {
	current, _, err := s.latest(ctx, name)
	if err != nil {
		return err
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: s.partition(name)},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(current+1, 10)},
			"target":   &types.AttributeValueMemberS{Value: target},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("%w: %s version %d", ErrConcurrentModification, name, current+1)
		}
		return fmt.Errorf("s3: commit %s: %w", name, err)
	}
	return nil
}

// pointerBlob serves a committed pointer's target.
type pointerBlob struct {
	content []byte
}

func (b *pointerBlob) Close() error {
	return nil
}

func (b *pointerBlob) Size() int64 {
	return int64(len(b.content))
}

func (b *pointerBlob) Bytes() ([]byte, error) {
	return b.content, nil
}

func (b *pointerBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off >= int64(len(b.content)) {
		return 0, io.EOF
	}
	n := copy(p, b.content[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *pointerBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= int64(len(b.content)) {
		return nil, io.EOF
	}
	end := min(off+length, int64(len(b.content)))
	return io.NopCloser(bytes.NewReader(b.content[off:end])), nil
}
