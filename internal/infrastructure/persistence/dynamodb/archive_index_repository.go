package dynamodb

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dreschagin/netpulse/internal/application/port"
)

const (
	defaultListLimit  = 24
	maxListLimit      = 100
	maxBatchWriteSize = 25
	maxBatchRetries   = 5

	attrPK          = "PK"
	attrSK          = "SK"
	attrDay         = "day"
	attrS3Key       = "s3_key"
	attrURL         = "url"
	attrSampleCount = "sample_count"
	attrFromMS      = "from_ms"
	attrToMS        = "to_ms"
	attrSizeBytes   = "size_bytes"
	attrArchivedAt  = "archived_at"
	attrExpiresAt   = "expires_at"
)

var dayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type Config struct {
	TableName       string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	StrongReads     bool
}

// ArchiveIndexRepository stores archive batch metadata partitioned by day.
// Implements port.ArchiveIndex.
type ArchiveIndexRepository struct {
	client      *dynamodb.Client
	tableName   string
	strongReads bool
}

type cursorPayload struct {
	Day string                 `json:"day"`
	Key map[string]cursorValue `json:"key"`
}

type cursorValue struct {
	S string `json:"s,omitempty"`
	N string `json:"n,omitempty"`
}

func NewArchiveIndexRepository(ctx context.Context, cfg Config) (*ArchiveIndexRepository, error) {
	if strings.TrimSpace(cfg.TableName) == "" {
		return nil, fmt.Errorf("dynamodb table name is required")
	}

	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = "us-east-1"
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	accessKeyID := strings.TrimSpace(cfg.AccessKeyID)
	secretAccessKey := strings.TrimSpace(cfg.SecretAccessKey)
	if accessKeyID != "" || secretAccessKey != "" {
		if accessKeyID == "" || secretAccessKey == "" {
			return nil, fmt.Errorf("both dynamodb access key id and secret access key are required for static credentials")
		}
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws config for dynamodb: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(options *dynamodb.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			options.BaseEndpoint = &endpoint
		}
	})

	return &ArchiveIndexRepository{
		client:      client,
		tableName:   strings.TrimSpace(cfg.TableName),
		strongReads: cfg.StrongReads,
	}, nil
}

// PutBatch writes the archive records in DynamoDB batch-write chunks.
func (r *ArchiveIndexRepository) PutBatch(ctx context.Context, records []port.ArchiveRecord) error {
	if len(records) == 0 {
		return nil
	}

	for start := 0; start < len(records); start += maxBatchWriteSize {
		end := start + maxBatchWriteSize
		if end > len(records) {
			end = len(records)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, record := range records[start:end] {
			item, err := r.toItem(record)
			if err != nil {
				return err
			}
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := r.writeBatchWithRetry(ctx, requests); err != nil {
			return err
		}
	}

	return nil
}

// ListByDay returns the archive records of one day, newest first.
func (r *ArchiveIndexRepository) ListByDay(ctx context.Context, query port.ArchiveListQuery) (port.ArchiveListPage, error) {
	day := strings.TrimSpace(query.Day)
	if !dayPattern.MatchString(day) {
		return port.ArchiveListPage{}, fmt.Errorf("invalid day, expected YYYY-MM-DD")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	keyCondition := "#pk = :pk"
	input := &dynamodb.QueryInput{
		TableName:                &r.tableName,
		KeyConditionExpression:   &keyCondition,
		Limit:                    int32Pointer(int32(limit)),
		ScanIndexForward:         boolPointer(false),
		ConsistentRead:           boolPointer(r.strongReads),
		ExpressionAttributeNames: map[string]string{"#pk": attrPK},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: buildPK(day)},
		},
	}

	if strings.TrimSpace(query.Cursor) != "" {
		exclusiveStartKey, err := decodeCursor(query.Cursor, day)
		if err != nil {
			return port.ArchiveListPage{}, err
		}
		input.ExclusiveStartKey = exclusiveStartKey
	}

	output, err := r.client.Query(ctx, input)
	if err != nil {
		return port.ArchiveListPage{}, fmt.Errorf("dynamodb query failed: %w", err)
	}

	items := make([]port.ArchiveRecord, 0, len(output.Items))
	for _, raw := range output.Items {
		item, err := fromItem(raw)
		if err != nil {
			return port.ArchiveListPage{}, err
		}
		items = append(items, item)
	}

	nextCursor := ""
	if len(output.LastEvaluatedKey) > 0 {
		nextCursor, err = encodeCursor(output.LastEvaluatedKey, day)
		if err != nil {
			return port.ArchiveListPage{}, err
		}
	}

	return port.ArchiveListPage{
		Items:      items,
		NextCursor: nextCursor,
	}, nil
}

func (r *ArchiveIndexRepository) writeBatchWithRetry(ctx context.Context, requests []types.WriteRequest) error {
	if len(requests) == 0 {
		return nil
	}

	pending := map[string][]types.WriteRequest{
		r.tableName: requests,
	}

	for attempt := 0; attempt < maxBatchRetries; attempt++ {
		output, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: pending,
		})
		if err != nil {
			return fmt.Errorf("dynamodb batch write failed: %w", err)
		}

		if len(output.UnprocessedItems) == 0 {
			return nil
		}

		pending = output.UnprocessedItems
		time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
	}

	return fmt.Errorf("dynamodb batch write has unprocessed items after retries")
}

func (r *ArchiveIndexRepository) toItem(record port.ArchiveRecord) (map[string]types.AttributeValue, error) {
	day := strings.TrimSpace(record.Day)
	s3Key := strings.TrimSpace(record.S3Key)
	if !dayPattern.MatchString(day) {
		return nil, fmt.Errorf("invalid day, expected YYYY-MM-DD")
	}
	if s3Key == "" {
		return nil, fmt.Errorf("s3_key is required")
	}

	archivedAt := record.ArchivedAt.UTC()
	if archivedAt.IsZero() {
		archivedAt = time.Now().UTC()
	}
	archivedAtMS := archivedAt.UnixMilli()

	item := map[string]types.AttributeValue{
		attrPK:          &types.AttributeValueMemberS{Value: buildPK(day)},
		attrSK:          &types.AttributeValueMemberS{Value: buildSK(archivedAtMS, s3Key)},
		attrDay:         &types.AttributeValueMemberS{Value: day},
		attrS3Key:       &types.AttributeValueMemberS{Value: s3Key},
		attrSampleCount: &types.AttributeValueMemberN{Value: strconv.Itoa(record.SampleCount)},
		attrArchivedAt:  &types.AttributeValueMemberN{Value: strconv.FormatInt(archivedAtMS, 10)},
	}

	if url := strings.TrimSpace(record.URL); url != "" {
		item[attrURL] = &types.AttributeValueMemberS{Value: url}
	}
	if !record.From.IsZero() {
		item[attrFromMS] = &types.AttributeValueMemberN{Value: strconv.FormatInt(record.From.UTC().UnixMilli(), 10)}
	}
	if !record.To.IsZero() {
		item[attrToMS] = &types.AttributeValueMemberN{Value: strconv.FormatInt(record.To.UTC().UnixMilli(), 10)}
	}
	if record.SizeBytes > 0 {
		item[attrSizeBytes] = &types.AttributeValueMemberN{Value: strconv.FormatInt(record.SizeBytes, 10)}
	}
	if !record.ExpiresAt.IsZero() {
		item[attrExpiresAt] = &types.AttributeValueMemberN{Value: strconv.FormatInt(record.ExpiresAt.UTC().Unix(), 10)}
	}

	return item, nil
}

func fromItem(item map[string]types.AttributeValue) (port.ArchiveRecord, error) {
	day, err := attrString(item, attrDay)
	if err != nil {
		return port.ArchiveRecord{}, err
	}
	s3Key, err := attrString(item, attrS3Key)
	if err != nil {
		return port.ArchiveRecord{}, err
	}
	archivedAtMS, err := attrInt64(item, attrArchivedAt)
	if err != nil {
		return port.ArchiveRecord{}, err
	}

	record := port.ArchiveRecord{
		Day:         day,
		S3Key:       s3Key,
		URL:         optionalString(item, attrURL),
		SampleCount: int(optionalInt64(item, attrSampleCount)),
		SizeBytes:   optionalInt64(item, attrSizeBytes),
		ArchivedAt:  time.UnixMilli(archivedAtMS).UTC(),
	}

	if fromMS := optionalInt64(item, attrFromMS); fromMS > 0 {
		record.From = time.UnixMilli(fromMS).UTC()
	}
	if toMS := optionalInt64(item, attrToMS); toMS > 0 {
		record.To = time.UnixMilli(toMS).UTC()
	}
	if expiresAtSeconds := optionalInt64(item, attrExpiresAt); expiresAtSeconds > 0 {
		record.ExpiresAt = time.Unix(expiresAtSeconds, 0).UTC()
	}

	return record, nil
}

func buildPK(day string) string {
	return "DAY#" + day
}

func buildSK(archivedAtMS int64, s3Key string) string {
	return fmt.Sprintf("TS#%013d#KEY#%s", archivedAtMS, objectHash(s3Key))
}

func objectHash(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func encodeCursor(key map[string]types.AttributeValue, day string) (string, error) {
	values := make(map[string]cursorValue, len(key))
	for attributeName, raw := range key {
		switch value := raw.(type) {
		case *types.AttributeValueMemberS:
			values[attributeName] = cursorValue{S: value.Value}
		case *types.AttributeValueMemberN:
			values[attributeName] = cursorValue{N: value.Value}
		default:
			return "", fmt.Errorf("unsupported cursor attribute type for %s", attributeName)
		}
	}

	payload := cursorPayload{
		Day: day,
		Key: values,
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(serialized), nil
}

func decodeCursor(cursor, day string) (map[string]types.AttributeValue, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor")
	}

	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("invalid cursor")
	}

	if payload.Day != day {
		return nil, fmt.Errorf("cursor does not match query filters")
	}

	key := make(map[string]types.AttributeValue, len(payload.Key))
	for attributeName, value := range payload.Key {
		if value.S != "" {
			key[attributeName] = &types.AttributeValueMemberS{Value: value.S}
			continue
		}
		if value.N != "" {
			key[attributeName] = &types.AttributeValueMemberN{Value: value.N}
			continue
		}
		return nil, fmt.Errorf("invalid cursor")
	}

	return key, nil
}

func attrString(item map[string]types.AttributeValue, name string) (string, error) {
	raw, ok := item[name]
	if !ok {
		return "", fmt.Errorf("missing attribute %s", name)
	}
	value, ok := raw.(*types.AttributeValueMemberS)
	if !ok || strings.TrimSpace(value.Value) == "" {
		return "", fmt.Errorf("invalid attribute %s", name)
	}
	return value.Value, nil
}

func optionalString(item map[string]types.AttributeValue, name string) string {
	raw, ok := item[name]
	if !ok {
		return ""
	}
	value, ok := raw.(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return value.Value
}

func attrInt64(item map[string]types.AttributeValue, name string) (int64, error) {
	raw, ok := item[name]
	if !ok {
		return 0, fmt.Errorf("missing attribute %s", name)
	}
	value, ok := raw.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("invalid attribute %s", name)
	}
	parsed, err := strconv.ParseInt(value.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid attribute %s: %w", name, err)
	}
	return parsed, nil
}

func optionalInt64(item map[string]types.AttributeValue, name string) int64 {
	raw, ok := item[name]
	if !ok {
		return 0
	}
	value, ok := raw.(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	parsed, err := strconv.ParseInt(value.Value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func boolPointer(v bool) *bool {
	return &v
}

func int32Pointer(v int32) *int32 {
	return &v
}
