package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// PartitionKey is the table's hash key attribute.
const PartitionKey = "id"

// API is the subset of the DynamoDB client used by DynamoRepo.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type recordItem struct {
	ID        string `dynamodbav:"id"`
	FirstName string `dynamodbav:"first_name"`
	LastName  string `dynamodbav:"last_name"`
	Role      string `dynamodbav:"role"`
	Salary    string `dynamodbav:"salary"`
	PDF       string `dynamodbav:"pdf"`
}

func toItem(r Record) recordItem {
	return recordItem(r)
}

func (it recordItem) record() Record {
	return Record(it)
}

// DynamoRepo implements Repo on a single DynamoDB table keyed by id.
type DynamoRepo struct {
	client    API
	tableName string
}

// NewDynamoRepo wraps client for tableName.
func NewDynamoRepo(client API, tableName string) *DynamoRepo {
	return &DynamoRepo{client: client, tableName: tableName}
}

// Init checks that the table exists and is keyed by a single id hash key.
func (r *DynamoRepo) Init(ctx context.Context) error {
	out, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		var notFound *dynamodbtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return fmt.Errorf("table %s does not exist", r.tableName)
		}
		return fmt.Errorf("failed to describe table %s: %w", r.tableName, err)
	}
	if out.Table == nil || len(out.Table.KeySchema) == 0 {
		return fmt.Errorf("table %s has no key schema", r.tableName)
	}

	var hashKey string
	for _, k := range out.Table.KeySchema {
		if k.KeyType == dynamodbtypes.KeyTypeHash {
			hashKey = aws.ToString(k.AttributeName)
		} else {
			return fmt.Errorf("table %s has a composite key, expected hash key %s only", r.tableName, PartitionKey)
		}
	}
	if hashKey != PartitionKey {
		return fmt.Errorf("table %s has partition key %s, expected %s", r.tableName, hashKey, PartitionKey)
	}
	return nil
}

func (r *DynamoRepo) Get(ctx context.Context, id string) (Record, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       keyFor(id),
	})
	if err != nil {
		return Record{}, fmt.Errorf("get item %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return Record{}, ErrNotFound
	}
	var item recordItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return Record{}, fmt.Errorf("unmarshal item %s: %w", id, err)
	}
	return item.record(), nil
}

func (r *DynamoRepo) Put(ctx context.Context, rec Record) error {
	av, err := attributevalue.MarshalMap(toItem(rec))
	if err != nil {
		return fmt.Errorf("marshal item %s: %w", rec.ID, err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("put item %s: %w", rec.ID, err)
	}
	return nil
}

func (r *DynamoRepo) UpdateFields(ctx context.Context, id string, f Fields) error {
	update := expression.
		Set(expression.Name("first_name"), expression.Value(f.FirstName)).
		Set(expression.Name("last_name"), expression.Value(f.LastName)).
		Set(expression.Name("role"), expression.Value(f.Role)).
		Set(expression.Name("salary"), expression.Value(f.Salary))
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(PartitionKey))).
		Build()
	if err != nil {
		return fmt.Errorf("build update expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       keyFor(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update item %s: %w", id, err)
	}
	return nil
}

func (r *DynamoRepo) Delete(ctx context.Context, id string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name(PartitionKey))).
		Build()
	if err != nil {
		return fmt.Errorf("build delete condition: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      keyFor(id),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

func (r *DynamoRepo) Scan(ctx context.Context) ([]Record, error) {
	return r.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
}

// ScanFirstNameContains uses a contains() filter. DynamoDB rejects an empty
// operand, so an empty substr is a plain scan.
func (r *DynamoRepo) ScanFirstNameContains(ctx context.Context, substr string) ([]Record, error) {
	if substr == "" {
		return r.Scan(ctx)
	}
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("first_name").Contains(substr)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build filter expression: %w", err)
	}
	return r.scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

func (r *DynamoRepo) scan(ctx context.Context, input *dynamodb.ScanInput) ([]Record, error) {
	var out []Record
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan table %s: %w", r.tableName, err)
		}
		var items []recordItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal scan page: %w", err)
		}
		for _, it := range items {
			out = append(out, it.record())
		}
	}
	return out, nil
}

func keyFor(id string) map[string]dynamodbtypes.AttributeValue {
	return map[string]dynamodbtypes.AttributeValue{
		PartitionKey: &dynamodbtypes.AttributeValueMemberS{Value: id},
	}
}

func isConditionFailed(err error) bool {
	var ccf *dynamodbtypes.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

var _ Repo = (*DynamoRepo)(nil)
