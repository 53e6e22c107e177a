package rowstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	dynamoHeaderSK  = "HEADER"
	dynamoRowPrefix = "ROW#"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

type dynamoHeader struct {
	PK       string   `dynamodbav:"PK"`
	SK       string   `dynamodbav:"SK"`
	Headers  []string `dynamodbav:"Headers"`
	RowCount int      `dynamodbav:"RowCount"`
}

type dynamoRow struct {
	PK       string         `dynamodbav:"PK"`
	SK       string         `dynamodbav:"SK"`
	Position int            `dynamodbav:"Position"`
	Cells    map[string]any `dynamodbav:"Cells"`
}

// DynamoStore keeps every sheet in one DynamoDB table: a HEADER item per sheet holding
// the header row and an atomic row counter, plus one ROW# item per data row.
type DynamoStore struct {
	DB    DynamoAPI
	Table string
}

// NewDynamoStore wraps a DynamoDB client.
func NewDynamoStore(db DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{DB: db, Table: table}
}

func dynamoPK(table string) string { return "TABLE#" + table }

func dynamoRowSK(index int) string { return fmt.Sprintf("%s%010d", dynamoRowPrefix, index) }

func dynamoKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func (s *DynamoStore) List(ctx context.Context, table string) ([]Row, error) {
	if _, err := s.header(ctx, table); err != nil {
		return nil, err
	}
	items, err := s.rowItems(ctx, table)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		row := Row{}
		for k, v := range item.Cells {
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// rowItems returns a sheet's row items ordered by position. Positions may have gaps
// where an append reserved a slot but never wrote the row.
func (s *DynamoStore) rowItems(ctx context.Context, table string) ([]dynamoRow, error) {
	var items []dynamoRow
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.DB.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.Table),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :row)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":  &types.AttributeValueMemberS{Value: dynamoPK(table)},
				":row": &types.AttributeValueMemberS{Value: dynamoRowPrefix},
			},
			ExclusiveStartKey: startKey,
			ConsistentRead:    aws.Bool(true),
		})
		if err != nil {
			return nil, err
		}
		var page []dynamoRow
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		items = append(items, page...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items, nil
}

func (s *DynamoStore) Headers(ctx context.Context, table string) ([]string, error) {
	h, err := s.header(ctx, table)
	if err != nil {
		return nil, err
	}
	return h.Headers, nil
}

func (s *DynamoStore) Append(ctx context.Context, table string, row Row) error {
	h, err := s.header(ctx, table)
	if err != nil {
		return err
	}

	out, err := s.DB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Table),
		Key:                 dynamoKey(dynamoPK(table), dynamoHeaderSK),
		UpdateExpression:    aws.String("ADD RowCount :one"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		if isConditionFailure(err) {
			return tableError(ErrTableNotFound, table)
		}
		return err
	}
	count, err := rowCount(out.Attributes)
	if err != nil {
		return err
	}

	position := count - 1
	item, err := attributevalue.MarshalMap(dynamoRow{
		PK:       dynamoPK(table),
		SK:       dynamoRowSK(position),
		Position: position,
		Cells:    project(h.Headers, row),
	})
	if err != nil {
		return err
	}
	_, err = s.DB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	return err
}

func (s *DynamoStore) Update(ctx context.Context, table string, index int, values Row) error {
	h, err := s.header(ctx, table)
	if err != nil {
		return err
	}
	items, err := s.rowItems(ctx, table)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return tableError(ErrRowNotFound, table)
	}
	position := items[index].Position

	cells := project(h.Headers, values)
	if len(cells) == 0 {
		return nil
	}

	names := map[string]string{"#cells": "Cells"}
	exprValues := map[string]types.AttributeValue{}
	keys := make([]string, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	expr := "SET "
	for i, k := range keys {
		av, err := attributevalue.Marshal(cells[k])
		if err != nil {
			return err
		}
		name := "#h" + strconv.Itoa(i)
		value := ":v" + strconv.Itoa(i)
		names[name] = k
		exprValues[value] = av
		if i > 0 {
			expr += ", "
		}
		expr += "#cells." + name + " = " + value
	}

	_, err = s.DB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.Table),
		Key:                       dynamoKey(dynamoPK(table), dynamoRowSK(position)),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(PK)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: exprValues,
	})
	if err != nil && isConditionFailure(err) {
		return tableError(ErrRowNotFound, table)
	}
	return err
}

func (s *DynamoStore) EnsureTable(ctx context.Context, table string, headers []string) error {
	headers = cleanHeaders(headers)
	if len(headers) == 0 {
		return ErrNoHeaders
	}
	item, err := attributevalue.MarshalMap(dynamoHeader{
		PK:      dynamoPK(table),
		SK:      dynamoHeaderSK,
		Headers: headers,
	})
	if err != nil {
		return err
	}
	_, err = s.DB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil && isConditionFailure(err) {
		return nil
	}
	return err
}

func (s *DynamoStore) header(ctx context.Context, table string) (*dynamoHeader, error) {
	out, err := s.DB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Table),
		Key:            dynamoKey(dynamoPK(table), dynamoHeaderSK),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, tableError(ErrTableNotFound, table)
	}
	var h dynamoHeader
	if err := attributevalue.UnmarshalMap(out.Item, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func rowCount(attrs map[string]types.AttributeValue) (int, error) {
	n, ok := attrs["RowCount"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("rowstore: missing RowCount in update result")
	}
	return strconv.Atoi(n.Value)
}

func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
