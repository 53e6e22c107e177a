package rowstore

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo understands exactly the expressions DynamoStore issues.
type fakeDynamo struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	pageSize int
	queries  int
	putFails int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}, pageSize: 2}
}

func itemKey(key map[string]types.AttributeValue) string {
	return key["PK"].(*types.AttributeValueMemberS).Value + "|" + key["SK"].(*types.AttributeValueMemberS).Value
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("conditional check failed")}
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[itemKey(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putFails > 0 {
		f.putFails--
		return nil, errors.New("throttled")
	}
	k := itemKey(in.Item)
	if aws.ToString(in.ConditionExpression) == "attribute_not_exists(PK)" {
		if _, ok := f.items[k]; ok {
			return nil, conditionFailed()
		}
	}
	f.items[k] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := itemKey(in.Key)
	item, ok := f.items[k]
	if !ok {
		return nil, conditionFailed()
	}

	expr := aws.ToString(in.UpdateExpression)
	if strings.HasPrefix(expr, "ADD RowCount") {
		count := 0
		if n, ok := item["RowCount"].(*types.AttributeValueMemberN); ok {
			count, _ = strconv.Atoi(n.Value)
		}
		count++
		updated := &types.AttributeValueMemberN{Value: strconv.Itoa(count)}
		item["RowCount"] = updated
		return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{"RowCount": updated}}, nil
	}

	cells, ok := item["Cells"].(*types.AttributeValueMemberM)
	if !ok {
		cells = &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{}}
		item["Cells"] = cells
	}
	if cells.Value == nil {
		cells.Value = map[string]types.AttributeValue{}
	}
	for _, assignment := range strings.Split(strings.TrimPrefix(expr, "SET "), ", ") {
		parts := strings.Split(assignment, " = ")
		path := strings.TrimPrefix(parts[0], "#cells.")
		cells.Value[in.ExpressionAttributeNames[path]] = in.ExpressionAttributeValues[parts[1]]
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	pk := in.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value
	prefix := in.ExpressionAttributeValues[":row"].(*types.AttributeValueMemberS).Value

	var keys []string
	for k := range f.items {
		if strings.HasPrefix(k, pk+"|"+prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if in.ExclusiveStartKey != nil {
		start := itemKey(in.ExclusiveStartKey)
		idx := sort.SearchStrings(keys, start)
		if idx < len(keys) && keys[idx] == start {
			idx++
		}
		keys = keys[idx:]
	}

	out := &dynamodb.QueryOutput{}
	for i, k := range keys {
		if i == f.pageSize {
			last := out.Items[len(out.Items)-1]
			out.LastEvaluatedKey = map[string]types.AttributeValue{"PK": last["PK"], "SK": last["SK"]}
			break
		}
		out.Items = append(out.Items, f.items[k])
	}
	return out, nil
}

func TestDynamoStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newFakeDynamo()
	store := NewDynamoStore(db, "dispute-sheets")

	if err := store.EnsureTable(ctx, "Dispute Log", []string{"Dispute ID", "Status", "Last Update Date"}); err != nil {
		t.Fatalf("ensure table: %v", err)
	}
	if err := store.EnsureTable(ctx, "Dispute Log", []string{"Other"}); err != nil {
		t.Fatalf("ensure existing table should be a no-op: %v", err)
	}

	for _, id := range []string{"D-1", "D-2", "D-3"} {
		if err := store.Append(ctx, "Dispute Log", Row{"Dispute ID": id, "Status": "Pending", "Ignored": "x"}); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	if err := store.Update(ctx, "Dispute Log", 2, Row{"Status": "Under Review", "Last Update Date": "2024-03-01T10:00:00Z"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	rows, err := store.List(ctx, "Dispute Log")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if db.queries < 2 {
		t.Fatalf("expected paginated queries, got %d", db.queries)
	}
	for i, id := range []string{"D-1", "D-2", "D-3"} {
		if rows[i]["Dispute ID"] != id {
			t.Fatalf("row %d: expected %s, got %v", i, id, rows[i]["Dispute ID"])
		}
		if _, ok := rows[i]["Ignored"]; ok {
			t.Fatalf("unknown header stored")
		}
	}
	if rows[2]["Status"] != "Under Review" || rows[2]["Last Update Date"] != "2024-03-01T10:00:00Z" {
		t.Fatalf("update not applied: %v", rows[2])
	}

	headers, err := store.Headers(ctx, "Dispute Log")
	if err != nil || len(headers) != 3 {
		t.Fatalf("headers: %v %v", headers, err)
	}
}

func TestDynamoStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewDynamoStore(newFakeDynamo(), "dispute-sheets")

	if _, err := store.List(ctx, "Missing"); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
	if err := store.Append(ctx, "Missing", Row{"A": "b"}); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}

	_ = store.EnsureTable(ctx, "Disputes", []string{"Status"})
	if err := store.Update(ctx, "Disputes", 0, Row{"Status": "Paid"}); !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
}

func TestDynamoStoreUpdateAfterFailedAppend(t *testing.T) {
	ctx := context.Background()
	db := newFakeDynamo()
	store := NewDynamoStore(db, "dispute-sheets")
	if err := store.EnsureTable(ctx, "Disputes", []string{"Dispute ID", "Status"}); err != nil {
		t.Fatal(err)
	}

	if err := store.Append(ctx, "Disputes", Row{"Dispute ID": "a", "Status": "Pending"}); err != nil {
		t.Fatal(err)
	}
	db.putFails = 1
	if err := store.Append(ctx, "Disputes", Row{"Dispute ID": "lost", "Status": "Pending"}); err == nil {
		t.Fatal("expected append to fail")
	}
	for _, id := range []string{"b", "c"} {
		if err := store.Append(ctx, "Disputes", Row{"Dispute ID": id, "Status": "Pending"}); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.Update(ctx, "Disputes", 2, Row{"Status": "Resolved"}); err != nil {
		t.Fatalf("update c: %v", err)
	}
	if err := store.Update(ctx, "Disputes", 1, Row{"Status": "Paid"}); err != nil {
		t.Fatalf("update b: %v", err)
	}
	if err := store.Update(ctx, "Disputes", 3, Row{"Status": "Paid"}); !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound past the last row, got %v", err)
	}

	rows, err := store.List(ctx, "Disputes")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"a": "Pending", "b": "Paid", "c": "Resolved"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for _, row := range rows {
		id := row["Dispute ID"].(string)
		if row["Status"] != want[id] {
			t.Fatalf("row %s: expected %s, got %v", id, want[id], row["Status"])
		}
	}
}
