package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gofrs/uuid/v5"

	"github.com/smartexpenses/whiteboard/models"
	"github.com/smartexpenses/whiteboard/store"
)

type DynamoWhiteboardStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoWhiteboardStore(ctx context.Context, devMode bool, dynamodbEndpoint string, tableName string) (*DynamoWhiteboardStore, error) {
	client, err := newDynamoDBClient(context.Background(), devMode, dynamodbEndpoint)
	if err != nil {
		return nil, err
	}

	tables, err := getTables(client, ctx)
	if err != nil {
		return nil, err
	}

	foundTable := false
	for _, table := range tables {
		if table == tableName {
			foundTable = true
			break
		}
	}
	if !foundTable {
		return nil, fmt.Errorf("given table name '%s' not found in dynamodb", tableName)
	}

	return &DynamoWhiteboardStore{client: client, tableName: tableName}, nil
}

func (dynamoStore *DynamoWhiteboardStore) CreateBoard(ctx context.Context, board models.Board) (models.Board, error) {
	boardId, err := uuid.NewV4()
	if err != nil {
		return models.Board{}, err
	}
	board.Id = boardId.String()

	db := boardToDynamo(board)
	db.Created = time.Now().UnixMilli()
	db.Updated = db.Created
	db, _, err = ensureItem(dynamoStore, ctx, db)
	if err != nil {
		return models.Board{}, err
	}

	return boardFromDynamo(db), nil
}

func (dynamoStore *DynamoWhiteboardStore) GetBoard(ctx context.Context, boardId string) (models.Board, error) {
	db, err := getItem[dynamoBoard](dynamoStore, ctx, "BOARD#"+boardId, "META", false)
	if err != nil {
		return models.Board{}, err
	}

	return boardFromDynamo(db), nil
}

func (dynamoStore *DynamoWhiteboardStore) UpdateBoard(ctx context.Context, boardId string, patch models.BoardPatch) (models.Board, error) {
	db := dynamoBoard{
		PK:      "BOARD#" + boardId,
		SK:      "META",
		Updated: time.Now().UnixMilli(),
	}

	fields := []string{"Updated"}
	if patch.Name != nil {
		db.Name = *patch.Name
		fields = append(fields, "Name")
	}
	if patch.Description != nil {
		db.Description = *patch.Description
		fields = append(fields, "Description")
	}
	if patch.IsPublic != nil {
		db.Visibility = boardVisibility(*patch.IsPublic)
		fields = append(fields, "Visibility")
	}

	db, err := updateItem(dynamoStore, ctx, db, fields)
	if err != nil {
		return models.Board{}, err
	}

	return boardFromDynamo(db), nil
}

func (dynamoStore *DynamoWhiteboardStore) DeleteBoard(ctx context.Context, boardId string) error {
	return deleteItemWithCondition(dynamoStore, ctx, "BOARD#"+boardId, "META", "", "")
}

func (dynamoStore *DynamoWhiteboardStore) ListOwnedBoards(ctx context.Context, userId string) ([]models.Board, error) {
	pks, err := queryAllByGSI(dynamoStore, ctx, "GSI_OwnerBoards", "OwnerId", userId)
	if err != nil {
		return nil, err
	}
	return dynamoStore.fetchBoards(ctx, pks)
}

func (dynamoStore *DynamoWhiteboardStore) ListCollaboratingBoards(ctx context.Context, userId string) ([]models.Board, error) {
	pks, err := queryAllByGSI(dynamoStore, ctx, "GSI_UserBoards", "UserId", userId)
	if err != nil {
		return nil, err
	}
	return dynamoStore.fetchBoards(ctx, pks)
}

func (dynamoStore *DynamoWhiteboardStore) ListPublicBoards(ctx context.Context) ([]models.Board, error) {
	pks, err := queryAllByGSI(dynamoStore, ctx, "GSI_PublicBoards", "Visibility", visibilityPublic)
	if err != nil {
		return nil, err
	}
	return dynamoStore.fetchBoards(ctx, pks)
}

// fetchBoards resolves board metas for a list of main-table PKs harvested
// from a GSI query. PKs that vanished between query and fetch are skipped.
func (dynamoStore *DynamoWhiteboardStore) fetchBoards(ctx context.Context, pks []string) ([]models.Board, error) {
	boards := make([]models.Board, 0, len(pks))
	for _, pk := range pks {
		db, err := getItem[dynamoBoard](dynamoStore, ctx, pk, "META", false)
		if err != nil {
			if err == store.ErrItemNotFound {
				continue
			}
			return nil, err
		}
		boards = append(boards, boardFromDynamo(db))
	}
	return boards, nil
}

func (dynamoStore *DynamoWhiteboardStore) GetCollaboratorRole(ctx context.Context, boardId string, userId string) (models.Role, error) {
	dc, err := getItem[dynamoCollaborator](dynamoStore, ctx, "BOARD#"+boardId, "COLLAB#"+userId, false)
	if err != nil {
		return "", err
	}
	return models.Role(dc.Role), nil
}

func (dynamoStore *DynamoWhiteboardStore) PutCollaborator(ctx context.Context, collab models.Collaborator) (models.Collaborator, error) {
	dc := collaboratorToDynamo(collab)
	dc.Created = time.Now().UnixMilli()
	dc, inserted, err := ensureItem(dynamoStore, ctx, dc)
	if err != nil {
		return models.Collaborator{}, err
	}
	if !inserted {
		return models.Collaborator{}, store.ErrConditionFailed
	}
	return collaboratorFromDynamo(dc), nil
}

func (dynamoStore *DynamoWhiteboardStore) UpdateCollaboratorRole(ctx context.Context, boardId string, userId string, role models.Role) error {
	dc := dynamoCollaborator{
		PK:   "BOARD#" + boardId,
		SK:   "COLLAB#" + userId,
		Role: string(role),
	}
	_, err := updateItem(dynamoStore, ctx, dc, []string{"Role"})
	return err
}

func (dynamoStore *DynamoWhiteboardStore) DeleteCollaborator(ctx context.Context, boardId string, userId string) error {
	return deleteItemWithCondition(dynamoStore, ctx, "BOARD#"+boardId, "COLLAB#"+userId, "", "")
}

func (dynamoStore *DynamoWhiteboardStore) ListCollaborators(ctx context.Context, boardId string) ([]models.Collaborator, error) {
	dcs, err := queryAllByPKPrefix[dynamoCollaborator](dynamoStore, ctx, "BOARD#"+boardId, "COLLAB#", true, 0)
	if err != nil {
		return nil, err
	}

	collabs := make([]models.Collaborator, 0, len(dcs))
	for _, dc := range dcs {
		collabs = append(collabs, collaboratorFromDynamo(dc))
	}
	return collabs, nil
}

func (dynamoStore *DynamoWhiteboardStore) GetBoardShapes(ctx context.Context, boardId string) ([]models.Shape, error) {
	dynamoShapes, err := queryAllByPKPrefix[dynamoShape](dynamoStore, ctx, "BOARD#"+boardId, "SHAPE#", true, 0)
	if err != nil {
		return []models.Shape{}, err
	}

	shapes := make([]models.Shape, 0, len(dynamoShapes))
	for _, ds := range dynamoShapes {
		shapes = append(shapes, shapeFromDynamo(ds))
	}
	return shapes, nil
}

func (dynamoStore *DynamoWhiteboardStore) GetMaxLayerOrder(ctx context.Context, boardId string) (int, error) {
	// Layer order is not a sort key, so take the max over the board's shapes.
	// Callers serialize concurrent auto-assignment per board.
	dynamoShapes, err := queryAllByPKPrefix[dynamoShape](dynamoStore, ctx, "BOARD#"+boardId, "SHAPE#", true, 0)
	if err != nil {
		return -1, err
	}

	maxOrder := -1
	for _, ds := range dynamoShapes {
		if ds.LayerOrder > maxOrder {
			maxOrder = ds.LayerOrder
		}
	}
	return maxOrder, nil
}

func (dynamoStore *DynamoWhiteboardStore) CreateShape(ctx context.Context, shape models.Shape) (models.Shape, error) {
	ds := shapeToDynamo(shape)
	ds.Created = time.Now().UnixMilli()
	ds.Updated = ds.Created
	ds, _, err := ensureItem(dynamoStore, ctx, ds)
	if err != nil {
		return models.Shape{}, err
	}

	return shapeFromDynamo(ds), nil
}

func (dynamoStore *DynamoWhiteboardStore) UpdateShape(ctx context.Context, shapeId string, boardId string, patch models.ShapePatch) (models.Shape, error) {
	ds := dynamoShape{
		PK:      "BOARD#" + boardId,
		SK:      "SHAPE#" + shapeId,
		Updated: time.Now().UnixMilli(),
	}

	fields := []string{"Updated"}
	if patch.Type != nil {
		ds.ShapeType = *patch.Type
		fields = append(fields, "ShapeType")
	}
	if patch.Data != nil {
		ds.ShapeData = patch.Data
		fields = append(fields, "ShapeData")
	}
	if patch.LayerOrder != nil {
		ds.LayerOrder = *patch.LayerOrder
		fields = append(fields, "LayerOrder")
	}

	ds, err := updateItem(dynamoStore, ctx, ds, fields)
	if err != nil {
		return models.Shape{}, err
	}

	return shapeFromDynamo(ds), nil
}

func (dynamoStore *DynamoWhiteboardStore) DeleteShape(ctx context.Context, shapeId string, boardId string) error {
	// A shape stored under a different board has a different PK, so a
	// board mismatch naturally reports ErrItemNotFound.
	return deleteItemWithCondition(dynamoStore, ctx, "BOARD#"+boardId, "SHAPE#"+shapeId, "", "")
}

func (dynamoStore *DynamoWhiteboardStore) PurgeBoard(ctx context.Context, boardId string) error {
	return batchDeleteByPKThrottled(dynamoStore, ctx, "BOARD#"+boardId, 50*time.Millisecond)
}

func (dynamoStore *DynamoWhiteboardStore) IncrementBoardEditCount(ctx context.Context, boardId string, count int) error {
	return incrementCounter(dynamoStore, ctx, "BOARD#"+boardId, "META", "EditCount", count)
}
