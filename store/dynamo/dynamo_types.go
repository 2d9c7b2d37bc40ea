package dynamo

import (
	"encoding/json"
	"strings"

	"github.com/smartexpenses/whiteboard/models"
)

// Single-table layout:
//   Board:        PK=BOARD#<boardId>  SK=META
//   Shape:        PK=BOARD#<boardId>  SK=SHAPE#<shapeId>
//   Collaborator: PK=BOARD#<boardId>  SK=COLLAB#<userId>
// GSI_OwnerBoards   partitions board rows by OwnerId.
// GSI_UserBoards    partitions collaborator rows by UserId.
// GSI_PublicBoards  partitions board rows by Visibility (PUBLIC / PRIVATE).

type dynamoBoard struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	Id          string `dynamodbav:"Id"`
	Name        string `dynamodbav:"Name"`
	Description string `dynamodbav:"Description"`
	OwnerId     string `dynamodbav:"OwnerId"`
	Visibility  string `dynamodbav:"Visibility"`
	EditCount   int    `dynamodbav:"EditCount"`
	Created     int64  `dynamodbav:"Created"`
	Updated     int64  `dynamodbav:"Updated"`
}

const (
	visibilityPublic  = "PUBLIC"
	visibilityPrivate = "PRIVATE"
)

func boardVisibility(isPublic bool) string {
	if isPublic {
		return visibilityPublic
	}
	return visibilityPrivate
}

// Map domain Board -> Dynamo
func boardToDynamo(b models.Board) dynamoBoard {
	return dynamoBoard{
		PK:          "BOARD#" + b.Id,
		SK:          "META",
		Id:          b.Id,
		Name:        b.Name,
		Description: b.Description,
		OwnerId:     b.OwnerId,
		Visibility:  boardVisibility(b.IsPublic),
		EditCount:   b.EditCount,
		Created:     b.Created,
		Updated:     b.Updated,
	}
}

// Map Dynamo -> domain Board
func boardFromDynamo(db dynamoBoard) models.Board {
	return models.Board{
		Id:          db.Id,
		Name:        db.Name,
		Description: db.Description,
		OwnerId:     db.OwnerId,
		IsPublic:    db.Visibility == visibilityPublic,
		EditCount:   db.EditCount,
		Created:     db.Created,
		Updated:     db.Updated,
	}
}

type dynamoShape struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	ShapeType  string `dynamodbav:"ShapeType"`
	ShapeData  []byte `dynamodbav:"ShapeData"`
	LayerOrder int    `dynamodbav:"LayerOrder"`
	CreatedBy  string `dynamodbav:"CreatedBy"`
	Created    int64  `dynamodbav:"Created"`
	Updated    int64  `dynamodbav:"Updated"`
}

// Map domain Shape -> Dynamo
func shapeToDynamo(s models.Shape) dynamoShape {
	return dynamoShape{
		PK:         "BOARD#" + s.BoardId,
		SK:         "SHAPE#" + s.Id,
		ShapeType:  s.Type,
		ShapeData:  s.Data,
		LayerOrder: s.LayerOrder,
		CreatedBy:  s.CreatedBy,
		Created:    s.Created,
		Updated:    s.Updated,
	}
}

// Map Dynamo -> domain Shape
func shapeFromDynamo(ds dynamoShape) models.Shape {
	return models.Shape{
		Id:         strings.TrimPrefix(ds.SK, "SHAPE#"),
		BoardId:    strings.TrimPrefix(ds.PK, "BOARD#"),
		Type:       ds.ShapeType,
		Data:       json.RawMessage(ds.ShapeData),
		LayerOrder: ds.LayerOrder,
		CreatedBy:  ds.CreatedBy,
		Created:    ds.Created,
		Updated:    ds.Updated,
	}
}

type dynamoCollaborator struct {
	PK      string `dynamodbav:"PK"`
	SK      string `dynamodbav:"SK"`
	UserId  string `dynamodbav:"UserId"`
	Role    string `dynamodbav:"Role"`
	Created int64  `dynamodbav:"Created"`
}

// Map domain Collaborator -> Dynamo
func collaboratorToDynamo(c models.Collaborator) dynamoCollaborator {
	return dynamoCollaborator{
		PK:      "BOARD#" + c.BoardId,
		SK:      "COLLAB#" + c.UserId,
		UserId:  c.UserId,
		Role:    string(c.Role),
		Created: c.Created,
	}
}

// Map Dynamo -> domain Collaborator
func collaboratorFromDynamo(dc dynamoCollaborator) models.Collaborator {
	return models.Collaborator{
		BoardId: strings.TrimPrefix(dc.PK, "BOARD#"),
		UserId:  dc.UserId,
		Role:    models.Role(dc.Role),
		Created: dc.Created,
	}
}
