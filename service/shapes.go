package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/smartexpenses/whiteboard/cache"
	"github.com/smartexpenses/whiteboard/models"
	"github.com/smartexpenses/whiteboard/store"
	"github.com/smartexpenses/whiteboard/worker"
)

type CreateShapeParams struct {
	BoardId    string
	ShapeType  string
	ShapeData  json.RawMessage
	LayerOrder *int
}

// CreateShape persists a new shape and broadcasts SHAPE_CREATE to the
// board's shapes channel. When the client leaves the layer order out, the
// shape goes on top: max existing order plus one, starting at zero. That
// read-max/assign/persist sequence holds a per-board lock so concurrent
// creates never share an order. The broadcast only happens once the store
// write succeeded; a rejected create reaches nobody but the sender.
func (s *Service) CreateShape(ctx context.Context, user models.User, params CreateShapeParams) (models.Shape, error) {
	if err := ValidateId(params.BoardId); err != nil {
		return models.Shape{}, err
	}
	if err := ValidateShapeType(params.ShapeType); err != nil {
		return models.Shape{}, err
	}
	if err := ValidateShapeData(params.ShapeData); err != nil {
		return models.Shape{}, err
	}

	board, err := s.Store.GetBoard(ctx, params.BoardId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Shape{}, ErrNotFound
		}
		return models.Shape{}, err
	}

	canEdit, err := s.CanEdit(ctx, board, user.Id)
	if err != nil {
		return models.Shape{}, err
	}
	if !canEdit {
		return models.Shape{}, ErrUnauthorized
	}

	shapeUUID, err := uuid.NewV4()
	if err != nil {
		return models.Shape{}, err
	}

	shape := models.Shape{
		Id:        shapeUUID.String(),
		BoardId:   params.BoardId,
		Type:      params.ShapeType,
		Data:      params.ShapeData,
		CreatedBy: user.Id,
	}

	if params.LayerOrder != nil {
		shape.LayerOrder = *params.LayerOrder
		shape, err = s.Store.CreateShape(ctx, shape)
	} else {
		s.layerLocks.Lock(params.BoardId)
		maxOrder, maxErr := s.Store.GetMaxLayerOrder(ctx, params.BoardId)
		if maxErr != nil {
			s.layerLocks.Unlock(params.BoardId)
			return models.Shape{}, maxErr
		}
		shape.LayerOrder = maxOrder + 1
		shape, err = s.Store.CreateShape(ctx, shape)
		s.layerLocks.Unlock(params.BoardId)
	}
	if err != nil {
		return models.Shape{}, err
	}

	// Async side-effects - return to caller as soon as the store write is done
	go func() {
		bg := context.Background()

		shapeBytes, marshalErr := json.Marshal(shape)
		if marshalErr == nil {
			if cacheErr := s.Cache.AddShape(bg, shape.BoardId, shape.Id, int64(shape.LayerOrder), shapeBytes); cacheErr != nil {
				log.Printf("Failed to cache shape %s: %v", shape.Id, cacheErr)
			}
		}

		s.ActivityBatcher.UpdateCh <- worker.ActivityUpdate{BoardId: shape.BoardId, Delta: 1}

		layerOrder := shape.LayerOrder
		event := ShapeEvent{
			Type:       EventShapeCreate,
			BoardId:    shape.BoardId,
			ShapeId:    shape.Id,
			ShapeType:  shape.Type,
			ShapeData:  shape.Data,
			LayerOrder: &layerOrder,
			UserId:     user.Id,
			UserEmail:  user.Email,
			Timestamp:  time.Now().UnixMilli(),
		}
		eventBytes, _ := json.Marshal(event)
		s.Cache.Publish(bg, boardChannel(shape.BoardId, StreamShapes), eventBytes)
	}()

	// An accepted edit is evidence of presence, explicit subscribe or not
	s.JoinBoard(params.BoardId, user)

	return shape, nil
}

type UpdateShapeParams struct {
	BoardId    string
	ShapeId    string
	ShapeType  *string
	ShapeData  json.RawMessage
	LayerOrder *int
}

// UpdateShape applies a partial update: nil fields keep their stored value.
func (s *Service) UpdateShape(ctx context.Context, user models.User, params UpdateShapeParams) (models.Shape, error) {
	if err := ValidateId(params.BoardId); err != nil {
		return models.Shape{}, err
	}
	if err := ValidateId(params.ShapeId); err != nil {
		return models.Shape{}, err
	}
	if params.ShapeType == nil && params.ShapeData == nil && params.LayerOrder == nil {
		return models.Shape{}, ErrValidation
	}
	if params.ShapeType != nil {
		if err := ValidateShapeType(*params.ShapeType); err != nil {
			return models.Shape{}, err
		}
	}
	if params.ShapeData != nil {
		if err := ValidateShapeData(params.ShapeData); err != nil {
			return models.Shape{}, err
		}
	}

	board, err := s.Store.GetBoard(ctx, params.BoardId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Shape{}, ErrNotFound
		}
		return models.Shape{}, err
	}

	canEdit, err := s.CanEdit(ctx, board, user.Id)
	if err != nil {
		return models.Shape{}, err
	}
	if !canEdit {
		return models.Shape{}, ErrUnauthorized
	}

	patch := models.ShapePatch{
		Type:       params.ShapeType,
		Data:       params.ShapeData,
		LayerOrder: params.LayerOrder,
	}
	shape, err := s.Store.UpdateShape(ctx, params.ShapeId, params.BoardId, patch)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Shape{}, ErrNotFound
		}
		return models.Shape{}, err
	}

	// Async side-effects - return to caller as soon as the store write is done
	go func() {
		bg := context.Background()

		shapeBytes, marshalErr := json.Marshal(shape)
		if marshalErr == nil {
			if cacheErr := s.Cache.AddShape(bg, shape.BoardId, shape.Id, int64(shape.LayerOrder), shapeBytes); cacheErr != nil {
				log.Printf("Failed to cache shape %s: %v", shape.Id, cacheErr)
			}
		}

		s.ActivityBatcher.UpdateCh <- worker.ActivityUpdate{BoardId: shape.BoardId, Delta: 1}

		layerOrder := shape.LayerOrder
		event := ShapeEvent{
			Type:       EventShapeUpdate,
			BoardId:    shape.BoardId,
			ShapeId:    shape.Id,
			ShapeType:  shape.Type,
			ShapeData:  shape.Data,
			LayerOrder: &layerOrder,
			UserId:     user.Id,
			UserEmail:  user.Email,
			Timestamp:  time.Now().UnixMilli(),
		}
		eventBytes, _ := json.Marshal(event)
		s.Cache.Publish(bg, boardChannel(shape.BoardId, StreamShapes), eventBytes)
	}()

	s.JoinBoard(params.BoardId, user)

	return shape, nil
}

// DeleteShape removes a shape. The shape must belong to the given board;
// a mismatched pair is indistinguishable from a missing shape.
func (s *Service) DeleteShape(ctx context.Context, user models.User, boardId string, shapeId string) error {
	if err := ValidateId(boardId); err != nil {
		return err
	}
	if err := ValidateId(shapeId); err != nil {
		return err
	}

	board, err := s.Store.GetBoard(ctx, boardId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	canEdit, err := s.CanEdit(ctx, board, user.Id)
	if err != nil {
		return err
	}
	if !canEdit {
		return ErrUnauthorized
	}

	err = s.Store.DeleteShape(ctx, shapeId, boardId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	// Async side-effects - return to caller as soon as the store delete is done
	go func() {
		bg := context.Background()

		if cacheErr := s.Cache.RemoveShape(bg, boardId, shapeId); cacheErr != nil {
			log.Printf("Failed to evict shape %s: %v", shapeId, cacheErr)
		}

		s.ActivityBatcher.UpdateCh <- worker.ActivityUpdate{BoardId: boardId, Delta: 1}

		event := ShapeEvent{
			Type:      EventShapeDelete,
			BoardId:   boardId,
			ShapeId:   shapeId,
			UserId:    user.Id,
			UserEmail: user.Email,
			Timestamp: time.Now().UnixMilli(),
		}
		eventBytes, _ := json.Marshal(event)
		s.Cache.Publish(bg, boardChannel(boardId, StreamShapes), eventBytes)
	}()

	return nil
}

// GetBoardShapes returns the board's shapes ordered by layer order, served
// from the redis cache when it holds the complete board and primed from the
// store otherwise.
func (s *Service) GetBoardShapes(ctx context.Context, user models.User, boardId string) ([]models.Shape, error) {
	if err := ValidateId(boardId); err != nil {
		return nil, err
	}

	board, err := s.Store.GetBoard(ctx, boardId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	canView, err := s.CanView(ctx, board, user.Id)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, ErrUnauthorized
	}

	cachedRaw, cacheErr := s.Cache.GetShapes(ctx, boardId)
	if cacheErr == nil {
		isComplete, _ := s.Cache.IsBoardComplete(ctx, boardId)
		if isComplete {
			shapes := make([]models.Shape, 0, len(cachedRaw))
			for _, b := range cachedRaw {
				var shape models.Shape
				if err := json.Unmarshal(b, &shape); err == nil {
					shapes = append(shapes, shape)
				}
			}
			return shapes, nil
		}
	}

	// Fallback to DynamoDB and prime the cache
	shapes, err := s.Store.GetBoardShapes(ctx, boardId)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(shapes, func(i, j int) bool {
		return shapes[i].LayerOrder < shapes[j].LayerOrder
	})

	batchItems := make([]cache.ShapeCacheItem, 0, len(shapes))
	for _, shape := range shapes {
		shapeBytes, marshalErr := json.Marshal(shape)
		if marshalErr != nil {
			continue
		}
		batchItems = append(batchItems, cache.ShapeCacheItem{
			ShapeId: shape.Id,
			Score:   int64(shape.LayerOrder),
			Data:    shapeBytes,
		})
	}

	if len(batchItems) > 0 {
		s.Cache.AddShapesBatch(ctx, boardId, batchItems)
	}
	s.Cache.SetBoardComplete(ctx, boardId)

	return shapes, nil
}
