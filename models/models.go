package models

import "encoding/json"

// User is the verified identity bound to a connection. It is derived from
// the bearer token at connect time and never persisted by this service.
type User struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}

type Board struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerId     string `json:"ownerId"`
	IsPublic    bool   `json:"isPublic"`
	EditCount   int    `json:"editCount,omitempty"`
	Created     int64  `json:"createdAt"`
	Updated     int64  `json:"updatedAt"`
}

// BoardPatch carries a partial board update. Nil fields are left unchanged.
type BoardPatch struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

type Collaborator struct {
	BoardId string `json:"boardId"`
	UserId  string `json:"userId"`
	Role    Role   `json:"role"`
	Created int64  `json:"createdAt"`
}

// Shape.Data is an opaque document: the backend validates that it is a JSON
// object and passes the raw bytes through unexamined. Only the client
// renderer interprets its contents.
type Shape struct {
	Id         string          `json:"id"`
	BoardId    string          `json:"boardId"`
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data,omitempty"`
	LayerOrder int             `json:"layerOrder"`
	CreatedBy  string          `json:"createdBy"`
	Created    int64           `json:"createdAt"`
	Updated    int64           `json:"updatedAt"`
}

// ShapePatch carries a partial shape update. Nil fields are left unchanged.
type ShapePatch struct {
	Type       *string
	Data       json.RawMessage
	LayerOrder *int
}
