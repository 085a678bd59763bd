package editor

import (
	"encoding/json"

	"github.com/annel0/isomap/internal/world"
	"github.com/annel0/isomap/internal/world/tile"
)

// MessageType тип сообщения протокола редактора
type MessageType string

const (
	MsgInfo     MessageType = "info"
	MsgNode     MessageType = "node"
	MsgRaise    MessageType = "raise"
	MsgLower    MessageType = "lower"
	MsgLevel    MessageType = "level"
	MsgPlace    MessageType = "place"
	MsgDemolish MessageType = "demolish"
	MsgPick     MessageType = "pick"
	MsgSave     MessageType = "save"

	MsgResult MessageType = "result"
	MsgError  MessageType = "error"
	MsgEvent  MessageType = "event" // событие карты из шины
)

// Message конверт всех сообщений. ID запроса повторяется в ответе.
type Message struct {
	Type    MessageType     `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EditRequest параметры команд редактирования
type EditRequest struct {
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Times     int     `json:"times,omitempty"`  // raise/lower, по умолчанию 1
	Radius    int     `json:"radius,omitempty"` // level
	Tile      tile.ID `json:"tile,omitempty"`   // place
	Width     int     `json:"width,omitempty"`  // demolish, по умолчанию 1
	Height    int     `json:"height,omitempty"`
	Layer     string  `json:"layer,omitempty"` // demolish и pick, пусто: NONE
	Neighbors *bool   `json:"neighbors,omitempty"`
	ScreenX   int     `json:"sx,omitempty"` // pick
	ScreenY   int     `json:"sy,omitempty"`
}

// NodeInfo описывает узел в ответах
type NodeInfo struct {
	X      int                     `json:"x"`
	Y      int                     `json:"y"`
	Height int                     `json:"height"`
	Slope  bool                    `json:"slope"`
	Tiles  map[world.Layer]tile.ID `json:"tiles,omitempty"`
}

// MapInfo ответ на info
type MapInfo struct {
	ID        string      `json:"id"`
	Columns   int         `json:"columns"`
	Rows      int         `json:"rows"`
	MaxHeight int         `json:"max_height"`
	Stats     world.Stats `json:"stats"`
}

// PickResult ответ на pick
type PickResult struct {
	Found bool      `json:"found"`
	Node  *NodeInfo `json:"node,omitempty"`
}

// DemolishResult ответ на demolish
type DemolishResult struct {
	Demolished uint64 `json:"demolished"`
}

// Коды ошибок
const (
	CodeBadRequest  = "bad_request"
	CodeOutOfBounds = "out_of_bounds"
	CodeRejected    = "rejected"
	CodeMissingTile = "missing_tile"
	CodeInternal    = "internal"
)

// ErrorPayload полезная нагрузка MsgError
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func nodeInfo(n *world.MapNode) *NodeInfo {
	info := &NodeInfo{
		X:      n.Pos().X,
		Y:      n.Pos().Y,
		Height: n.Height(),
		Slope:  n.IsSlope(),
	}
	for l := 0; l < world.MaxLayers; l++ {
		if id := n.TileID(world.Layer(l)); id != "" {
			if info.Tiles == nil {
				info.Tiles = make(map[world.Layer]tile.ID)
			}
			info.Tiles[world.Layer(l)] = id
		}
	}
	return info
}
