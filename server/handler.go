package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"TingFM/core/music"
	"TingFM/core/room"
	"TingFM/logger"
	"TingFM/model"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Handler 指令处理器，聊天指令和 HTTP 端点一一对应。
// 业务状态全部住在 manager 和 hub 里，处理器本身只携带可热更新的
// 搜索条数上限。
type Handler struct {
	manager  *room.Manager
	resolver *music.Resolver
	hub      *room.Hub
	upgrader websocket.Upgrader

	searchLimit atomic.Int32
}

// NewHandler 创建指令处理器
func NewHandler(manager *room.Manager, resolver *music.Resolver, hub *room.Hub, searchLimit int) *Handler {
	h := &Handler{
		manager:  manager,
		resolver: resolver,
		hub:      hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	if searchLimit <= 0 {
		searchLimit = 5
	}
	h.searchLimit.Store(int32(searchLimit))
	return h
}

// SetSearchLimit 运行时调整单次搜索的候选数，配置热更新时调用
func (h *Handler) SetSearchLimit(limit int) {
	if limit > 0 {
		h.searchLimit.Store(int32(limit))
	}
}

func (h *Handler) limit() int {
	return int(h.searchLimit.Load())
}

// publish 指令成功后向房间的订阅者广播事件
func (h *Handler) publish(t model.EventType, roomID, userID, userName string, data interface{}) {
	h.hub.Broadcast(&model.RoomEvent{
		Type:     t,
		RoomID:   roomID,
		UserID:   userID,
		Username: userName,
		Data:     data,
	})
}

// ========== 请求与响应 ==========

// CommandRequest 指令的公共身份字段。
// groupId 为空按私聊处理，归入 "private" 作用域；userName 为空用
// 占位昵称，原样进成员表和回复文案。
type CommandRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	GroupID  string `json:"groupId"`
}

// SearchRequest 点歌请求
type SearchRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	GroupID  string `json:"groupId"`
	Keyword  string `json:"keyword"`
}

// IndexRequest 带序号的指令请求，选歌、切歌、移除共用。
// 序号从 1 起，保持和列表渲染一致；传字符串，非数字输入
// 由处理器回提示语而不是 JSON 解析错误。
type IndexRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	GroupID  string `json:"groupId"`
	Index    string `json:"index"`
}

// ModeRequest 播放模式请求
type ModeRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	GroupID  string `json:"groupId"`
	Mode     string `json:"mode"`
}

// CommandReply 指令统一响应。
// 不管成败，reply 都是一条给用户看的文案；ok 供程序化调用方判断
// 指令是否达成。到不了业务层的请求（缺身份、JSON 坏了）才用 4xx。
type CommandReply struct {
	OK    bool        `json:"ok"`
	Reply string      `json:"reply"`
	Data  interface{} `json:"data,omitempty"`
}

// identity 校验并补全请求身份，失败时已写好 400 响应
func identity(w http.ResponseWriter, userID, userName, groupID string) (string, string, string, bool) {
	if userID == "" {
		http.Error(w, "缺少 userId", http.StatusBadRequest)
		return "", "", "", false
	}
	if userName == "" {
		userName = "未知用户"
	}
	if groupID == "" {
		groupID = "private"
	}
	return userID, userName, groupID, true
}

func writeReply(w http.ResponseWriter, reply string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&CommandReply{OK: true, Reply: reply, Data: data})
}

// writeGuide 指令未达成时的提示语，HTTP 状态仍是 200
func writeGuide(w http.ResponseWriter, reply string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&CommandReply{OK: false, Reply: reply})
}

// ========== 路由注册 ==========

// RegisterRoutes 注册全部指令路由
func RegisterRoutes(router *mux.Router, h *Handler) {
	// 房间管理
	router.HandleFunc("/api/rooms/create", h.CreateRoomHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/rooms/join", h.JoinRoomHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/rooms/leave", h.LeaveRoomHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/rooms/close", h.CloseRoomHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/rooms/info", h.RoomInfoHandler).Methods(http.MethodPost)

	// 歌曲操作
	router.HandleFunc("/api/songs/search", h.SearchSongHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/songs/select", h.SelectSongHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist", h.PlaylistHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist/remove", h.RemoveSongHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist/clear", h.ClearPlaylistHandler).Methods(http.MethodPost)

	// 播放控制
	router.HandleFunc("/api/player/play", h.PlayHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/pause", h.PauseHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/next", h.NextSongHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/prev", h.PrevSongHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/jump", h.JumpHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/player/mode", h.PlayModeHandler).Methods(http.MethodPost)

	// 帮助与事件订阅
	router.HandleFunc("/api/help", h.HelpHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/ws", h.SubscribeHandler).Methods(http.MethodGet)

	logger.Info("指令路由注册完成")
}
