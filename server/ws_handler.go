package server

import (
	"net/http"

	"TingFM/core/room"
	"TingFM/logger"
)

// SubscribeHandler 订阅房间事件流。
// WebSocket 带不了请求体，身份走查询参数；只有房间成员才能订阅，
// 房间关闭时连接由广播中心统一断开。
func (h *Handler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userID := query.Get("userId")
	username := query.Get("username")
	groupID := query.Get("groupId")

	if userID == "" {
		http.Error(w, "缺少 userId", http.StatusBadRequest)
		return
	}
	if username == "" {
		username = "未知用户"
	}
	if groupID == "" {
		groupID = "private"
	}

	current, err := h.manager.GetRoom(groupID)
	if err != nil {
		http.Error(w, "房间不存在", http.StatusNotFound)
		return
	}
	if !h.manager.UserInRoom(userID, groupID) {
		http.Error(w, "请先加入房间", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket 升级失败", logger.ErrorField(err))
		return
	}

	client := room.NewClient(h.hub, conn, current.ID, userID, username)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
