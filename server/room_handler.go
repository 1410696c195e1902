package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"TingFM/core/room"
	"TingFM/model"
)

// ========== 房间管理指令 ==========

// CreateRoomData 创建成功的附加数据
type CreateRoomData struct {
	RoomID    string `json:"roomId"`
	OwnerName string `json:"ownerName"`
}

// CreateRoomHandler 创建房间，创建者成为房主
func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求", http.StatusBadRequest)
		return
	}
	userID, userName, groupID, ok := identity(w, req.UserID, req.UserName, req.GroupID)
	if !ok {
		return
	}

	created, err := h.manager.CreateRoom(userID, userName, groupID)
	if err != nil {
		writeGuide(w, "❌ 该群已存在音乐房间，请先关闭现有房间")
		return
	}

	reply := fmt.Sprintf("🏠 音乐房间创建成功！\n房主: %s\n使用 /加入房间 加入房间\n使用 /点歌 <歌名> 添加歌曲", userName)
	writeReply(w, reply, &CreateRoomData{RoomID: created.ID, OwnerName: userName})
}

// JoinRoomData 加入结果的附加数据
type JoinRoomData struct {
	MemberCount int  `json:"memberCount"`
	Already     bool `json:"already"`
}

// JoinRoomHandler 加入当前群组的房间。重复加入不是错误，回复区分开
func (h *Handler) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求", http.StatusBadRequest)
		return
	}
	userID, userName, groupID, ok := identity(w, req.UserID, req.UserName, req.GroupID)
	if !ok {
		return
	}

	joined, already, err := h.manager.JoinRoom(userID, userName, groupID)
	if err != nil {
		writeGuide(w, "❌ 当前没有可加入的音乐房间，使用 /创建房间 创建一个")
		return
	}

	count := joined.MemberCount()
	if already {
		writeReply(w, "你已经在这个房间里了", &JoinRoomData{MemberCount: count, Already: true})
		return
	}

	h.publish(model.EventMemberJoin, joined.ID, userID, userName, &model.MemberData{MemberCount: count})
	reply := fmt.Sprintf("✅ %s 加入了音乐房间\n当前成员: %d 人", userName, count)
	writeReply(w, reply, &JoinRoomData{MemberCount: count})
}

// LeaveRoomHandler 退出房间。房主退不掉，只能关闭房间
func (h *Handler) LeaveRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求", http.StatusBadRequest)
		return
	}
	userID, userName, groupID, ok := identity(w, req.UserID, req.UserName, req.GroupID)
	if !ok {
		return
	}

	left, err := h.manager.LeaveRoom(userID, groupID)
	switch err {
	case nil:
	case room.ErrOwnerLeave:
		writeGuide(w, "你是房主，请使用 /关闭房间 来关闭房间")
		return
	default:
		writeGuide(w, "❌ 你不在任何音乐房间里")
		return
	}

	h.publish(model.EventMemberLeave, left.ID, userID, userName,
		&model.MemberData{MemberCount: left.MemberCount()})
	writeReply(w, fmt.Sprintf("👋 %s 离开了音乐房间", userName), nil)
}

// CloseRoomHandler 关闭房间，仅房主可用。
// 告别事件先广播再掐断订阅连接。
func (h *Handler) CloseRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求", http.StatusBadRequest)
		return
	}
	userID, userName, groupID, ok := identity(w, req.UserID, req.UserName, req.GroupID)
	if !ok {
		return
	}

	closed, err := h.manager.CloseRoom(userID, groupID)
	switch err {
	case nil:
	case room.ErrNotOwner:
		writeGuide(w, "❌ 只有房主才能关闭房间")
		return
	default:
		writeGuide(w, "❌ 当前没有音乐房间")
		return
	}

	h.publish(model.EventRoomClose, closed.ID, userID, userName, nil)
	h.hub.DropRoom(closed.ID)
	writeReply(w, "🏠 音乐房间已关闭", nil)
}

// RoomInfoData 房间详情的结构化数据
type RoomInfoData struct {
	OwnerName string         `json:"ownerName"`
	Members   []string       `json:"members"`
	SongCount int            `json:"songCount"`
	Playing   bool           `json:"playing"`
	Mode      model.PlayMode `json:"mode"`
	Current   *model.Song    `json:"current,omitempty"`
}

// RoomInfoHandler 查看房间详情
func (h *Handler) RoomInfoHandler(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求", http.StatusBadRequest)
		return
	}
	_, _, groupID, ok := identity(w, req.UserID, req.UserName, req.GroupID)
	if !ok {
		return
	}

	current, err := h.manager.GetRoom(groupID)
	if err != nil {
		writeGuide(w, "❌ 当前没有音乐房间")
		return
	}

	info := current.Info()
	writeReply(w, formatRoomInfo(info), &RoomInfoData{
		OwnerName: info.OwnerName,
		Members:   info.Members,
		SongCount: info.SongCount,
		Playing:   info.Playing,
		Mode:      info.Mode,
		Current:   info.Current,
	})
}
