package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"TingFM/model"
)

// ========== 播放控制指令 ==========

// PlayData 开始播放的结构化数据
type PlayData struct {
	Song   *model.Song `json:"song"`
	Direct bool        `json:"direct"` // 直链可以直接播，否则是音源网页
}

// PlayHandler 开始播放。已在播放时原样回"正在播放中"，
// 首次播放把游标落到第一首，这时才去解析播放地址。
func (h *Handler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求", http.StatusBadRequest)
		return
	}
	userID, userName, groupID, ok := identity(w, req.UserID, req.UserName, req.GroupID)
	if !ok {
		return
	}

	current, err := h.manager.GetRoom(groupID)
	if err != nil {
		writeGuide(w, "❌ 你不在音乐房间里")
		return
	}

	song, already, err := current.Play()
	if err != nil {
		writeGuide(w, "❌ 播放列表为空，请先添加歌曲")
		return
	}
	if already {
		writeReply(w, "▶️ 音乐正在播放中", nil)
		return
	}

	u := h.resolver.ResolveURL(r.Context(), song)
	linkType := "🔗 歌曲链接"
	direct := isDirectLink(u)
	if direct {
		linkType = "🎵 直链播放"
	}

	h.publish(model.EventPlay, current.ID, userID, userName,
		&model.SongEventData{Song: song, PlaylistLen: current.SongCount()})
	reply := fmt.Sprintf("▶️ 开始播放\n%s\n时长: %s\n%s: %s",
		song.Display(), formatDuration(song.Duration), linkType, u)
	writeReply(w, reply, &PlayData{Song: song, Direct: direct})
}

// PauseHandler 暂停播放。本来就没在播放时回提示，不算错误
func (h *Handler) PauseHandler(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求", http.StatusBadRequest)
		return
	}
	userID, userName, groupID, ok := identity(w, req.UserID, req.UserName, req.GroupID)
	if !ok {
		return
	}

	current, err := h.manager.GetRoom(groupID)
	if err != nil {
		writeGuide(w, "❌ 你不在音乐房间里")
		return
	}

	if !current.Pause() {
		writeReply(w, "⏸️ 当前没有正在播放的音乐", nil)
		return
	}

	h.publish(model.EventPause, current.ID, userID, userName, nil)
	writeReply(w, "⏸️ 音乐已暂停", nil)
}

// NextSongHandler 切到下一首，随机模式下由房间自己掷骰子
func (h *Handler) NextSongHandler(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求", http.StatusBadRequest)
		return
	}
	userID, userName, groupID, ok := identity(w, req.UserID, req.UserName, req.GroupID)
	if !ok {
		return
	}

	current, err := h.manager.GetRoom(groupID)
	if err != nil {
		writeGuide(w, "❌ 你不在音乐房间里")
		return
	}

	song, err := current.NextSong()
	if err != nil {
		writeGuide(w, "❌ 播放列表为空")
		return
	}

	u := h.resolver.ResolveURL(r.Context(), song)
	h.publish(model.EventSongChange, current.ID, userID, userName,
		&model.SongEventData{Song: song, PlaylistLen: current.SongCount()})
	reply := fmt.Sprintf("⏭️ 下一首\n%s\n🎵 链接: %s", song.Display(), u)
	writeReply(w, reply, &SongData{Song: song, PlaylistLen: current.SongCount()})
}

// PrevSongHandler 切到上一首，始终按顺序回退
func (h *Handler) PrevSongHandler(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求", http.StatusBadRequest)
		return
	}
	userID, userName, groupID, ok := identity(w, req.UserID, req.UserName, req.GroupID)
	if !ok {
		return
	}

	current, err := h.manager.GetRoom(groupID)
	if err != nil {
		writeGuide(w, "❌ 你不在音乐房间里")
		return
	}

	song, err := current.PrevSong()
	if err != nil {
		writeGuide(w, "❌ 播放列表为空")
		return
	}

	u := h.resolver.ResolveURL(r.Context(), song)
	h.publish(model.EventSongChange, current.ID, userID, userName,
		&model.SongEventData{Song: song, PlaylistLen: current.SongCount()})
	reply := fmt.Sprintf("⏮️ 上一首\n%s\n🎵 链接: %s", song.Display(), u)
	writeReply(w, reply, &SongData{Song: song, PlaylistLen: current.SongCount()})
}

// JumpHandler 切到指定序号的歌曲
func (h *Handler) JumpHandler(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求", http.StatusBadRequest)
		return
	}
	userID, userName, groupID, ok := identity(w, req.UserID, req.UserName, req.GroupID)
	if !ok {
		return
	}

	current, err := h.manager.GetRoom(groupID)
	if err != nil {
		writeGuide(w, "❌ 你不在音乐房间里")
		return
	}

	index, numeric := parseIndex(req.Index)
	if !numeric {
		writeGuide(w, "❌ 请输入正确的序号，例如: /切歌 3")
		return
	}

	song, err := current.SkipTo(index)
	if err != nil {
		writeGuide(w, "❌ 序号超出范围")
		return
	}

	u := h.resolver.ResolveURL(r.Context(), song)
	h.publish(model.EventSongChange, current.ID, userID, userName,
		&model.SongEventData{Song: song, PlaylistLen: current.SongCount()})
	reply := fmt.Sprintf("🎵 切换到第 %d 首\n%s\n🎵 链接: %s", index+1, song.Display(), u)
	writeReply(w, reply, &SongData{Song: song, PlaylistLen: current.SongCount()})
}

// PlayModeData 播放模式的结构化数据
type PlayModeData struct {
	Mode model.PlayMode `json:"mode"`
}

// PlayModeHandler 设置播放模式。认不出的输入不算错，回显当前模式
func (h *Handler) PlayModeHandler(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求", http.StatusBadRequest)
		return
	}
	userID, userName, groupID, ok := identity(w, req.UserID, req.UserName, req.GroupID)
	if !ok {
		return
	}

	current, err := h.manager.GetRoom(groupID)
	if err != nil {
		writeGuide(w, "❌ 你不在音乐房间里")
		return
	}

	mode, recognized := model.ParsePlayMode(req.Mode)
	if !recognized {
		reply := fmt.Sprintf("当前播放模式: %s\n使用 /播放模式 顺序 或 /播放模式 随机 切换",
			current.Mode().DisplayName())
		writeReply(w, reply, &PlayModeData{Mode: current.Mode()})
		return
	}

	current.SetMode(mode)
	h.publish(model.EventModeChange, current.ID, userID, userName, &model.ModeData{Mode: mode})
	writeReply(w, fmt.Sprintf("🔀 播放模式: %s", mode.DisplayName()), &PlayModeData{Mode: mode})
}

// HelpHandler 指令帮助
func (h *Handler) HelpHandler(w http.ResponseWriter, r *http.Request) {
	writeReply(w, helpText, nil)
}
