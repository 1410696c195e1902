package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"TingFM/core/room"
	"TingFM/model"
)

// ========== 歌曲操作指令 ==========

// parseIndex 解析用户输入的序号并转成下标，序号从 1 起。
// 返回 false 表示不是有效数字，由调用方回示例提示。
func parseIndex(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n - 1, true
}

// SearchData 搜索结果的结构化数据
type SearchData struct {
	Keyword string        `json:"keyword"`
	Songs   []*model.Song `json:"songs"`
}

// SearchSongHandler 点歌。搜到的候选暂存起来等 /选歌，
// 搜不到不是错误，回提示语引导换关键词。
func (h *Handler) SearchSongHandler(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "无效的请求", http.StatusBadRequest)
		return
	}
	userID, _, groupID, ok := identity(w, req.UserID, req.UserName, req.GroupID)
	if !ok {
		return
	}

	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		writeGuide(w, "请输入歌曲名称，例如: /点歌 稻香")
		return
	}
	if _, err := h.manager.GetRoom(groupID); err != nil {
		writeGuide(w, "❌ 请先加入音乐房间，使用 /加入房间")
		return
	}

	songs := h.resolver.Search(r.Context(), keyword, h.limit())
	if len(songs) == 0 {
		writeGuide(w, "❌ 未找到相关歌曲，请尝试其他关键词")
		return
	}

	h.manager.StashSearch(userID, groupID, songs)
	writeReply(w, formatSearchResults(songs), &SearchData{Keyword: keyword, Songs: songs})
}

// SongData 单曲操作的结构化数据，选歌和移除共用
type SongData struct {
	Song        *model.Song `json:"song"`
	PlaylistLen int         `json:"playlistLen"`
}

// SelectSongHandler 选歌。从暂存的搜索结果里按序号取一首，
// 解析好播放地址后进播放列表。选中才消费暂存，序号不对可以重试。
func (h *Handler) SelectSongHandler(w http.ResponseWriter, r *http.Request) {
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
	if !h.manager.HasSearch(userID, groupID) {
		writeGuide(w, "❌ 请先使用 /点歌 搜索歌曲")
		return
	}

	index, numeric := parseIndex(req.Index)
	if !numeric {
		writeGuide(w, "❌ 请输入正确的序号，例如: /选歌 1")
		return
	}

	song, err := h.manager.TakeSearch(userID, groupID, index)
	switch err {
	case nil:
	case room.ErrIndexRange:
		writeGuide(w, "❌ 序号超出范围")
		return
	default:
		writeGuide(w, "❌ 请先使用 /点歌 搜索歌曲")
		return
	}

	h.resolver.ResolveURL(r.Context(), song)
	count := current.AddSong(song)

	h.publish(model.EventSongAdd, current.ID, userID, userName,
		&model.SongEventData{Song: song, PlaylistLen: count})
	reply := fmt.Sprintf("✅ %s 添加了歌曲\n%s\n当前播放列表共 %d 首歌", userName, song.Display(), count)
	writeReply(w, reply, &SongData{Song: song, PlaylistLen: count})
}

// PlaylistData 播放列表的结构化数据，current 为 -1 表示没有当前歌曲
type PlaylistData struct {
	Songs   []*model.Song `json:"songs"`
	Current int           `json:"current"`
}

// PlaylistHandler 查看播放列表
func (h *Handler) PlaylistHandler(w http.ResponseWriter, r *http.Request) {
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
		writeGuide(w, "❌ 你不在音乐房间里")
		return
	}

	songs, cursor := current.PlaylistSnapshot()
	writeReply(w, formatPlaylist(songs, cursor), &PlaylistData{Songs: songs, Current: cursor})
}

// RemoveSongHandler 按序号移除歌曲
func (h *Handler) RemoveSongHandler(w http.ResponseWriter, r *http.Request) {
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
		writeGuide(w, "❌ 请输入正确的序号，例如: /移除 2")
		return
	}

	song, err := current.RemoveSong(index)
	if err != nil {
		writeGuide(w, "❌ 序号超出范围")
		return
	}

	count := current.SongCount()
	h.publish(model.EventSongRemove, current.ID, userID, userName,
		&model.SongEventData{Song: song, PlaylistLen: count})
	writeReply(w, fmt.Sprintf("✅ 已移除: %s", song.Display()), &SongData{Song: song, PlaylistLen: count})
}

// ClearPlaylistHandler 清空播放列表，仅房主可用
func (h *Handler) ClearPlaylistHandler(w http.ResponseWriter, r *http.Request) {
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
	if !current.IsOwner(userID) {
		writeGuide(w, "❌ 只有房主才能清空播放列表")
		return
	}

	current.Clear()
	h.publish(model.EventPlaylistClear, current.ID, userID, userName, nil)
	writeReply(w, "✅ 播放列表已清空", nil)
}
