package model

// EventType 房间事件类型
type EventType string

const (
	EventMemberJoin    EventType = "member_join"
	EventMemberLeave   EventType = "member_leave"
	EventRoomClose     EventType = "room_close"
	EventSongAdd       EventType = "song_add"
	EventSongRemove    EventType = "song_remove"
	EventPlaylistClear EventType = "playlist_clear"
	EventPlay          EventType = "play"
	EventPause         EventType = "pause"
	EventSongChange    EventType = "song_change"
	EventModeChange    EventType = "mode_change"
)

// RoomEvent 推送给房间订阅者的事件信封
type RoomEvent struct {
	Type      EventType   `json:"type"`
	RoomID    string      `json:"roomId"`
	UserID    string      `json:"userId,omitempty"`
	Username  string      `json:"username,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"` // 毫秒
}

// MemberData 成员变动事件数据
type MemberData struct {
	MemberCount int `json:"memberCount"`
}

// SongEventData 歌曲变动事件数据
type SongEventData struct {
	Song        *Song `json:"song,omitempty"`
	PlaylistLen int   `json:"playlistLen"`
}

// ModeData 播放模式变动事件数据
type ModeData struct {
	Mode PlayMode `json:"mode"`
}
