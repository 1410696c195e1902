package room

import (
	"math/rand"
	"sync"
	"time"

	"TingFM/model"
)

// Room 音乐房间。
// 持有播放列表、成员表、播放游标和播放模式，全部可变状态由房间自己的
// 互斥锁串行化。锁只护住内存状态的变更，任何网络请求（搜索、解析播放
// 地址）都发生在锁外，慢音源不会堵住同房间其他人的指令。
//
// 游标约定：-1 表示没有当前歌曲，否则一定落在 [0, 列表长度) 内，
// 每个操作结束时都维持这个不变量。
type Room struct {
	ID        string
	OwnerID   string
	OwnerName string
	GroupID   string
	CreatedAt time.Time

	mu       sync.Mutex
	playlist []*model.Song
	cursor   int
	members  map[string]string // userID → 昵称
	playing  bool
	mode     model.PlayMode
}

// RoomInfo 房间状态快照，渲染房间信息用
type RoomInfo struct {
	OwnerName string
	Members   []string
	SongCount int
	Playing   bool
	Mode      model.PlayMode
	Current   *model.Song
	CreatedAt time.Time
}

func newRoom(ownerID, ownerName, groupID string) *Room {
	r := &Room{
		ID:        groupKey(groupID),
		OwnerID:   ownerID,
		OwnerName: ownerName,
		GroupID:   groupID,
		CreatedAt: time.Now(),
		cursor:    -1,
		members:   make(map[string]string),
		mode:      model.PlayModeSequence,
	}
	r.members[ownerID] = ownerName
	return r
}

// ========== 播放列表 ==========

// AddSong 追加歌曲到列表尾部，返回追加后的列表长度。
// 不动游标，正在播放的歌不受影响。
func (r *Room) AddSong(song *model.Song) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.playlist = append(r.playlist, song)
	return len(r.playlist)
}

// RemoveSong 按下标移除歌曲并返回它。
// 移除后游标若越过了新的列表末尾则收回到最后一首；列表清空时归位 -1。
func (r *Room) RemoveSong(index int) (*model.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.playlist) {
		return nil, ErrIndexRange
	}

	song := r.playlist[index]
	r.playlist = append(r.playlist[:index], r.playlist[index+1:]...)

	if len(r.playlist) == 0 {
		r.cursor = -1
	} else if r.cursor >= len(r.playlist) {
		r.cursor = len(r.playlist) - 1
	}
	return song, nil
}

// Clear 清空播放列表并停止播放。房主权限由调用方把关。
func (r *Room) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.playlist = nil
	r.cursor = -1
	r.playing = false
}

// SongCount 播放列表长度
func (r *Room) SongCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.playlist)
}

// PlaylistSnapshot 返回播放列表副本和当前游标
func (r *Room) PlaylistSnapshot() ([]*model.Song, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]*model.Song, len(r.playlist))
	copy(list, r.playlist)
	return list, r.cursor
}

// ========== 播放控制 ==========

func (r *Room) currentLocked() *model.Song {
	if r.cursor >= 0 && r.cursor < len(r.playlist) {
		return r.playlist[r.cursor]
	}
	return nil
}

// CurrentSong 返回游标指向的歌曲，没有当前歌曲时返回 nil
func (r *Room) CurrentSong() *model.Song {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentLocked()
}

// NextSong 切到下一首并返回它。
// 随机模式在整个列表里等概率取一首，允许抽到当前这首；
// 顺序模式游标加一，到尾后绕回开头。
func (r *Room) NextSong() (*model.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	length := len(r.playlist)
	if length == 0 {
		return nil, ErrEmptyPlaylist
	}

	if r.mode == model.PlayModeRandom {
		r.cursor = rand.Intn(length)
	} else {
		r.cursor = (r.cursor + 1) % length
	}
	return r.currentLocked(), nil
}

// PrevSong 切到上一首并返回它。上一首永远按顺序回退，与播放模式无关，
// 在开头时绕到最后一首。
func (r *Room) PrevSong() (*model.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	length := len(r.playlist)
	if length == 0 {
		return nil, ErrEmptyPlaylist
	}

	r.cursor = ((r.cursor-1)%length + length) % length
	return r.currentLocked(), nil
}

// SkipTo 直接跳到指定下标的歌曲
func (r *Room) SkipTo(index int) (*model.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.playlist) {
		return nil, ErrIndexRange
	}

	r.cursor = index
	return r.currentLocked(), nil
}

// Play 开始播放。列表为空时拒绝；已在播放时原样返回当前歌曲并标记
// already，调用方据此回"正在播放中"而不是报错；游标未初始化时指到第一首。
func (r *Room) Play() (song *model.Song, already bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.playlist) == 0 {
		return nil, false, ErrEmptyPlaylist
	}
	if r.playing {
		return r.currentLocked(), true, nil
	}

	r.playing = true
	if r.cursor < 0 {
		r.cursor = 0
	}
	return r.currentLocked(), false, nil
}

// Pause 暂停播放，返回是否真的发生了状态切换。
// 本来就没在播放时返回 false，调用方回"当前没有正在播放的音乐"。
func (r *Room) Pause() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.playing {
		return false
	}
	r.playing = false
	return true
}

// Playing 返回播放状态
func (r *Room) Playing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playing
}

// Mode 返回当前播放模式
func (r *Room) Mode() model.PlayMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// SetMode 切换播放模式。输入合法性由调用方负责，认不出的输入
// 不应走到这里，而是回显当前模式。
func (r *Room) SetMode(mode model.PlayMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = mode
}

// ========== 成员 ==========

// AddMember 登记成员，返回是否为新加入。重复加入不报错，
// 调用方用返回值区分"加入成功"和"已在房间里"两种回复。
func (r *Room) AddMember(userID, userName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[userID]; ok {
		return false
	}
	r.members[userID] = userName
	return true
}

// RemoveMember 移除成员，返回该成员此前是否在房间里
func (r *Room) RemoveMember(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[userID]; !ok {
		return false
	}
	delete(r.members, userID)
	return true
}

// IsOwner 判断是否房主
func (r *Room) IsOwner(userID string) bool {
	return userID == r.OwnerID
}

// IsMember 判断是否房间成员
func (r *Room) IsMember(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.members[userID]
	return ok
}

// MemberCount 成员数量
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// MemberIDs 所有成员的用户ID
func (r *Room) MemberIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}

// MemberNames 所有成员的昵称，顺序不保证
func (r *Room) MemberNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.members))
	for _, name := range r.members {
		names = append(names, name)
	}
	return names
}

// Info 房间状态快照
func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.members))
	for _, name := range r.members {
		names = append(names, name)
	}

	return RoomInfo{
		OwnerName: r.OwnerName,
		Members:   names,
		SongCount: len(r.playlist),
		Playing:   r.playing,
		Mode:      r.mode,
		Current:   r.currentLocked(),
		CreatedAt: r.CreatedAt,
	}
}
