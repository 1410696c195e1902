package room

import (
	"fmt"
	"sync"

	"TingFM/logger"
	"TingFM/model"
)

// Manager 管理进程内所有活跃房间与用户会话。
// 三张表由同一把读写锁保护：群组到房间（一个群组同时只有一个房间）、
// 用户会话反查表、每个用户待选择的搜索结果。跨群组的操作互不争锁；
// 同群组下注册表锁与房间锁按 Manager → Room 的顺序获取，反向获取
// 在代码里不存在。
//
// 所有状态只活在进程内，重启即清空。
type Manager struct {
	mu            sync.RWMutex
	rooms         map[string]*Room         // groupKey → 房间
	userRooms     map[string]string        // userKey → groupKey
	searchResults map[string][]*model.Song // userKey → 待选列表
}

// NewManager 创建会话管理器
func NewManager() *Manager {
	return &Manager{
		rooms:         make(map[string]*Room),
		userRooms:     make(map[string]string),
		searchResults: make(map[string][]*model.Song),
	}
}

func groupKey(groupID string) string {
	return fmt.Sprintf("room_%s", groupID)
}

func userKey(userID, groupID string) string {
	return fmt.Sprintf("%s_%s", userID, groupID)
}

// ========== 房间生命周期 ==========

// CreateRoom 为群组创建房间，创建者即房主并自动入座。
// 群组已有房间时返回 ErrRoomExists，不管现有房间属于谁。
func (m *Manager) CreateRoom(userID, userName, groupID string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gk := groupKey(groupID)
	if _, ok := m.rooms[gk]; ok {
		return nil, ErrRoomExists
	}

	r := newRoom(userID, userName, groupID)
	m.rooms[gk] = r
	m.userRooms[userKey(userID, groupID)] = gk

	logger.Info("房间已创建",
		logger.String("room", r.ID),
		logger.String("owner", userID),
		logger.String("group", groupID))
	return r, nil
}

// JoinRoom 加入群组当前的房间。
// 没有房间时返回 ErrNoRoom；重复加入不是错误，already 置真，
// 会话表保持原样。
func (m *Manager) JoinRoom(userID, userName, groupID string) (r *Room, already bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r = m.rooms[groupKey(groupID)]
	if r == nil {
		return nil, false, ErrNoRoom
	}

	if !r.AddMember(userID, userName) {
		return r, true, nil
	}
	m.userRooms[userKey(userID, groupID)] = r.ID

	logger.Info("成员加入房间",
		logger.String("room", r.ID),
		logger.String("user", userID))
	return r, false, nil
}

// LeaveRoom 退出房间。房主不能退出，只能关闭房间。
func (m *Manager) LeaveRoom(userID, groupID string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.rooms[groupKey(groupID)]
	if r == nil {
		return nil, ErrNotInRoom
	}
	if r.IsOwner(userID) {
		return nil, ErrOwnerLeave
	}

	r.RemoveMember(userID)
	delete(m.userRooms, userKey(userID, groupID))

	logger.Info("成员退出房间",
		logger.String("room", r.ID),
		logger.String("user", userID))
	return r, nil
}

// CloseRoom 关闭房间，仅房主可用。
// 房间本体和所有成员的会话条目一并清掉。
func (m *Manager) CloseRoom(userID, groupID string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gk := groupKey(groupID)
	r := m.rooms[gk]
	if r == nil {
		return nil, ErrNoRoom
	}
	if !r.IsOwner(userID) {
		return nil, ErrNotOwner
	}

	for _, memberID := range r.MemberIDs() {
		delete(m.userRooms, userKey(memberID, groupID))
	}
	delete(m.rooms, gk)

	logger.Info("房间已关闭",
		logger.String("room", r.ID),
		logger.String("owner", userID))
	return r, nil
}

// ========== 会话查询 ==========

// GetRoom 返回群组当前的房间。群组没有房间时返回 ErrNotInRoom，
// 各指令据此提示用户先建房或加入。
func (m *Manager) GetRoom(groupID string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r := m.rooms[groupKey(groupID)]
	if r == nil {
		return nil, ErrNotInRoom
	}
	return r, nil
}

// UserInRoom 查会话反查表，判断用户是否已登记在该群组的房间里
func (m *Manager) UserInRoom(userID, groupID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.userRooms[userKey(userID, groupID)]
	return ok
}

// RoomCount 当前活跃房间数
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// ========== 搜索结果暂存 ==========

// StashSearch 暂存用户最近一次的搜索结果，等待后续选择。
// 每个用户在每个群组里只留最近一份，新搜索直接覆盖旧的。
func (m *Manager) StashSearch(userID, groupID string, songs []*model.Song) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.searchResults[userKey(userID, groupID)] = songs
}

// HasSearch 查询用户是否有待选择的搜索结果
func (m *Manager) HasSearch(userID, groupID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.searchResults[userKey(userID, groupID)]
	return ok
}

// TakeSearch 按序号取走暂存结果里的一首歌，index 从 0 起。
// 没有暂存返回 ErrNoSearch；序号越界返回 ErrIndexRange，这时结果
// 保留，用户换个序号还能再选。选中才消费：整份结果随选中一并清掉，
// 同一份结果的第二次选择会看到 ErrNoSearch，并发的两次选择也只有
// 一个能成功。
func (m *Manager) TakeSearch(userID, groupID string, index int) (*model.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	uk := userKey(userID, groupID)
	songs, ok := m.searchResults[uk]
	if !ok {
		return nil, ErrNoSearch
	}
	if index < 0 || index >= len(songs) {
		return nil, ErrIndexRange
	}
	delete(m.searchResults, uk)
	return songs[index], nil
}
