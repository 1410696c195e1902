package room

import "errors"

// 房间与会话层的业务错误。
// 处理器逐个识别这些哨兵并渲染成面向用户的提示语，不会透出进程级错误。
var (
	ErrRoomExists    = errors.New("房间已存在")
	ErrNoRoom        = errors.New("没有活跃的房间")
	ErrNotInRoom     = errors.New("不在任何房间中")
	ErrOwnerLeave    = errors.New("房主不能退出房间")
	ErrNotOwner      = errors.New("只有房主才能执行该操作")
	ErrIndexRange    = errors.New("序号超出范围")
	ErrNoSearch      = errors.New("没有待选择的搜索结果")
	ErrEmptyPlaylist = errors.New("播放列表为空")
)
