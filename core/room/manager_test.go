package room

import (
	"sync"
	"sync/atomic"
	"testing"

	"TingFM/model"
)

func TestCreateRoomOncePerGroup(t *testing.T) {
	m := NewManager()

	created, err := m.CreateRoom("u1", "房主", "g1")
	if err != nil {
		t.Fatal(err)
	}
	if created.OwnerID != "u1" || created.GroupID != "g1" {
		t.Fatalf("房间字段不对: %+v", created)
	}

	// 同群组二次创建被拒，哪怕换个人
	if _, err := m.CreateRoom("u2", "小明", "g1"); err != ErrRoomExists {
		t.Fatalf("期望 ErrRoomExists，得到 %v", err)
	}

	// 不同群组互不影响
	if _, err := m.CreateRoom("u1", "房主", "g2"); err != nil {
		t.Fatal(err)
	}
	if got := m.RoomCount(); got != 2 {
		t.Fatalf("活跃房间数应为 2，得到 %d", got)
	}
}

func TestGetRoomByGroup(t *testing.T) {
	m := NewManager()
	created, err := m.CreateRoom("u1", "房主", "g1")
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.GetRoom("g1")
	if err != nil || got != created {
		t.Fatalf("GetRoom 应返回同一个房间: %v %v", got, err)
	}
	if _, err := m.GetRoom("nope"); err != ErrNotInRoom {
		t.Fatalf("没有房间的群组应报 ErrNotInRoom，得到 %v", err)
	}
}

func TestJoinRoom(t *testing.T) {
	m := NewManager()

	if _, _, err := m.JoinRoom("u2", "小明", "g1"); err != ErrNoRoom {
		t.Fatalf("没有房间时加入应报 ErrNoRoom，得到 %v", err)
	}

	if _, err := m.CreateRoom("u1", "房主", "g1"); err != nil {
		t.Fatal(err)
	}

	joined, already, err := m.JoinRoom("u2", "小明", "g1")
	if err != nil || already {
		t.Fatalf("首次加入失败: already=%v err=%v", already, err)
	}
	if got := joined.MemberCount(); got != 2 {
		t.Fatalf("加入后成员数应为 2，得到 %d", got)
	}
	if !m.UserInRoom("u2", "g1") {
		t.Fatal("加入后会话反查表应有记录")
	}

	// 重复加入不是错误，成员数不变
	_, already, err = m.JoinRoom("u2", "小明", "g1")
	if err != nil || !already {
		t.Fatalf("重复加入应报告 already: already=%v err=%v", already, err)
	}
	if got := joined.MemberCount(); got != 2 {
		t.Fatalf("重复加入不应改变成员数，得到 %d", got)
	}
}

func TestLeaveRoom(t *testing.T) {
	m := NewManager()

	if _, err := m.LeaveRoom("u1", "g1"); err != ErrNotInRoom {
		t.Fatalf("没有房间时退出应报 ErrNotInRoom，得到 %v", err)
	}

	created, err := m.CreateRoom("u1", "房主", "g1")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.JoinRoom("u2", "小明", "g1"); err != nil {
		t.Fatal(err)
	}

	// 房主只能关房，不能退出
	if _, err := m.LeaveRoom("u1", "g1"); err != ErrOwnerLeave {
		t.Fatalf("期望 ErrOwnerLeave，得到 %v", err)
	}

	if _, err := m.LeaveRoom("u2", "g1"); err != nil {
		t.Fatal(err)
	}
	if m.UserInRoom("u2", "g1") {
		t.Fatal("退出后会话反查表应清掉")
	}
	if got := created.MemberCount(); got != 1 {
		t.Fatalf("退出后成员数应为 1，得到 %d", got)
	}

	// 不是成员也能"退出"，和房间里没有这个人的效果一样
	if _, err := m.LeaveRoom("u3", "g1"); err != nil {
		t.Fatalf("非成员退出不应报错，得到 %v", err)
	}
}

func TestCloseRoom(t *testing.T) {
	m := NewManager()

	if _, err := m.CloseRoom("u1", "g1"); err != ErrNoRoom {
		t.Fatalf("没有房间时关闭应报 ErrNoRoom，得到 %v", err)
	}

	if _, err := m.CreateRoom("u1", "房主", "g1"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.JoinRoom("u2", "小明", "g1"); err != nil {
		t.Fatal(err)
	}

	if _, err := m.CloseRoom("u2", "g1"); err != ErrNotOwner {
		t.Fatalf("非房主关闭应报 ErrNotOwner，得到 %v", err)
	}

	if _, err := m.CloseRoom("u1", "g1"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetRoom("g1"); err != ErrNotInRoom {
		t.Fatal("关闭后房间应不可见")
	}
	if m.UserInRoom("u1", "g1") || m.UserInRoom("u2", "g1") {
		t.Fatal("关闭后所有成员的会话记录应清掉")
	}
	if got := m.RoomCount(); got != 0 {
		t.Fatalf("关闭后活跃房间数应为 0，得到 %d", got)
	}

	// 原群组可以立刻重建
	if _, err := m.CreateRoom("u2", "小明", "g1"); err != nil {
		t.Fatal(err)
	}
}

func TestTakeSearchConsumesOnSuccess(t *testing.T) {
	m := NewManager()
	songs := []*model.Song{testSong("a"), testSong("b"), testSong("c")}

	if _, err := m.TakeSearch("u1", "g1", 0); err != ErrNoSearch {
		t.Fatalf("没有暂存时应报 ErrNoSearch，得到 %v", err)
	}

	m.StashSearch("u1", "g1", songs)
	if !m.HasSearch("u1", "g1") {
		t.Fatal("暂存后应可查询到")
	}

	// 越界不消费，换个序号还能选
	if _, err := m.TakeSearch("u1", "g1", 3); err != ErrIndexRange {
		t.Fatalf("越界应报 ErrIndexRange，得到 %v", err)
	}
	if _, err := m.TakeSearch("u1", "g1", -1); err != ErrIndexRange {
		t.Fatalf("负数应报 ErrIndexRange，得到 %v", err)
	}
	if !m.HasSearch("u1", "g1") {
		t.Fatal("越界选择不应消费暂存")
	}

	got, err := m.TakeSearch("u1", "g1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != songs[1] {
		t.Fatalf("取到的歌不对: %v", got)
	}

	// 选中即消费，同一份结果不能选第二次
	if _, err := m.TakeSearch("u1", "g1", 0); err != ErrNoSearch {
		t.Fatalf("二次选择应报 ErrNoSearch，得到 %v", err)
	}
}

func TestStashOverwrites(t *testing.T) {
	m := NewManager()

	m.StashSearch("u1", "g1", []*model.Song{testSong("old")})
	fresh := testSong("new")
	m.StashSearch("u1", "g1", []*model.Song{fresh})

	got, err := m.TakeSearch("u1", "g1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != fresh {
		t.Fatalf("新搜索应覆盖旧暂存，得到 %v", got)
	}
}

func TestStashScopedPerUserAndGroup(t *testing.T) {
	m := NewManager()

	m.StashSearch("u1", "g1", []*model.Song{testSong("a")})

	if m.HasSearch("u1", "g2") {
		t.Fatal("暂存不应跨群组可见")
	}
	if m.HasSearch("u2", "g1") {
		t.Fatal("暂存不应跨用户可见")
	}
	if _, err := m.TakeSearch("u2", "g1", 0); err != ErrNoSearch {
		t.Fatalf("别人的暂存不应被取走，得到 %v", err)
	}
	if !m.HasSearch("u1", "g1") {
		t.Fatal("自己的暂存应还在")
	}
}

func TestStashSurvivesRoomClose(t *testing.T) {
	m := NewManager()
	if _, err := m.CreateRoom("u1", "房主", "g1"); err != nil {
		t.Fatal(err)
	}
	m.StashSearch("u1", "g1", []*model.Song{testSong("a")})

	if _, err := m.CloseRoom("u1", "g1"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.TakeSearch("u1", "g1", 0); err != nil {
		t.Fatalf("关房不应动搜索暂存，得到 %v", err)
	}
}

func TestConcurrentTakeSearchSingleWinner(t *testing.T) {
	m := NewManager()
	m.StashSearch("u1", "g1", []*model.Song{testSong("a")})

	const n = 16
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.TakeSearch("u1", "g1", 0); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("并发选择应只有一个胜出，实际 %d 个", wins)
	}
}
