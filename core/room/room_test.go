package room

import (
	"fmt"
	"testing"

	"TingFM/model"
)

func testSong(id string) *model.Song {
	return model.NewSong(id, "歌曲"+id, "歌手"+id, "专辑", 185, "", model.SourceQQ)
}

func newTestRoom() *Room {
	return newRoom("owner", "房主", "g1")
}

func fillRoom(r *Room, n int) []*model.Song {
	songs := make([]*model.Song, 0, n)
	for i := 0; i < n; i++ {
		s := testSong(fmt.Sprintf("%d", i))
		r.AddSong(s)
		songs = append(songs, s)
	}
	return songs
}

func cursorOf(t *testing.T, r *Room) int {
	t.Helper()
	_, cursor := r.PlaylistSnapshot()
	return cursor
}

func TestNewRoomDefaults(t *testing.T) {
	r := newTestRoom()

	if got := cursorOf(t, r); got != -1 {
		t.Fatalf("新房间游标应为 -1，得到 %d", got)
	}
	if r.CurrentSong() != nil {
		t.Fatal("新房间不应有当前歌曲")
	}
	if r.Playing() {
		t.Fatal("新房间不应处于播放状态")
	}
	if got := r.Mode(); got != model.PlayModeSequence {
		t.Fatalf("默认应为顺序模式，得到 %q", got)
	}
	if !r.IsMember("owner") || r.MemberCount() != 1 {
		t.Fatal("房主应自动成为首位成员")
	}
	if !r.IsOwner("owner") || r.IsOwner("other") {
		t.Fatal("房主判断不对")
	}
}

func TestAddSongKeepsCursor(t *testing.T) {
	r := newTestRoom()

	if got := r.AddSong(testSong("a")); got != 1 {
		t.Fatalf("追加后长度应为 1，得到 %d", got)
	}
	if got := r.AddSong(testSong("b")); got != 2 {
		t.Fatalf("追加后长度应为 2，得到 %d", got)
	}
	if got := cursorOf(t, r); got != -1 {
		t.Fatalf("追加歌曲不应动游标，得到 %d", got)
	}
}

func TestPlayOnEmptyPlaylist(t *testing.T) {
	r := newTestRoom()

	if _, _, err := r.Play(); err != ErrEmptyPlaylist {
		t.Fatalf("空列表播放应报 ErrEmptyPlaylist，得到 %v", err)
	}
	if r.Playing() {
		t.Fatal("播放失败后不应处于播放状态")
	}
}

func TestPlayInitializesCursor(t *testing.T) {
	r := newTestRoom()
	songs := fillRoom(r, 3)

	song, already, err := r.Play()
	if err != nil || already {
		t.Fatalf("首次播放失败: song=%v already=%v err=%v", song, already, err)
	}
	if song != songs[0] {
		t.Fatalf("首次播放应落在第一首，得到 %v", song)
	}
	if got := cursorOf(t, r); got != 0 {
		t.Fatalf("播放后游标应为 0，得到 %d", got)
	}
	if !r.Playing() {
		t.Fatal("播放后应处于播放状态")
	}
}

func TestPlayTwiceReportsAlready(t *testing.T) {
	r := newTestRoom()
	fillRoom(r, 2)

	if _, _, err := r.Play(); err != nil {
		t.Fatal(err)
	}
	_, already, err := r.Play()
	if err != nil {
		t.Fatal(err)
	}
	if !already {
		t.Fatal("二次播放应报告已在播放")
	}
}

func TestPauseTransitions(t *testing.T) {
	r := newTestRoom()
	fillRoom(r, 1)

	if r.Pause() {
		t.Fatal("没在播放时暂停不应发生状态切换")
	}
	if _, _, err := r.Play(); err != nil {
		t.Fatal(err)
	}
	if !r.Pause() {
		t.Fatal("播放中暂停应发生状态切换")
	}
	if r.Pause() {
		t.Fatal("已暂停再暂停不应发生状态切换")
	}
	if r.Playing() {
		t.Fatal("暂停后不应处于播放状态")
	}
}

func TestNextWrapsAround(t *testing.T) {
	r := newTestRoom()
	songs := fillRoom(r, 3)
	if _, _, err := r.Play(); err != nil {
		t.Fatal(err)
	}

	// 顺序模式下连切三次正好转回第一首
	want := []*model.Song{songs[1], songs[2], songs[0]}
	for i, w := range want {
		got, err := r.NextSong()
		if err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Fatalf("第 %d 次切歌得到 %v，期望 %v", i+1, got, w)
		}
	}
	if got := cursorOf(t, r); got != 0 {
		t.Fatalf("绕一圈后游标应回 0，得到 %d", got)
	}
}

func TestNextFromUnsetCursor(t *testing.T) {
	r := newTestRoom()
	songs := fillRoom(r, 3)

	got, err := r.NextSong()
	if err != nil {
		t.Fatal(err)
	}
	if got != songs[0] {
		t.Fatalf("游标未初始化时下一首应是第一首，得到 %v", got)
	}
}

func TestNextOnEmptyPlaylist(t *testing.T) {
	r := newTestRoom()
	if _, err := r.NextSong(); err != ErrEmptyPlaylist {
		t.Fatalf("期望 ErrEmptyPlaylist，得到 %v", err)
	}
	if _, err := r.PrevSong(); err != ErrEmptyPlaylist {
		t.Fatalf("期望 ErrEmptyPlaylist，得到 %v", err)
	}
}

func TestPrevWrapsToEnd(t *testing.T) {
	r := newTestRoom()
	songs := fillRoom(r, 3)
	if _, _, err := r.Play(); err != nil {
		t.Fatal(err)
	}

	got, err := r.PrevSong()
	if err != nil {
		t.Fatal(err)
	}
	if got != songs[2] {
		t.Fatalf("从开头回退应绕到最后一首，得到 %v", got)
	}
}

func TestPrevIgnoresRandomMode(t *testing.T) {
	r := newTestRoom()
	songs := fillRoom(r, 4)
	r.SetMode(model.PlayModeRandom)
	if _, err := r.SkipTo(2); err != nil {
		t.Fatal(err)
	}

	// 上一首永远按顺序回退，与播放模式无关
	got, err := r.PrevSong()
	if err != nil {
		t.Fatal(err)
	}
	if got != songs[1] {
		t.Fatalf("随机模式下回退也应确定性地到上一首，得到 %v", got)
	}
}

func TestPrevThenNextRoundTrip(t *testing.T) {
	r := newTestRoom()
	songs := fillRoom(r, 3)
	if _, err := r.SkipTo(1); err != nil {
		t.Fatal(err)
	}

	if _, err := r.PrevSong(); err != nil {
		t.Fatal(err)
	}
	got, err := r.NextSong()
	if err != nil {
		t.Fatal(err)
	}
	if got != songs[1] {
		t.Fatalf("回退再前进应回到原处，得到 %v", got)
	}
}

func TestRandomNextStaysInRange(t *testing.T) {
	r := newTestRoom()
	fillRoom(r, 5)
	r.SetMode(model.PlayModeRandom)

	for i := 0; i < 100; i++ {
		if _, err := r.NextSong(); err != nil {
			t.Fatal(err)
		}
		if got := cursorOf(t, r); got < 0 || got >= 5 {
			t.Fatalf("随机模式游标越界: %d", got)
		}
	}
}

func TestSkipTo(t *testing.T) {
	r := newTestRoom()
	songs := fillRoom(r, 3)

	got, err := r.SkipTo(2)
	if err != nil {
		t.Fatal(err)
	}
	if got != songs[2] {
		t.Fatalf("跳转结果不对: %v", got)
	}
	if _, err := r.SkipTo(-1); err != ErrIndexRange {
		t.Fatalf("负下标应报 ErrIndexRange，得到 %v", err)
	}
	if _, err := r.SkipTo(3); err != ErrIndexRange {
		t.Fatalf("越界下标应报 ErrIndexRange，得到 %v", err)
	}
}

func TestRemoveSong(t *testing.T) {
	r := newTestRoom()
	songs := fillRoom(r, 3)

	got, err := r.RemoveSong(1)
	if err != nil {
		t.Fatal(err)
	}
	if got != songs[1] {
		t.Fatalf("移除返回的歌不对: %v", got)
	}

	list, _ := r.PlaylistSnapshot()
	if len(list) != 2 || list[0] != songs[0] || list[1] != songs[2] {
		t.Fatalf("移除后列表顺序不对: %v", list)
	}

	if _, err := r.RemoveSong(2); err != ErrIndexRange {
		t.Fatalf("越界移除应报 ErrIndexRange，得到 %v", err)
	}
}

func TestRemoveSongClampsCursor(t *testing.T) {
	r := newTestRoom()
	songs := fillRoom(r, 3)
	if _, err := r.SkipTo(2); err != nil {
		t.Fatal(err)
	}

	// 游标指着最后一首，移除它之后收回到新的末尾
	if _, err := r.RemoveSong(2); err != nil {
		t.Fatal(err)
	}
	if got := cursorOf(t, r); got != 1 {
		t.Fatalf("移除末尾后游标应收回到 1，得到 %d", got)
	}
	if got := r.CurrentSong(); got != songs[1] {
		t.Fatalf("当前歌曲应是收回后的末尾，得到 %v", got)
	}
}

func TestRemoveLastSongResetsCursor(t *testing.T) {
	r := newTestRoom()
	fillRoom(r, 1)
	if _, _, err := r.Play(); err != nil {
		t.Fatal(err)
	}

	if _, err := r.RemoveSong(0); err != nil {
		t.Fatal(err)
	}
	if got := cursorOf(t, r); got != -1 {
		t.Fatalf("列表清空后游标应归位 -1，得到 %d", got)
	}
	if r.CurrentSong() != nil {
		t.Fatal("列表清空后不应有当前歌曲")
	}
	// 移除不改播放开关，此时播放只会报列表为空
	if _, _, err := r.Play(); err != ErrEmptyPlaylist {
		t.Fatalf("期望 ErrEmptyPlaylist，得到 %v", err)
	}
}

func TestClearResetsPlayback(t *testing.T) {
	r := newTestRoom()
	fillRoom(r, 3)
	if _, _, err := r.Play(); err != nil {
		t.Fatal(err)
	}

	r.Clear()

	list, cursor := r.PlaylistSnapshot()
	if len(list) != 0 || cursor != -1 {
		t.Fatalf("清空后应是空列表和 -1 游标，得到 %d 首、游标 %d", len(list), cursor)
	}
	if r.Playing() {
		t.Fatal("清空后不应处于播放状态")
	}
}

func TestMembers(t *testing.T) {
	r := newTestRoom()

	if !r.AddMember("u2", "小明") {
		t.Fatal("新成员加入应返回 true")
	}
	if r.AddMember("u2", "小明") {
		t.Fatal("重复加入应返回 false")
	}
	if got := r.MemberCount(); got != 2 {
		t.Fatalf("成员数应为 2，得到 %d", got)
	}
	if !r.RemoveMember("u2") {
		t.Fatal("移除在场成员应返回 true")
	}
	if r.RemoveMember("u2") {
		t.Fatal("移除不在场成员应返回 false")
	}
	if r.IsMember("u2") {
		t.Fatal("移除后不应再是成员")
	}
}

func TestInfoSnapshot(t *testing.T) {
	r := newTestRoom()
	r.AddMember("u2", "小明")
	songs := fillRoom(r, 2)

	info := r.Info()
	if info.OwnerName != "房主" || info.SongCount != 2 || info.Playing {
		t.Fatalf("快照不对: %+v", info)
	}
	if len(info.Members) != 2 {
		t.Fatalf("快照成员数不对: %v", info.Members)
	}
	if info.Current != nil {
		t.Fatal("游标未初始化时快照不应有当前歌曲")
	}

	if _, _, err := r.Play(); err != nil {
		t.Fatal(err)
	}
	info = r.Info()
	if info.Current != songs[0] || !info.Playing {
		t.Fatalf("播放后快照不对: %+v", info)
	}
}
